package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ceetaro/suitkaise/internal/cli/health"
	"github.com/ceetaro/suitkaise/internal/cli/output"
	"github.com/ceetaro/suitkaise/internal/cli/timeutil"
	"github.com/spf13/cobra"
)

var (
	statusURL    string
	statusFormat string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check a running suitkaise serve process's /healthz endpoint",
	Long: `Queries --url's /healthz endpoint and reports whether the process
is reachable, how long it has been running, and when it started.

Example:
  suitkaise status --url http://localhost:8080
  suitkaise status --url http://localhost:8080 --output json`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusURL, "url", "http://localhost:8080", "base URL of the serve process")
	statusCmd.Flags().StringVar(&statusFormat, "output", "table", "output format: table, json, yaml")
}

// serverStatus is the display-shaped view of a /healthz probe, distinct
// from health.Response's wire shape so table rendering doesn't have to
// reach into a nested Data struct.
type serverStatus struct {
	Server    string `json:"server" yaml:"server"`
	Reachable bool   `json:"reachable" yaml:"reachable"`
	Status    string `json:"status" yaml:"status"`
	Service   string `json:"service,omitempty" yaml:"service,omitempty"`
	StartedAt string `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	Uptime    string `json:"uptime,omitempty" yaml:"uptime,omitempty"`
	Error     string `json:"error,omitempty" yaml:"error,omitempty"`
}

func (s serverStatus) Headers() []string { return []string{"FIELD", "VALUE"} }

func (s serverStatus) Rows() [][]string {
	rows := [][]string{
		{"server", s.Server},
		{"reachable", fmt.Sprintf("%v", s.Reachable)},
		{"status", s.Status},
	}
	if s.Service != "" {
		rows = append(rows, []string{"service", s.Service})
	}
	if s.StartedAt != "" {
		rows = append(rows, []string{"started", timeutil.FormatTime(s.StartedAt)})
	}
	if s.Uptime != "" {
		rows = append(rows, []string{"uptime", timeutil.FormatUptime(s.Uptime)})
	}
	if s.Error != "" {
		rows = append(rows, []string{"error", s.Error})
	}
	return rows
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(statusFormat)
	if err != nil {
		return err
	}

	status := serverStatus{Server: statusURL, Status: "unreachable"}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(statusURL + "/healthz")
	if err != nil {
		status.Error = err.Error()
	} else {
		defer resp.Body.Close()

		var healthResp health.Response
		if decodeErr := json.NewDecoder(resp.Body).Decode(&healthResp); decodeErr != nil {
			status.Status = "unknown"
			status.Error = fmt.Sprintf("failed to parse health response: %v", decodeErr)
		} else {
			status.Reachable = true
			status.Status = healthResp.Status
			status.Service = healthResp.Data.Service
			status.StartedAt = healthResp.Data.StartedAt
			status.Uptime = healthResp.Data.Uptime
			if healthResp.Error != "" {
				status.Error = healthResp.Error
			}
		}
	}

	printer := output.NewPrinter(os.Stdout, format, true)
	if err := printer.Print(status); err != nil {
		return err
	}
	if !status.Reachable {
		return fmt.Errorf("%s is not reachable", statusURL)
	}
	return nil
}
