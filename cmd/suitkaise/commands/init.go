package commands

import (
	"fmt"
	"os"

	"github.com/ceetaro/suitkaise/internal/cli/output"
	"github.com/ceetaro/suitkaise/internal/cli/prompt"
	"github.com/ceetaro/suitkaise/pkg/config"
	"github.com/spf13/cobra"
)

var (
	initForce          bool
	initNonInteractive bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a configuration file",
	Long: `Walks through logging, the serve HTTP surface, metrics, blob
offload storage, and payload compression, then writes the result to
--config (or the default XDG config path).

--non-interactive skips the prompts and writes the commented default
scaffold instead, the same file a fresh install would hand-edit.

Example:
  suitkaise init
  suitkaise init --config ./suitkaise.yaml --force
  suitkaise init --non-interactive`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file without asking")
	initCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "write the default commented scaffold without prompting")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initNonInteractive {
		return runInitNonInteractive()
	}

	path := cfgFile
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if !initForce {
		if _, err := os.Stat(path); err == nil {
			ok, err := prompt.Confirm(fmt.Sprintf("%s already exists, overwrite it?", path), false)
			if err != nil {
				return abortOrErr(err)
			}
			if !ok {
				return fmt.Errorf("aborted")
			}
		}
	}

	cfg := config.Config{}
	config.ApplyDefaults(&cfg)

	level, err := prompt.SelectString("Log level", []string{"DEBUG", "INFO", "WARN", "ERROR"})
	if err != nil {
		return abortOrErr(err)
	}
	cfg.Logging.Level = level

	format, err := prompt.SelectString("Log format", []string{"text", "json"})
	if err != nil {
		return abortOrErr(err)
	}
	cfg.Logging.Format = format

	serveEnabled, err := prompt.Confirm("Enable the debug HTTP surface (serve command)?", false)
	if err != nil {
		return abortOrErr(err)
	}
	cfg.Server.Enabled = serveEnabled
	if serveEnabled {
		port, err := prompt.InputPort("Server port", cfg.Server.Port)
		if err != nil {
			return abortOrErr(err)
		}
		cfg.Server.Port = port
	}

	metricsEnabled, err := prompt.Confirm("Enable Prometheus metrics?", false)
	if err != nil {
		return abortOrErr(err)
	}
	cfg.Metrics.Enabled = metricsEnabled
	if metricsEnabled {
		port, err := prompt.InputPort("Metrics port", cfg.Metrics.Port)
		if err != nil {
			return abortOrErr(err)
		}
		cfg.Metrics.Port = port
	}

	compressEnabled, err := prompt.Confirm("Enable zstd payload compression?", false)
	if err != nil {
		return abortOrErr(err)
	}
	cfg.Compression.Enabled = compressEnabled

	blobEnabled, err := prompt.Confirm("Enable blob offload storage for large byte-string leaves?", false)
	if err != nil {
		return abortOrErr(err)
	}
	cfg.Blob.Enabled = blobEnabled
	if blobEnabled {
		blobPath, err := prompt.Input("Blob store directory", cfg.Blob.Path)
		if err != nil {
			return abortOrErr(err)
		}
		cfg.Blob.Path = blobPath
	}

	if err := config.Validate(&cfg); err != nil {
		return fmt.Errorf("generated config is invalid: %w", err)
	}
	if err := config.SaveConfig(&cfg, path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	summary := output.NewTableData("SETTING", "VALUE")
	summary.AddRow("path", path)
	summary.AddRow("logging.level", cfg.Logging.Level)
	summary.AddRow("logging.format", cfg.Logging.Format)
	summary.AddRow("server.enabled", fmt.Sprintf("%v", cfg.Server.Enabled))
	summary.AddRow("metrics.enabled", fmt.Sprintf("%v", cfg.Metrics.Enabled))
	summary.AddRow("compression.enabled", fmt.Sprintf("%v", cfg.Compression.Enabled))
	summary.AddRow("blob.enabled", fmt.Sprintf("%v", cfg.Blob.Enabled))
	if cfg.Blob.Enabled {
		summary.AddRow("blob.offload_threshold", cfg.Blob.OffloadThreshold.String())
	}
	return output.PrintTable(os.Stdout, summary)
}

// runInitNonInteractive writes the commented default scaffold directly,
// the path a scripted install takes instead of answering prompts.
func runInitNonInteractive() error {
	var (
		path string
		err  error
	)
	if cfgFile != "" {
		path = cfgFile
		err = config.InitConfigToPath(cfgFile, initForce)
	} else {
		path, err = config.InitConfig(initForce)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	fmt.Printf("configuration file created at: %s\n", path)
	return nil
}

// abortOrErr turns a Ctrl+C during an init prompt into a plain "aborted"
// error rather than surfacing promptui's own error type.
func abortOrErr(err error) error {
	if prompt.IsAborted(err) {
		return fmt.Errorf("aborted")
	}
	return err
}
