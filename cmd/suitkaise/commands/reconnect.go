package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/ceetaro/suitkaise/internal/cli/prompt"
	"github.com/ceetaro/suitkaise/internal/reconnect"
	"github.com/ceetaro/suitkaise/pkg/suitkaise"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	reconnectInPath   string
	reconnectAuthPath string
	reconnectStart    bool
	reconnectForce    bool
)

var reconnectCmd = &cobra.Command{
	Use:   "reconnect",
	Short: "Reconstruct and reconnect the live resources in a deserialized payload",
	Long: `Decodes wire-encoded IR, reconstructs the object graph, and runs
ReconnectAll against it using the credentials in --auth.

This acquires real resources (opens connections, starts threads) using
caller-supplied secrets, so it asks for confirmation unless --force is set.
It only reaches placeholders whose struct type is registered with this
process's suitkaise.Types — a generic CLI build has none registered, so
this command is primarily useful linked into a program that registers its
own types at init() time.

Example:
  suitkaise reconnect --in session.skir --auth auth.yaml`,
	RunE: runReconnect,
}

func init() {
	reconnectCmd.Flags().StringVar(&reconnectInPath, "in", "", "input file of wire-encoded IR (default: stdin)")
	reconnectCmd.Flags().StringVar(&reconnectAuthPath, "auth", "", "YAML file of auth specs (type_key, attr, secret)")
	reconnectCmd.Flags().BoolVar(&reconnectStart, "start-threads", false, "invoke Start() on every reconnected value that implements it")
	reconnectCmd.Flags().BoolVar(&reconnectForce, "force", false, "skip the confirmation prompt")
}

func runReconnect(cmd *cobra.Command, args []string) error {
	ok, err := prompt.ConfirmWithForce("this will open live connections using the supplied credentials, continue?", reconnectForce)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("aborted")
	}

	in, err := openInput(reconnectInPath)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	blob, closeBlob, err := openBlobStore(cfg.Blob)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	defer closeBlob()

	root, err := suitkaise.Deserialize(data, suitkaise.Options{
		Debug:         debug,
		Blob:          blob,
		BlobThreshold: int(cfg.Blob.OffloadThreshold),
		BlobMetrics:   newBlobMetricsSink(),
	})
	if err != nil {
		return fmt.Errorf("deserialize: %w", err)
	}

	auth, err := loadAuthMap(reconnectAuthPath)
	if err != nil {
		return err
	}

	_, errs := suitkaise.ReconnectAll(root, auth, reconnectStart)
	for _, e := range errs {
		PrintErr("reconnect: %v", e)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d reconnect error(s)", len(errs))
	}

	fmt.Fprintln(os.Stdout, "reconnect complete")
	return nil
}

func loadAuthMap(path string) (reconnect.AuthMap, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read auth file: %w", err)
	}
	var specs []map[string]any
	if err := yaml.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("parse auth file: %w", err)
	}
	return reconnect.DecodeAuthSpecs(specs)
}
