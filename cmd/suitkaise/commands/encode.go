package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ceetaro/suitkaise/pkg/suitkaise"
	"github.com/spf13/cobra"
)

var (
	encodeInPath  string
	encodeOutPath string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a JSON value into wire-encoded IR",
	Long: `Reads a JSON document, decodes it into the plain Go values (maps,
slices, scalars) the fast-path handlers already recognize, and writes the
resulting wire-encoded IR.

Struct-typed values aren't reachable this way — encode is for ad-hoc values
and scripting, not for round-tripping a program's own registered types.

Examples:
  suitkaise encode --in value.json --out value.skir
  cat value.json | suitkaise encode > value.skir`,
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVar(&encodeInPath, "in", "", "input JSON file (default: stdin)")
	encodeCmd.Flags().StringVar(&encodeOutPath, "out", "", "output file for wire-encoded IR (default: stdout)")
}

func runEncode(cmd *cobra.Command, args []string) error {
	in, err := openInput(encodeInPath)
	if err != nil {
		return err
	}
	defer in.Close()

	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
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

	data, err := suitkaise.Serialize(v, suitkaise.Options{
		Debug:           debug,
		Blob:            blob,
		BlobThreshold:   int(cfg.Blob.OffloadThreshold),
		BlobMetrics:     newBlobMetricsSink(),
		Compress:        cfg.Compression.Enabled && cfg.Compression.Algorithm == "zstd",
		CompressMinSize: int(cfg.Compression.MinSize),
	})
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	out, err := openOutput(encodeOutPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.Write(data)
	return err
}

func openInput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func openOutput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}
