package commands

import (
	"fmt"
	"io"

	"github.com/ceetaro/suitkaise/internal/dispatcher"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/spf13/cobra"
)

var (
	decodeInPath  string
	decodeOutPath string
	decodeIndent  bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode wire-encoded IR into JSON",
	Long: `Reads wire-encoded IR and projects it into JSON via ToJSONable,
rather than reconstructing live Go values — a CLI process has no registered
struct types to reconstruct into, so this is the lossy human/tool view, not
a round-trip through Deserialize.

Examples:
  suitkaise decode --in value.skir --out value.json
  cat value.skir | suitkaise decode --indent`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVar(&decodeInPath, "in", "", "input file of wire-encoded IR (default: stdin)")
	decodeCmd.Flags().StringVar(&decodeOutPath, "out", "", "output JSON file (default: stdout)")
	decodeCmd.Flags().BoolVar(&decodeIndent, "indent", false, "pretty-print the JSON output")
}

func runDecode(cmd *cobra.Command, args []string) error {
	in, err := openInput(decodeInPath)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	raw, err := dispatcher.DecompressPayload(data)
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}

	node, err := ir.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode IR: %w", err)
	}

	text, err := ir.ToJSON(node, decodeIndent, true)
	if err != nil {
		return fmt.Errorf("project to JSON: %w", err)
	}

	out, err := openOutput(decodeOutPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = fmt.Fprintln(out, text)
	return err
}
