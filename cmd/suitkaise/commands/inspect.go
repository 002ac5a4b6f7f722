package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ceetaro/suitkaise/internal/cli/output"
	"github.com/ceetaro/suitkaise/internal/dispatcher"
	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/spf13/cobra"
)

var inspectInPath string
var inspectSchema bool

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the object table of a wire-encoded IR payload",
	Long: `Decodes wire-encoded IR and lists every identity-bearing node
(container or record) as a row of object_id, type_key, shape (container
or record), and the registry tier that produced it — the object_id,
type_key and tier a verbose Serialize trace emits, read back out of an
already-encoded payload.

With --schema, prints the JSON Schema for to_json's output shape instead
of reading any payload, so downstream tooling can validate that output
without depending on this module.

Example:
  suitkaise inspect --in value.skir
  suitkaise inspect --schema`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectInPath, "in", "", "input file of wire-encoded IR (default: stdin)")
	inspectCmd.Flags().BoolVar(&inspectSchema, "schema", false, "print the JSON Schema for to_json's output shape and exit")
}

type inspectRow struct {
	objectID ir.ObjectID
	typeKey  ir.TypeKey
	shape    string
	tier     int
}

func runInspect(cmd *cobra.Command, args []string) error {
	if inspectSchema {
		return output.PrintJSON(os.Stdout, ir.Schema())
	}

	in, err := openInput(inspectInPath)
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

	root, err := ir.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode IR: %w", err)
	}

	var rows []inspectRow
	collectRows(root, &rows)

	table := output.NewTableData("OBJECT_ID", "TYPE_KEY", "SHAPE", "TIER")
	for _, row := range rows {
		table.AddRow(
			strconv.FormatUint(uint64(row.objectID), 10),
			string(row.typeKey),
			row.shape,
			strconv.Itoa(row.tier),
		)
	}
	return output.PrintTable(os.Stdout, table)
}

func collectRows(n ir.Node, rows *[]inspectRow) {
	switch n.Kind {
	case ir.KindContainer:
		*rows = append(*rows, inspectRow{objectID: n.ID, typeKey: n.TypeKey, shape: "container"})
		for _, elem := range n.ContainerElems {
			collectRows(elem, rows)
		}
	case ir.KindRecord:
		*rows = append(*rows, inspectRow{objectID: n.ID, typeKey: n.TypeKey, shape: "record", tier: n.RecordTier})
		for _, key := range n.FieldOrder {
			collectRows(n.RecordFields[key], rows)
		}
	}
}
