package commands

import (
	"testing"

	"github.com/ceetaro/suitkaise/internal/ir"
)

func TestCollectRows_WalksContainersAndRecords(t *testing.T) {
	leaf := ir.Leaf("builtins.int", ir.LeafValue{ScalarKind: ir.LeafInt64, Int: 7})
	record := ir.Record(2, "mypkg.Widget", 4, map[string]ir.Node{"Count": leaf}, []string{"Count"})
	container := ir.Container(1, "builtins.list", []ir.Node{record})

	var rows []inspectRow
	collectRows(container, &rows)

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].objectID != 1 || rows[0].typeKey != "builtins.list" || rows[0].shape != "container" {
		t.Errorf("unexpected container row: %+v", rows[0])
	}
	if rows[1].objectID != 2 || rows[1].typeKey != "mypkg.Widget" || rows[1].shape != "record" || rows[1].tier != 4 {
		t.Errorf("unexpected record row: %+v", rows[1])
	}
}

func TestCollectRows_SkipsLeaves(t *testing.T) {
	leaf := ir.Leaf("builtins.str", ir.LeafValue{ScalarKind: ir.LeafString, Str: "hi"})

	var rows []inspectRow
	collectRows(leaf, &rows)

	if len(rows) != 0 {
		t.Errorf("expected no rows for a bare leaf, got %d", len(rows))
	}
}
