package ir

import (
	"encoding/json"
	"testing"
)

func TestSchema_MarshalsAndSetsMetadata(t *testing.T) {
	schema := Schema()
	if schema.Title == "" {
		t.Error("expected a non-empty schema title")
	}
	if schema.Version == "" {
		t.Error("expected a draft version to be set")
	}

	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty schema JSON")
	}
}
