package ir

import "github.com/invopop/jsonschema"

// JSONNode documents the shape ToJSONable projects an IR node into. It is
// never instantiated or marshaled itself — ToJSONable builds the actual
// map[string]any values — this type exists only so a jsonschema.Reflector
// has a concrete Go shape to walk for `inspect --schema`. A leaf node
// projects as a bare JSON scalar or null rather than this object shape, so
// Items and Fields are typed any: a slot can hold a nested node, a raw
// scalar, or one of the leaf wrapper shapes below.
type JSONNode struct {
	Type      string         `json:"$type,omitempty" jsonschema_description:"handler family or struct type key; set on container and record nodes"`
	ID        uint64         `json:"$id,omitempty" jsonschema_description:"identity-tracker object id, 0 if untracked"`
	Items     []any          `json:"items,omitempty" jsonschema_description:"container elements in order: each is a nested node, a bare scalar, or one of the leaf wrapper shapes below"`
	Fields    map[string]any `json:"fields,omitempty" jsonschema_description:"record fields by name; each value has the same shape as an Items element"`
	Order     []string       `json:"$order,omitempty" jsonschema_description:"record field declaration order, independent of map iteration order"`
	Ref       *uint64        `json:"$ref,omitempty" jsonschema_description:"object id of an earlier node this one refers back to; present only on back-references"`
	Bytes     []byte         `json:"$bytes,omitempty" jsonschema_description:"raw byte-string leaf, base64-encoded by encoding/json"`
	Complex   []float64      `json:"$complex,omitempty" jsonschema_description:"complex64/128 leaf as a [real, imag] pair"`
	Singleton string         `json:"$singleton,omitempty" jsonschema_description:"Ellipsis/NotImplemented/Empty type key, present only on singleton leaves"`
}

// Schema builds the JSON Schema for ToJSONable's output shape, so
// downstream tooling can validate to_json output without depending on
// this module.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&JSONNode{})
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.Title = "Suitkaise IR JSON projection"
	schema.Description = "Schema for the output of ToJSONable/ToJSON: a tagged node tree (container, record, back-reference, or leaf) projected from serialized IR."
	return schema
}
