package reconnect

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// DecodeAuthSpecs decodes a list of raw maps — the shape a YAML config
// file's "reconnect.auth" list or a repeated CLI flag naturally produces —
// into an AuthMap, validating each entry before folding it in.
func DecodeAuthSpecs(raw []map[string]any) (AuthMap, error) {
	out := make(AuthMap)
	for i, r := range raw {
		var spec AuthSpec
		if err := mapstructure.Decode(r, &spec); err != nil {
			return nil, fmt.Errorf("auth spec %d: decode: %w", i, err)
		}
		if err := validate.Struct(&spec); err != nil {
			return nil, fmt.Errorf("auth spec %d: %w", i, err)
		}
		if out[spec.TypeKey] == nil {
			out[spec.TypeKey] = make(map[string]any)
		}
		out[spec.TypeKey][spec.Attr] = spec.Secret
	}
	return out, nil
}
