package handlers

import (
	"reflect"

	"github.com/google/uuid"
)

// synthKeyNamespace seeds every synthetic type key derivation; any fixed
// UUID works here, it only has to be the same value across runs so the
// same reflect.Type string always produces the same key.
var synthKeyNamespace = uuid.MustParse("b7e8b2b0-2f3d-4f0a-9b2b-6b9f2f6a8d10")

// syntheticTypeKey derives a stable type key for an anonymous or ephemeral
// Go value — an unnamed closure runtime.FuncForPC can't resolve, a fresh
// generic instantiation — from a UUIDv5 over its reflect.Type string
// rather than a random UUID, so repeated runs of the same program assign
// the same closure shape the same key.
func syntheticTypeKey(prefix string, t reflect.Type) string {
	return prefix + "." + uuid.NewSHA1(synthKeyNamespace, []byte(t.String())).String()
}
