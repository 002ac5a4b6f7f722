package handlers

import (
	"fmt"
	"reflect"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
)

func errUnsupportedScalar(v reflect.Value) error {
	return errkind.New(errkind.UnsupportedKind, fmt.Sprintf("scalar handler cannot extract kind %s", v.Kind()))
}

func errUnsupportedContainer(v reflect.Value) error {
	return errkind.New(errkind.UnsupportedKind, fmt.Sprintf("container handler cannot extract kind %s", v.Kind()))
}

func errUnknownTypeKey(typeKey ir.TypeKey) error {
	return errkind.New(errkind.UnknownHandler, fmt.Sprintf("container handler cannot reconstruct type key %q", typeKey))
}

func errUnsupportedStruct(v reflect.Value) error {
	return errkind.New(errkind.UnsupportedKind, fmt.Sprintf("struct handler cannot extract kind %s", v.Kind()))
}
