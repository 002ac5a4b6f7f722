package handlers

import (
	"reflect"
	"regexp"

	"github.com/ceetaro/suitkaise/internal/ir"
	"github.com/ceetaro/suitkaise/internal/ir/errkind"
	"github.com/ceetaro/suitkaise/internal/registry"
)

var regexpType = reflect.TypeOf((*regexp.Regexp)(nil))

// RegexpHandler is the tier-3 handler for *regexp.Regexp: the compiled
// program itself doesn't round-trip, so the record carries the source
// pattern and is recompiled on the way back in rather than going through
// a Reconnector — recompiling a regexp is cheap and needs no auth. The
// leftmost-longest flag has no exported getter, so Extract reads the
// unexported field through reflection.
type RegexpHandler struct{}

func (RegexpHandler) Name() string { return "regexp" }

func (RegexpHandler) TypeKey(v reflect.Value) ir.TypeKey { return "regexp.Regexp" }

func (RegexpHandler) CanHandle(v reflect.Value) bool {
	return v.IsValid() && v.Type() == regexpType && !v.IsNil()
}

func (RegexpHandler) Handles(typeKey ir.TypeKey) bool { return typeKey == "regexp.Regexp" }

func (RegexpHandler) Extract(v reflect.Value) (registry.State, error) {
	re, _ := v.Interface().(*regexp.Regexp)
	if re == nil {
		return registry.State{}, errkind.New(errkind.UnsupportedKind, "regexp handler received a nil *regexp.Regexp")
	}
	state := registry.NewRecordState(2)
	state.Set("source", re.String())
	state.Set("longest", reflect.ValueOf(re).Elem().FieldByName("longest").Bool())
	return state, nil
}

func (RegexpHandler) ReconstructShell(typeKey ir.TypeKey) (any, error) {
	return &regexpShell{}, nil
}

func (RegexpHandler) PopulateShell(shell any, resolved registry.State) error {
	s, ok := shell.(*regexpShell)
	if !ok {
		return errkind.New(errkind.UnsupportedKind, "regexp handler cannot populate a shell of this type")
	}
	source, _ := resolved.Fields["source"].(string)
	longest, _ := resolved.Fields["longest"].(bool)

	re, err := regexp.Compile(source)
	if err != nil {
		return errkind.New(errkind.CorruptIR, "regexp handler: "+err.Error())
	}
	if longest {
		re.Longest()
	}
	s.re = re
	return nil
}

// regexpShell holds the recompiled pattern until Finalize substitutes the
// concrete *regexp.Regexp for the builder, since ReconstructShell can't
// allocate a *regexp.Regexp directly (there's no usable zero value to
// populate in place).
type regexpShell struct {
	re *regexp.Regexp
}

func (s *regexpShell) Finalize() any { return s.re }
