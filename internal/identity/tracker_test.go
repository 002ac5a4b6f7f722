package identity

import (
	"reflect"
	"testing"
)

func TestAssignOrLookup_SamePointerReturnsSameID(t *testing.T) {
	x := 42
	p := &x

	tr := NewTracker()
	v := reflect.ValueOf(p)

	id1, isNew1 := tr.AssignOrLookup(v)
	if !isNew1 {
		t.Fatal("first visit should be new")
	}

	id2, isNew2 := tr.AssignOrLookup(v)
	if isNew2 {
		t.Fatal("second visit of same pointer should not be new")
	}
	if id1 != id2 {
		t.Errorf("expected same id, got %d and %d", id1, id2)
	}
}

func TestAssignOrLookup_DifferentPointersGetDifferentIDs(t *testing.T) {
	a, b := 1, 2
	tr := NewTracker()

	id1, _ := tr.AssignOrLookup(reflect.ValueOf(&a))
	id2, _ := tr.AssignOrLookup(reflect.ValueOf(&b))

	if id1 == id2 {
		t.Errorf("expected distinct ids, got %d for both", id1)
	}
}

func TestAssignOrLookup_IDsStartAtOneAndIncrement(t *testing.T) {
	a, b, c := 1, 2, 3
	tr := NewTracker()

	id1, _ := tr.AssignOrLookup(reflect.ValueOf(&a))
	id2, _ := tr.AssignOrLookup(reflect.ValueOf(&b))
	id3, _ := tr.AssignOrLookup(reflect.ValueOf(&c))

	if id1 != 1 || id2 != 2 || id3 != 3 {
		t.Errorf("expected sequential ids 1,2,3, got %d,%d,%d", id1, id2, id3)
	}
}

func TestAssignOrLookup_SliceIdentityByPointerAndLength(t *testing.T) {
	backing := make([]int, 10)
	full := backing[0:10]
	prefix := backing[0:5]

	tr := NewTracker()
	idFull, _ := tr.AssignOrLookup(reflect.ValueOf(full))
	idPrefix, isNew := tr.AssignOrLookup(reflect.ValueOf(prefix))

	if !isNew {
		t.Fatal("differently-lengthed reslice should be a new identity")
	}
	if idFull == idPrefix {
		t.Errorf("expected distinct ids for full vs prefix slice, got %d for both", idFull)
	}
}

func TestAssignOrLookup_SameSliceHeaderIsSameObject(t *testing.T) {
	backing := make([]int, 4)
	s1 := backing[0:4]
	s2 := backing[0:4]

	tr := NewTracker()
	id1, _ := tr.AssignOrLookup(reflect.ValueOf(s1))
	id2, isNew := tr.AssignOrLookup(reflect.ValueOf(s2))

	if isNew {
		t.Fatal("identical pointer+length slice headers should be the same object")
	}
	if id1 != id2 {
		t.Errorf("expected same id, got %d and %d", id1, id2)
	}
}

func TestTrackable(t *testing.T) {
	x := 1
	cases := []struct {
		name string
		v    reflect.Value
		want bool
	}{
		{"ptr", reflect.ValueOf(&x), true},
		{"map", reflect.ValueOf(map[string]int{}), true},
		{"slice", reflect.ValueOf([]int{1}), true},
		{"chan", reflect.ValueOf(make(chan int)), true},
		{"int", reflect.ValueOf(1), false},
		{"string", reflect.ValueOf("a"), false},
		{"struct", reflect.ValueOf(struct{}{}), false},
	}

	for _, c := range cases {
		if got := Trackable(c.v); got != c.want {
			t.Errorf("Trackable(%s) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestAssignOrLookup_PanicsOnUntrackableKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for untrackable kind")
		}
	}()

	tr := NewTracker()
	tr.AssignOrLookup(reflect.ValueOf(1))
}

func TestCount(t *testing.T) {
	a, b := 1, 2
	tr := NewTracker()
	if tr.Count() != 0 {
		t.Fatalf("expected 0, got %d", tr.Count())
	}

	tr.AssignOrLookup(reflect.ValueOf(&a))
	tr.AssignOrLookup(reflect.ValueOf(&b))
	tr.AssignOrLookup(reflect.ValueOf(&a))

	if tr.Count() != 2 {
		t.Errorf("expected 2 distinct identities, got %d", tr.Count())
	}
}
