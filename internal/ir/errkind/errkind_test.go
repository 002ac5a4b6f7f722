package errkind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	t.Run("error with path includes path in message", func(t *testing.T) {
		t.Parallel()
		err := New(CorruptIR, "unexpected tag byte").WithPath("root.Items[3]")

		assert.Contains(t, err.Error(), "CorruptIR")
		assert.Contains(t, err.Error(), "unexpected tag byte")
		assert.Contains(t, err.Error(), "root.Items[3]")
	})

	t.Run("error without path returns message only", func(t *testing.T) {
		t.Parallel()
		err := New(UnknownHandler, "no handler for type key")

		assert.Contains(t, err.Error(), "UnknownHandler")
		assert.Contains(t, err.Error(), "no handler for type key")
		assert.NotContains(t, err.Error(), "at ")
	})
}

func TestCode_String(t *testing.T) {
	t.Parallel()

	cases := []struct {
		code Code
		want string
	}{
		{CorruptIR, "CorruptIR"},
		{UnknownHandler, "UnknownHandler"},
		{CycleBudgetExceeded, "CycleBudgetExceeded"},
		{ReconnectFailed, "ReconnectFailed"},
		{InvalidAuthSpec, "InvalidAuthSpec"},
		{UnsupportedKind, "UnsupportedKind"},
		{SchemaMismatch, "SchemaMismatch"},
	}

	for _, tc := range cases {
		if got := tc.code.String(); got != tc.want {
			t.Errorf("Code(%d).String() = %q, want %q", tc.code, got, tc.want)
		}
	}

	unknown := Code(999)
	if got := unknown.String(); got != "Unknown(999)" {
		t.Errorf("unknown code String() = %q, want %q", got, "Unknown(999)")
	}
}

func TestWrap_Unwrap(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("connection refused")
	err := Wrap(ReconnectFailed, "dialing postgres", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestIs(t *testing.T) {
	t.Parallel()

	t.Run("direct match", func(t *testing.T) {
		t.Parallel()
		err := New(CorruptIR, "bad tag")
		assert.True(t, Is(err, CorruptIR))
		assert.False(t, Is(err, UnknownHandler))
	})

	t.Run("wrapped through fmt.Errorf", func(t *testing.T) {
		t.Parallel()
		inner := New(UnknownHandler, "no handler")
		wrapped := fmt.Errorf("dispatch failed: %w", inner)
		assert.True(t, Is(wrapped, UnknownHandler))
	})

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()
		assert.False(t, Is(nil, CorruptIR))
	})

	t.Run("unrelated error", func(t *testing.T) {
		t.Parallel()
		assert.False(t, Is(errors.New("plain"), CorruptIR))
	})
}

func TestWithPath_PreservesFields(t *testing.T) {
	t.Parallel()

	cause := errors.New("eof")
	base := Wrap(CorruptIR, "truncated node", cause)
	withPath := base.WithPath("root.Field")

	assert.Equal(t, base.Code, withPath.Code)
	assert.Equal(t, base.Msg, withPath.Msg)
	assert.Equal(t, base.Cause, withPath.Cause)
	assert.Equal(t, "root.Field", withPath.Path)
	assert.Empty(t, base.Path, "original error must be unmodified")
}
