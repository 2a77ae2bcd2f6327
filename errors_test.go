package databook

import (
	"errors"
	"strings"
	"testing"
)

func TestDataError_ErrorAndUnwrap(t *testing.T) {
	t.Run("small data", func(t *testing.T) {
		inner := errors.New("inner")
		err := dataErrf([]byte{0xAA, 0xBB}, 1, inner, "oops")
		var de *DataError
		if !errors.As(err, &de) {
			t.Fatalf("err = %T, wanted *DataError", err)
		}
		if !errors.Is(err, inner) {
			t.Fatalf("errors.Is(err, inner) = false, wanted true")
		}
		s := err.Error()
		if !strings.Contains(s, "oops") || !strings.Contains(s, "inner") || !strings.Contains(s, "(2)") {
			t.Fatalf("err.Error() = %q, wanted message with oops/inner/(2)", s)
		}
	})

	t.Run("large data includes prefix+suffix", func(t *testing.T) {
		data := make([]byte, 200)
		for i := range data {
			data[i] = byte(i)
		}
		err := dataErrf(data, 0, nil, "oops")
		s := err.Error()
		if !strings.Contains(s, "(200)") || !strings.Contains(s, "...") {
			t.Fatalf("err.Error() = %q, wanted message with (200) and ...", s)
		}
	})
}

func TestFieldError_Error(t *testing.T) {
	tests := []struct {
		err  *FieldError
		want string
	}{
		{&FieldError{Name: "x", Err: ErrKeyNotFound}, "x: key not found"},
		{&FieldError{Path: "a.b", Name: "x", Err: ErrKeyNotFound}, "a.b.x: key not found"},
		{&FieldError{Name: "x", Want: KindInt64, Got: KindInt32, Err: ErrTypeMismatch}, "x: type mismatch: stored int32, requested int64"},
		{&FieldError{Want: KindString, Got: KindNode, Err: ErrTypeMismatch}, "type mismatch: stored node, requested string"},
		{&FieldError{Name: "x", Mode: Loading, Err: ErrWrongMode}, "x: wrong mode: loading notebook"},
		{&FieldError{Name: "x"}, "x: failed"},
	}
	for _, tt := range tests {
		eq(t, tt.err.Error(), tt.want)
	}
}

func TestFieldError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := error(&FieldError{Name: "x", Err: inner})
	if !errors.Is(err, inner) {
		t.Fatalf("errors.Is(err, inner) = false, wanted true")
	}
	eq(t, (&FieldError{Path: "p", Name: "x"}).FullName(), "p.x")
	eq(t, (&FieldError{Name: "x"}).FullName(), "x")
}
