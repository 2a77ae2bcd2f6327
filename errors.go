package databook

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyNotFound means the bound node has no field with the requested name.
	ErrKeyNotFound = errors.New("key not found")

	// ErrTypeMismatch means the stored kind differs from the requested one.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrWrongMode means a write was attempted through a loading notebook or
	// store, or a load through a writing one.
	ErrWrongMode = errors.New("wrong mode")
)

// FieldError reports a failed operation on a single named field.
type FieldError struct {
	Path string // dotted path of the enclosing node, empty at the root
	Name string
	Mode Mode // mode of the notebook or store that failed, if known
	Want Kind // requested kind, for type mismatches
	Got  Kind // stored kind, for type mismatches
	Err  error
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// FullName returns the dotted path of the field.
func (e *FieldError) FullName() string {
	return joinPath(e.Path, e.Name)
}

func (e *FieldError) Error() string {
	var buf strings.Builder
	if name := e.FullName(); name != "" {
		buf.WriteString(name)
		buf.WriteString(": ")
	}
	if e.Err != nil {
		buf.WriteString(e.Err.Error())
	} else {
		buf.WriteString("failed")
	}
	switch {
	case errors.Is(e.Err, ErrTypeMismatch) && e.Want != KindInvalid:
		fmt.Fprintf(&buf, ": stored %v, requested %v", e.Got, e.Want)
	case errors.Is(e.Err, ErrWrongMode) && e.Mode != 0:
		fmt.Fprintf(&buf, ": %v notebook", e.Mode)
	}
	return buf.String()
}

func joinPath(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

// DataError reports malformed encoded data.
type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}
