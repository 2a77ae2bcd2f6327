package databook

import (
	"fmt"
	"strconv"
)

// Value is a single slot of a Node: exactly one of the primitive kinds, or a
// handle to a nested Node. Values are immutable; the zero Value is invalid
// and cannot be stored.
type Value struct {
	kind Kind
	word uint64 // bool, integer and float payloads
	str  string
	node *Node
}

// ValueOf wraps a primitive.
func ValueOf[T Primitive](v T) Value {
	switch x := any(v).(type) {
	case bool:
		return Value{kind: KindBool, word: boolToWord(x)}
	case int:
		return Value{kind: KindInt, word: signedToWord(x)}
	case int8:
		return Value{kind: KindInt8, word: signedToWord(x)}
	case int16:
		return Value{kind: KindInt16, word: signedToWord(x)}
	case int32:
		return Value{kind: KindInt32, word: signedToWord(x)}
	case int64:
		return Value{kind: KindInt64, word: signedToWord(x)}
	case uint:
		return Value{kind: KindUint, word: unsignedToWord(x)}
	case uint8:
		return Value{kind: KindUint8, word: unsignedToWord(x)}
	case uint16:
		return Value{kind: KindUint16, word: unsignedToWord(x)}
	case uint32:
		return Value{kind: KindUint32, word: unsignedToWord(x)}
	case uint64:
		return Value{kind: KindUint64, word: unsignedToWord(x)}
	case float32:
		return Value{kind: KindFloat32, word: float32ToWord(x)}
	case float64:
		return Value{kind: KindFloat64, word: float64ToWord(x)}
	case string:
		return Value{kind: KindString, str: x}
	default:
		panic("unreachable")
	}
}

// NodeValue wraps a nested node. The handle is shared, not copied.
func NodeValue(n *Node) Value {
	if n == nil {
		panic(fmt.Errorf("databook: nil node handle"))
	}
	return Value{kind: KindNode, node: n}
}

// ValueAs unwraps a primitive. It fails with ErrTypeMismatch unless the
// active kind is exactly T's kind; no numeric conversion is ever applied.
func ValueAs[T Primitive](v Value) (T, error) {
	var out T
	want := kindOf[T]()
	if v.kind != want {
		return out, &FieldError{Want: want, Got: v.kind, Err: ErrTypeMismatch}
	}
	switch p := any(&out).(type) {
	case *bool:
		*p = v.word != 0
	case *int:
		*p = wordToSigned[int](v.word)
	case *int8:
		*p = wordToSigned[int8](v.word)
	case *int16:
		*p = wordToSigned[int16](v.word)
	case *int32:
		*p = wordToSigned[int32](v.word)
	case *int64:
		*p = wordToSigned[int64](v.word)
	case *uint:
		*p = wordToUnsigned[uint](v.word)
	case *uint8:
		*p = wordToUnsigned[uint8](v.word)
	case *uint16:
		*p = wordToUnsigned[uint16](v.word)
	case *uint32:
		*p = wordToUnsigned[uint32](v.word)
	case *uint64:
		*p = wordToUnsigned[uint64](v.word)
	case *float32:
		*p = wordToFloat32(v.word)
	case *float64:
		*p = wordToFloat64(v.word)
	case *string:
		*p = v.str
	}
	return out, nil
}

func (v Value) Kind() Kind    { return v.kind }
func (v Value) IsValid() bool { return v.kind.IsValid() }

// Node returns the nested node handle, if v holds one.
func (v Value) Node() (*Node, bool) {
	if v.kind != KindNode {
		return nil, false
	}
	return v.node, true
}

// Equal compares kinds and payloads. Floats compare by their bits, so a NaN
// equals the same NaN and +0 differs from -0. Nodes compare structurally.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNode:
		return v.node.Equal(o.node)
	default:
		return v.word == o.word
	}
}

func (v Value) String() string {
	switch {
	case v.kind == KindBool:
		return strconv.FormatBool(v.word != 0)
	case v.kind.isSigned():
		return strconv.FormatInt(int64(v.word), 10)
	case v.kind.isUnsigned():
		return strconv.FormatUint(v.word, 10)
	case v.kind == KindFloat32:
		return strconv.FormatFloat(float64(wordToFloat32(v.word)), 'g', -1, 32)
	case v.kind == KindFloat64:
		return strconv.FormatFloat(wordToFloat64(v.word), 'g', -1, 64)
	case v.kind == KindString:
		return strconv.Quote(v.str)
	case v.kind == KindNode:
		return v.node.Dump()
	default:
		return "<invalid>"
	}
}
