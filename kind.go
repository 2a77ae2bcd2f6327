package databook

import "strconv"

// Kind identifies the active alternative of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindNode

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindInt:     "int",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint:    "uint",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindString:  "string",
	KindNode:    "node",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsValid reports whether k is one of the storable kinds.
func (k Kind) IsValid() bool {
	return k > KindInvalid && k < kindCount
}

// IsPrimitive reports whether k holds a scalar or string payload.
func (k Kind) IsPrimitive() bool {
	return k > KindInvalid && k < KindNode
}

func (k Kind) isSigned() bool {
	return k >= KindInt && k <= KindInt64
}

func (k Kind) isUnsigned() bool {
	return k >= KindUint && k <= KindUint64
}

// Primitive lists the types stored directly in a Value. The set is exact:
// named types (even ones based on int or string) are not primitives and
// must be stored as composites.
type Primitive interface {
	bool |
		int | int8 | int16 | int32 | int64 |
		uint | uint8 | uint16 | uint32 | uint64 |
		float32 | float64 |
		string
}

// kindOf returns the Kind that stores T. The switch is over a closed,
// exact type set, so every instantiation resolves to a single constant.
func kindOf[T Primitive]() Kind {
	var zero T
	switch any(zero).(type) {
	case bool:
		return KindBool
	case int:
		return KindInt
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint:
		return KindUint
	case uint8:
		return KindUint8
	case uint16:
		return KindUint16
	case uint32:
		return KindUint32
	case uint64:
		return KindUint64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	case string:
		return KindString
	default:
		panic("unreachable")
	}
}
