package databook

import "math"

type (
	signedValue interface {
		int | int8 | int16 | int32 | int64
	}
	unsignedValue interface {
		uint | uint8 | uint16 | uint32 | uint64
	}
)

// A Value keeps every bool, integer and float payload in a single 64-bit
// word. Signed integers are sign-extended, floats keep their exact IEEE bits.

func signedToWord[T signedValue](v T) uint64 {
	return uint64(int64(v))
}

func wordToSigned[T signedValue](w uint64) T {
	return T(int64(w))
}

func unsignedToWord[T unsignedValue](v T) uint64 {
	return uint64(v)
}

func wordToUnsigned[T unsignedValue](w uint64) T {
	return T(w)
}

func float32ToWord(v float32) uint64 {
	return uint64(math.Float32bits(v))
}

func wordToFloat32(w uint64) float32 {
	return math.Float32frombits(uint32(w))
}

func float64ToWord(v float64) uint64 {
	return math.Float64bits(v)
}

func wordToFloat64(w uint64) float64 {
	return math.Float64frombits(w)
}

func boolToWord(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// fitsKind reports whether a payload decoded as a 64-bit word is within the
// range of the given sized integer kind. Used when reading encoded trees.
func fitsKind(kind Kind, w uint64) bool {
	switch kind {
	case KindInt8:
		v := int64(w)
		return v >= math.MinInt8 && v <= math.MaxInt8
	case KindInt16:
		v := int64(w)
		return v >= math.MinInt16 && v <= math.MaxInt16
	case KindInt32:
		v := int64(w)
		return v >= math.MinInt32 && v <= math.MaxInt32
	case KindInt:
		v := int64(w)
		return v >= math.MinInt && v <= math.MaxInt
	case KindUint8:
		return w <= math.MaxUint8
	case KindUint16:
		return w <= math.MaxUint16
	case KindUint32:
		return w <= math.MaxUint32
	case KindUint:
		return w <= math.MaxUint
	case KindBool:
		return w <= 1
	default:
		return true
	}
}
