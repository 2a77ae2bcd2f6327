package databook

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"
)

// Trees are encoded as msgpack maps with sorted keys. Every field is a
// two-element array [kind, payload]; the kind tag keeps the exact width of
// the stored primitive, since msgpack itself compacts integers and floats
// into the smallest representation.
//
//	{"age": [5, 42], "name": [13, "Alice"], "home": [14, {...}]}

const maxNodeDepth = 512

// MarshalNode encodes a tree into a new byte slice.
func MarshalNode(n *Node) ([]byte, error) {
	return appendNode(nil, n)
}

func appendNode(buf []byte, n *Node) ([]byte, error) {
	bb := bytesBuilder{buf}
	err := EncodeNode(&bb, n)
	if err != nil {
		return buf, err
	}
	return bb.Buf, nil
}

// EncodeNode writes a tree to w.
func EncodeNode(w io.Writer, n *Node) error {
	if n == nil {
		return fmt.Errorf("databook: cannot encode nil node")
	}
	enc := msgpack.GetEncoder()
	enc.ResetDict(w, nil)
	err := encodeNode(enc, n, 0)
	msgpack.PutEncoder(enc)
	return err
}

func encodeNode(enc *msgpack.Encoder, n *Node, depth int) error {
	if depth > maxNodeDepth {
		return fmt.Errorf("databook: node nesting exceeds %d levels", maxNodeDepth)
	}
	if err := enc.EncodeMapLen(n.Len()); err != nil {
		return err
	}
	for name, v := range n.All() {
		if err := enc.EncodeString(name); err != nil {
			return err
		}
		if err := encodeValue(enc, v, depth); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func encodeValue(enc *msgpack.Encoder, v Value, depth int) error {
	if err := enc.EncodeArrayLen(2); err != nil {
		return err
	}
	if err := enc.EncodeUint8(uint8(v.kind)); err != nil {
		return err
	}
	switch {
	case v.kind == KindBool:
		return enc.EncodeBool(v.word != 0)
	case v.kind.isSigned():
		return enc.EncodeInt(int64(v.word))
	case v.kind.isUnsigned():
		return enc.EncodeUint(v.word)
	case v.kind == KindFloat32:
		return enc.EncodeFloat32(wordToFloat32(v.word))
	case v.kind == KindFloat64:
		return enc.EncodeFloat64(wordToFloat64(v.word))
	case v.kind == KindString:
		return enc.EncodeString(v.str)
	case v.kind == KindNode:
		return encodeNode(enc, v.node, depth+1)
	default:
		return fmt.Errorf("databook: cannot encode %v", v.kind)
	}
}

// UnmarshalNode decodes a tree produced by MarshalNode. Malformed input,
// including trailing bytes, fails with a *DataError.
func UnmarshalNode(buf []byte) (*Node, error) {
	var r bytes.Reader
	r.Reset(buf)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	nd := nodeDecoder{dec: dec, r: &r, buf: buf}
	n, err := nd.decodeNode(0)
	msgpack.PutDecoder(dec)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, nd.errf(nil, "%d trailing bytes after node", r.Len())
	}
	return n, nil
}

// DecodeNode reads a single tree from r. The decoder may read past the end
// of the tree when r is not an io.ByteScanner.
func DecodeNode(r io.Reader) (*Node, error) {
	dec := msgpack.GetDecoder()
	dec.ResetDict(r, nil)
	nd := nodeDecoder{dec: dec}
	n, err := nd.decodeNode(0)
	msgpack.PutDecoder(dec)
	return n, err
}

type nodeDecoder struct {
	dec *msgpack.Decoder
	r   *bytes.Reader // nil when streaming
	buf []byte
}

func (nd *nodeDecoder) errf(err error, format string, args ...any) error {
	var off int
	if nd.r != nil {
		off = len(nd.buf) - nd.r.Len()
	}
	return dataErrf(nd.buf, off, err, format, args...)
}

func (nd *nodeDecoder) decodeNode(depth int) (*Node, error) {
	if depth > maxNodeDepth {
		return nil, nd.errf(nil, "node nesting exceeds %d levels", maxNodeDepth)
	}
	count, err := nd.dec.DecodeMapLen()
	if err != nil {
		return nil, nd.errf(err, "failed to decode node")
	}
	if count < 0 {
		return nil, nd.errf(nil, "nil node")
	}
	n := NewNode()
	for range count {
		if err := nd.expect(msgpcode.IsString, "field name"); err != nil {
			return nil, err
		}
		name, err := nd.dec.DecodeString()
		if err != nil {
			return nil, nd.errf(err, "failed to decode field name")
		}
		if n.Has(name) {
			return nil, nd.errf(nil, "duplicate field %q", name)
		}
		v, err := nd.decodeValue(name, depth)
		if err != nil {
			return nil, err
		}
		n.fields[name] = v
	}
	return n, nil
}

func (nd *nodeDecoder) decodeValue(name string, depth int) (Value, error) {
	count, err := nd.dec.DecodeArrayLen()
	if err != nil {
		return Value{}, nd.errf(err, "field %q: failed to decode", name)
	}
	if count != 2 {
		return Value{}, nd.errf(nil, "field %q: wanted [kind, payload], got %d elements", name, count)
	}
	k, err := nd.dec.DecodeUint8()
	if err != nil {
		return Value{}, nd.errf(err, "field %q: failed to decode kind", name)
	}
	kind := Kind(k)
	if !kind.IsValid() {
		return Value{}, nd.errf(nil, "field %q: unknown kind %d", name, k)
	}
	if err := nd.expect(payloadCodeFor(kind), fmt.Sprintf("field %q: %v payload", name, kind)); err != nil {
		return Value{}, err
	}

	switch {
	case kind == KindNode:
		child, err := nd.decodeNode(depth + 1)
		if err != nil {
			return Value{}, err
		}
		return Value{kind: KindNode, node: child}, nil

	case kind == KindString:
		s, err := nd.dec.DecodeString()
		if err != nil {
			return Value{}, nd.errf(err, "field %q: failed to decode %v", name, kind)
		}
		return Value{kind: kind, str: s}, nil

	case kind == KindBool:
		b, err := nd.dec.DecodeBool()
		if err != nil {
			return Value{}, nd.errf(err, "field %q: failed to decode %v", name, kind)
		}
		return Value{kind: kind, word: boolToWord(b)}, nil

	case kind.isSigned(), kind.isUnsigned():
		w, neg, err := nd.decodeInteger()
		if err != nil {
			return Value{}, nd.errf(err, "field %q: failed to decode %v", name, kind)
		}
		switch {
		case neg && kind.isUnsigned():
			return Value{}, nd.errf(nil, "field %q: %d out of range for %v", name, int64(w), kind)
		case !neg && kind.isSigned() && w > math.MaxInt64:
			return Value{}, nd.errf(nil, "field %q: %d out of range for %v", name, w, kind)
		case !fitsKind(kind, w):
			return Value{}, nd.errf(nil, "field %q: payload out of range for %v", name, kind)
		}
		return Value{kind: kind, word: w}, nil

	case kind == KindFloat32:
		f, err := nd.dec.DecodeFloat32()
		if err != nil {
			return Value{}, nd.errf(err, "field %q: failed to decode %v", name, kind)
		}
		return Value{kind: kind, word: float32ToWord(f)}, nil

	case kind == KindFloat64:
		f, err := nd.dec.DecodeFloat64()
		if err != nil {
			return Value{}, nd.errf(err, "field %q: failed to decode %v", name, kind)
		}
		return Value{kind: kind, word: float64ToWord(f)}, nil

	default:
		return Value{}, nd.errf(nil, "field %q: unknown kind %d", name, k)
	}
}

// expect peeks at the next msgpack code and fails unless ok accepts it.
// msgpack's own readers convert between numeric codes and turn nil into
// zero values, so payloads are checked before they are read.
func (nd *nodeDecoder) expect(ok func(c byte) bool, what string) error {
	c, err := nd.dec.PeekCode()
	if err != nil {
		return nd.errf(err, "failed to decode %s", what)
	}
	if !ok(c) {
		return nd.errf(nil, "%s: unexpected msgpack code %#x", what, c)
	}
	return nil
}

// decodeInteger reads an integer of either signedness as a word. neg is set
// for negative values, whose word is the two's complement.
func (nd *nodeDecoder) decodeInteger() (w uint64, neg bool, err error) {
	c, err := nd.dec.PeekCode()
	if err != nil {
		return 0, false, err
	}
	if isUintCode(c) {
		w, err = nd.dec.DecodeUint64()
		return w, false, err
	}
	i, err := nd.dec.DecodeInt64()
	return uint64(i), i < 0, err
}

func payloadCodeFor(kind Kind) func(c byte) bool {
	switch {
	case kind == KindNode:
		return isMapCode
	case kind == KindString:
		return msgpcode.IsString
	case kind == KindBool:
		return isBoolCode
	case kind.isSigned(), kind.isUnsigned():
		return isIntegerCode
	case kind == KindFloat32:
		return isFloat32Code
	case kind == KindFloat64:
		return isFloatCode
	default:
		return func(byte) bool { return false }
	}
}

func isMapCode(c byte) bool {
	return msgpcode.IsFixedMap(c) || c == msgpcode.Map16 || c == msgpcode.Map32
}

func isBoolCode(c byte) bool {
	return c == msgpcode.False || c == msgpcode.True
}

func isUintCode(c byte) bool {
	return c <= msgpcode.PosFixedNumHigh || (c >= msgpcode.Uint8 && c <= msgpcode.Uint64)
}

func isIntCode(c byte) bool {
	return c >= msgpcode.NegFixedNumLow || (c >= msgpcode.Int8 && c <= msgpcode.Int64)
}

func isIntegerCode(c byte) bool {
	return isUintCode(c) || isIntCode(c)
}

func isFloat32Code(c byte) bool {
	return c == msgpcode.Float
}

// float32 widens to float64 exactly.
func isFloatCode(c byte) bool {
	return c == msgpcode.Float || c == msgpcode.Double
}
