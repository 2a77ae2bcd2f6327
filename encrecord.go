package databook

import (
	"github.com/cespare/xxhash/v2"
	"github.com/golang/snappy"
)

// A shelved tree is stored as a framed record:
//
//	flags:uvarint size:uvarint checksum:64 payload
//
// The checksum is xxhash64 of the payload as stored, i.e. after compression.
// The payload is the msgpack encoding of the tree, optionally snappy-compressed.

type recordFlags uint64

const (
	rfVerBit0 = recordFlags(1 << iota)
	rfVerBit1
	rfVerBit2
	rfVerBit3
	rfCompressionBit0

	rfVerMask       = (rfVerBit0 | rfVerBit1 | rfVerBit2 | rfVerBit3)
	rfVer1          = rfVerBit0
	rfSnappy        = rfCompressionBit0
	rfSupportedMask = (rfVer1 | rfSnappy)
	rfDefault       = rfVer1

	minRecordSize = 1 + 1 + 8
)

func (rf recordFlags) ver() recordFlags {
	return rf & rfVerMask
}

func (rf recordFlags) compressed() bool {
	return rf&rfSnappy != 0
}

// encodeRecord encodes and frames a tree.
func encodeRecord(buf []byte, n *Node, compress bool) ([]byte, error) {
	data, err := MarshalNode(n)
	if err != nil {
		return buf, err
	}
	flags := rfDefault
	if compress {
		data = snappy.Encode(nil, data)
		flags |= rfSnappy
	}
	return appendRecord(buf, flags, data), nil
}

func appendRecord(buf []byte, flags recordFlags, payload []byte) []byte {
	bb := bytesBuilder{buf}
	bb.AppendUvarint(uint64(flags))
	bb.AppendUvarint(uint64(len(payload)))
	bb.AppendFixedUint64(xxhash.Sum64(payload))
	_, _ = bb.Write(payload)
	return bb.Buf
}

// decodeRecord verifies the framing and decodes the tree.
func decodeRecord(raw []byte) (*Node, error) {
	flags, payload, err := splitRecord(raw)
	if err != nil {
		return nil, err
	}
	data := payload
	if flags.compressed() {
		data, err = snappy.Decode(nil, payload)
		if err != nil {
			return nil, dataErrf(raw, len(raw)-len(payload), err, "invalid record: bad snappy payload")
		}
	}
	return UnmarshalNode(data)
}

func splitRecord(raw []byte) (recordFlags, []byte, error) {
	if len(raw) < minRecordSize {
		return 0, nil, dataErrf(raw, 0, nil, "invalid record: at least %d bytes required", minRecordSize)
	}
	d := makeByteDecoder(raw)

	v, err := d.Uvarint()
	if err != nil {
		return 0, nil, err
	}
	if (v &^ uint64(rfSupportedMask)) != 0 {
		return 0, nil, dataErrf(raw, 0, nil, "invalid record: unsupported flags %x", v)
	}
	flags := recordFlags(v)
	if flags.ver() != rfVer1 {
		return 0, nil, dataErrf(raw, 0, nil, "invalid record: unsupported version %d", flags.ver())
	}

	size, err := d.Uvarinti()
	if err != nil {
		return 0, nil, err
	}
	sum, err := d.FixedUint64()
	if err != nil {
		return 0, nil, err
	}
	if len(d.Buf) != size {
		return 0, nil, dataErrf(raw, d.Off(), nil, "invalid record: got %d bytes of payload, expected %d bytes", len(d.Buf), size)
	}
	payload := d.Buf
	if actual := xxhash.Sum64(payload); actual != sum {
		return 0, nil, dataErrf(raw, d.Off(), nil, "invalid record: checksum mismatch: stored %016x, computed %016x", sum, actual)
	}
	return flags, payload, nil
}
