package databook

import (
	"fmt"
	"strings"
)

type DumpFlags uint64

const (
	DumpHeader = DumpFlags(1 << iota)
	DumpStats
	DumpTrees

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the whole shelf for debugging. Damaged records are reported
// inline instead of failing the dump.
func (sh *Shelf) Dump(f DumpFlags) (string, error) {
	var w strings.Builder
	prefix := sh.bucket

	if f.Contains(DumpHeader) || f.Contains(DumpStats) {
		s, err := sh.Stats()
		if err != nil {
			return "", err
		}
		if f.Contains(DumpHeader) {
			fmt.Fprintln(&w, dumpSep1)
			fmt.Fprintf(&w, "%s (%d trees)\n", prefix, s.Trees)
		}
		if f.Contains(DumpStats) {
			fmt.Fprintf(&w, "%s.stats: compressed = %d, data_size = %d, data_alloc = %d\n", prefix, s.Compressed, s.DataSize, s.DataAlloc)
		}
	}

	if f.Contains(DumpTrees) {
		if f.Contains(DumpStats) {
			fmt.Fprintln(&w, dumpSep2)
		}
		err := sh.read(func(b storageBucket) error {
			return b.ForEach(func(k, v []byte) error {
				dumpRecord(&w, prefix, string(k), v)
				return nil
			})
		})
		if err != nil {
			return "", err
		}
	}
	return w.String(), nil
}

func dumpRecord(w *strings.Builder, prefix, name string, raw []byte) {
	flags, _, err := splitRecord(raw)
	if err != nil {
		fmt.Fprintf(w, "%s.%s = ** ERROR: %v\n", prefix, name, err)
		return
	}
	n, err := decodeRecord(raw)
	if err != nil {
		fmt.Fprintf(w, "%s.%s = (v%d %d bytes) ** ERROR: %v\n", prefix, name, flags.ver(), len(raw), err)
		return
	}
	var mark string
	if flags.compressed() {
		mark = " snappy"
	}
	fmt.Fprintf(w, "%s.%s = (v%d%s %d bytes) %s\n", prefix, name, flags.ver(), mark, len(raw), n.Dump())
}
