package databook

import (
	"path/filepath"
	"reflect"
	"testing"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func eq[T comparable](t testing.TB, a, e T) {
	if a != e {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func deepEqual[T any](t testing.TB, a, e T) {
	if !reflect.DeepEqual(a, e) {
		t.Helper()
		t.Errorf("** got %v, wanted %v", a, e)
	}
}

func ok(t testing.TB, err error) {
	if err != nil {
		t.Helper()
		t.Fatalf("** unexpected error: %v", err)
	}
}

func sameNode(t testing.TB, a, e *Node) {
	if !a.Equal(e) {
		t.Helper()
		t.Errorf("** got %s, wanted %s", a.Dump(), e.Dump())
	}
}

func assertPanics(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	fn()
}

func setupShelf(t testing.TB, opt Options) *Shelf {
	t.Helper()
	opt.IsTesting = true
	path := filepath.Join(t.TempDir(), "shelf.db")
	t.Logf("shelf: %s", path)
	sh := must(Open(path, opt))
	t.Cleanup(func() { sh.Close() })
	return sh
}

// node builds a tree from alternating names and values; values may be
// primitives, Values or *Node.
func node(pairs ...any) *Node {
	n := NewNode()
	for i := 0; i < len(pairs); i += 2 {
		name := pairs[i].(string)
		switch v := pairs[i+1].(type) {
		case Value:
			n.Put(name, v)
		case *Node:
			n.Put(name, NodeValue(v))
		case bool:
			n.Put(name, ValueOf(v))
		case int:
			n.Put(name, ValueOf(v))
		case int64:
			n.Put(name, ValueOf(v))
		case uint64:
			n.Put(name, ValueOf(v))
		case float64:
			n.Put(name, ValueOf(v))
		case string:
			n.Put(name, ValueOf(v))
		default:
			panic("unsupported test value")
		}
	}
	return n
}

func must2[T1, T2 any](v1 T1, v2 T2, err error) (T1, T2) {
	if err != nil {
		panic(err)
	}
	return v1, v2
}
