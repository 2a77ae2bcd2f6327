package databook

import "fmt"

// Mode is the direction a Store, and the Notebook bound to it, operates in.
type Mode int

const (
	Writing Mode = iota + 1
	Loading
)

func (m Mode) String() string {
	switch m {
	case Writing:
		return "writing"
	case Loading:
		return "loading"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Store is the backing store a Notebook delegates to. A store is bound to a
// single Node for its whole life and only ever moves data in one direction.
//
// Custom stores (say, one that mirrors writes to a file) must fail Put with
// ErrWrongMode when loading and Get with ErrWrongMode when writing, and Get
// must fail with ErrKeyNotFound for absent names.
type Store interface {
	Mode() Mode

	// Put stores v under name. Writing stores only.
	Put(name string, v Value) error

	// Get returns the value under name. Loading stores only.
	Get(name string) (Value, error)

	// Data returns the bound node. The node of a loading store belongs to
	// whoever built it and must not be modified through Data.
	Data() *Node
}

// WritingStore accumulates fields into a fresh Node. Writing a name twice
// keeps only the second value.
type WritingStore struct {
	node *Node
}

func NewWritingStore() *WritingStore {
	return &WritingStore{node: NewNode()}
}

func (s *WritingStore) Mode() Mode  { return Writing }
func (s *WritingStore) Data() *Node { return s.node }

func (s *WritingStore) Put(name string, v Value) error {
	s.node.Put(name, v)
	return nil
}

func (s *WritingStore) Get(name string) (Value, error) {
	return Value{}, &FieldError{Name: name, Mode: Writing, Err: ErrWrongMode}
}

// LoadingStore reads fields of an existing Node. The node is shared with
// whoever built it and is never modified.
type LoadingStore struct {
	node *Node
}

func NewLoadingStore(node *Node) *LoadingStore {
	if node == nil {
		panic(fmt.Errorf("databook: loading store needs a node"))
	}
	return &LoadingStore{node: node}
}

func (s *LoadingStore) Mode() Mode { return Loading }

// Data returns the shared source node. Callers must treat it as read-only.
func (s *LoadingStore) Data() *Node { return s.node }

func (s *LoadingStore) Put(name string, v Value) error {
	return &FieldError{Name: name, Mode: Loading, Err: ErrWrongMode}
}

func (s *LoadingStore) Get(name string) (Value, error) {
	return s.node.Get(name)
}
