package databook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Notebook is the façade objects archive themselves through. It owns exactly
// one Store, and the store's mode decides whether the notebook builds a tree
// (Write, WriteObject) or reads one (Load, LoadObject). Serialize and
// SerializeObject work in either mode.
//
// Notebooks are cheap, short-lived adapters. The Node tree is the durable
// artifact. A Notebook must not be used from multiple goroutines at once.
type Notebook struct {
	store  Store
	path   string
	logger *slog.Logger
}

func NewNotebook(store Store) *Notebook {
	if store == nil {
		panic(fmt.Errorf("databook: nil store"))
	}
	switch m := store.Mode(); m {
	case Writing, Loading:
	default:
		panic(fmt.Errorf("databook: store reports invalid %v", m))
	}
	return &Notebook{store: store}
}

// NewWriter returns a notebook building a fresh tree.
func NewWriter() *Notebook {
	return NewNotebook(NewWritingStore())
}

// NewReader returns a notebook reading the given tree.
func NewReader(node *Node) *Notebook {
	return NewNotebook(NewLoadingStore(node))
}

func (nb *Notebook) Mode() Mode   { return nb.store.Mode() }
func (nb *Notebook) Store() Store { return nb.store }
func (nb *Notebook) Data() *Node  { return nb.store.Data() }

// Path is the dotted path of this notebook's node relative to the root
// notebook; empty for the root itself.
func (nb *Notebook) Path() string { return nb.path }

// SetLogger enables debug logging of every field written or loaded through
// this notebook and the child notebooks it creates afterwards.
func (nb *Notebook) SetLogger(logger *slog.Logger) {
	nb.logger = logger
}

// Has reports whether the bound node has a field with the given name.
func (nb *Notebook) Has(name string) bool {
	return nb.store.Data().Has(name)
}

// Write stores a primitive under name.
func Write[T Primitive](nb *Notebook, name string, v T) error {
	return nb.put(name, ValueOf(v))
}

// Load assigns the primitive stored under name to *out. On error *out is
// left untouched.
func Load[T Primitive](nb *Notebook, name string, out *T) error {
	v, err := Get[T](nb, name)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

// Get returns the primitive stored under name.
func Get[T Primitive](nb *Notebook, name string) (T, error) {
	var zero T
	v, err := nb.get(name)
	if err != nil {
		return zero, err
	}
	r, err := ValueAs[T](v)
	if err != nil {
		return zero, nb.mismatch(name, kindOf[T](), v.kind)
	}
	nb.trace("load", name, v.kind)
	return r, nil
}

// LoadOr is Get that substitutes def for a missing field. Type mismatches
// and mode errors are still reported, together with def.
func LoadOr[T Primitive](nb *Notebook, name string, def T) (T, error) {
	v, err := Get[T](nb, name)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return def, nil
		}
		return def, err
	}
	return v, nil
}

// Serialize writes *v in writing mode and loads into *v in loading mode.
func Serialize[T Primitive](nb *Notebook, name string, v *T) error {
	if nb.Mode() == Writing {
		return Write(nb, name, *v)
	}
	return Load(nb, name, v)
}

// Capture runs fn against a fresh writing notebook and returns the tree it
// built. Pass a composite's Store or Serialize method to archive it as the
// root node.
func Capture(fn func(nb *Notebook) error) (*Node, error) {
	nb := NewWriter()
	if err := fn(nb); err != nil {
		return nil, err
	}
	return nb.Data(), nil
}

// Replay runs fn against a loading notebook bound to node.
func Replay(node *Node, fn func(nb *Notebook) error) error {
	return fn(NewReader(node))
}

func (nb *Notebook) put(name string, v Value) error {
	if nb.Mode() != Writing {
		return nb.wrongMode(name)
	}
	if err := nb.store.Put(name, v); err != nil {
		return nb.wrap(name, err)
	}
	nb.trace("write", name, v.kind)
	return nil
}

func (nb *Notebook) get(name string) (Value, error) {
	if nb.Mode() != Loading {
		return Value{}, nb.wrongMode(name)
	}
	v, err := nb.store.Get(name)
	if err != nil {
		return Value{}, nb.wrap(name, err)
	}
	return v, nil
}

func (nb *Notebook) child(name string, store Store) *Notebook {
	return &Notebook{
		store:  store,
		path:   joinPath(nb.path, name),
		logger: nb.logger,
	}
}

func (nb *Notebook) wrap(name string, err error) error {
	var fe *FieldError
	if errors.As(err, &fe) && fe.Path == "" {
		out := *fe
		out.Path = nb.path
		if out.Name == "" {
			out.Name = name
		}
		if out.Mode == 0 {
			out.Mode = nb.Mode()
		}
		return &out
	}
	return &FieldError{Path: nb.path, Name: name, Mode: nb.Mode(), Err: err}
}

func (nb *Notebook) wrongMode(name string) error {
	return &FieldError{Path: nb.path, Name: name, Mode: nb.Mode(), Err: ErrWrongMode}
}

func (nb *Notebook) mismatch(name string, want, got Kind) error {
	return &FieldError{Path: nb.path, Name: name, Mode: nb.Mode(), Want: want, Got: got, Err: ErrTypeMismatch}
}

func (nb *Notebook) trace(op, name string, kind Kind) {
	if nb.logger == nil {
		return
	}
	nb.logger.LogAttrs(context.Background(), slog.LevelDebug, "databook: "+op,
		slog.String("field", joinPath(nb.path, name)),
		slog.String("kind", kind.String()))
}
