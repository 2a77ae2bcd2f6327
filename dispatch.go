package databook

// A composite type declares how it is archived by embedding exactly one of
// the shape markers below. Each marker contributes an unexported shape()
// method with a different result type, so a type embedding both ends up with
// an ambiguous shape() and satisfies neither Storable nor Serializable, and a
// type embedding neither satisfies neither as well. Either way the call to
// WriteObject, LoadObject or SerializeObject does not compile.
//
// Built-in primitives have no methods and composites are never in the exact
// Primitive type set, so no type can be both a primitive and a composite.

type (
	asymmetricShape struct{}
	symmetricShape  struct{}
)

// Asymmetric marks a composite archived by a Store/Load method pair.
//
//	type Point struct {
//		databook.Asymmetric
//		X, Y int
//	}
//
//	func (p Point) Store(nb *databook.Notebook) error { ... }
//	func (Point) Load(nb *databook.Notebook) (Point, error) { ... }
type Asymmetric struct{}

func (Asymmetric) shape() asymmetricShape { return asymmetricShape{} }

// Symmetric marks a composite archived by a single Serialize method that
// reads or writes every field depending on the notebook's mode.
//
//	type Point struct {
//		databook.Symmetric
//		X, Y int
//	}
//
//	func (p *Point) Serialize(nb *databook.Notebook) error { ... }
type Symmetric struct{}

func (Symmetric) shape() symmetricShape { return symmetricShape{} }

// Storable is satisfied by asymmetric composites. Store writes the fields of
// the receiver; Load is called on the zero value of T and returns a freshly
// constructed T, reading fields in the same order Store wrote them.
type Storable[T any] interface {
	shape() asymmetricShape
	Store(nb *Notebook) error
	Load(nb *Notebook) (T, error)
}

// Serializable is satisfied by pointers to symmetric composites.
type Serializable[T any] interface {
	*T
	shape() symmetricShape
	Serialize(nb *Notebook) error
}

// WriteObject archives v into a new nested node stored under name. The field
// is only set once v.Store has succeeded.
func WriteObject[T Storable[T]](nb *Notebook, name string, v T) error {
	if nb.Mode() != Writing {
		return nb.wrongMode(name)
	}
	child := nb.child(name, NewWritingStore())
	if err := v.Store(child); err != nil {
		return err
	}
	return nb.put(name, NodeValue(child.Data()))
}

// LoadObject reconstructs a T from the nested node stored under name.
func LoadObject[T Storable[T]](nb *Notebook, name string) (T, error) {
	var zero T
	child, err := nb.open(name)
	if err != nil {
		return zero, err
	}
	return zero.Load(child)
}

// SerializeObject writes *v into a nested node in writing mode, and populates
// *v in place from the nested node in loading mode. A failed load leaves the
// fields assigned before the failure in place.
func SerializeObject[T any, P Serializable[T]](nb *Notebook, name string, v P) error {
	switch nb.Mode() {
	case Writing:
		child := nb.child(name, NewWritingStore())
		if err := v.Serialize(child); err != nil {
			return err
		}
		return nb.put(name, NodeValue(child.Data()))
	default:
		child, err := nb.open(name)
		if err != nil {
			return err
		}
		return v.Serialize(child)
	}
}

func (nb *Notebook) open(name string) (*Notebook, error) {
	v, err := nb.get(name)
	if err != nil {
		return nil, err
	}
	node, ok := v.Node()
	if !ok {
		return nil, nb.mismatch(name, KindNode, v.kind)
	}
	nb.trace("open", name, KindNode)
	return nb.child(name, NewLoadingStore(node)), nil
}
