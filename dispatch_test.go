package databook

import (
	"errors"
	"testing"
)

type composite struct {
	Asymmetric
	val1 int
	val2 string
	val3 bool
}

func (c composite) Store(nb *Notebook) error {
	if err := Write(nb, "val1", c.val1); err != nil {
		return err
	}
	if err := Write(nb, "val2", c.val2); err != nil {
		return err
	}
	return Write(nb, "val3", c.val3)
}

func (composite) Load(nb *Notebook) (composite, error) {
	var c composite
	if err := Load(nb, "val1", &c.val1); err != nil {
		return c, err
	}
	if err := Load(nb, "val2", &c.val2); err != nil {
		return c, err
	}
	if err := Load(nb, "val3", &c.val3); err != nil {
		return c, err
	}
	return c, nil
}

type symComposite struct {
	Symmetric
	val1 int
	val2 string
	val3 bool
}

func (c *symComposite) Serialize(nb *Notebook) error {
	if err := Serialize(nb, "val1", &c.val1); err != nil {
		return err
	}
	if err := Serialize(nb, "val2", &c.val2); err != nil {
		return err
	}
	return Serialize(nb, "val3", &c.val3)
}

type point struct {
	Asymmetric
	X, Y int
}

func (p point) Store(nb *Notebook) error {
	if err := Write(nb, "x", p.X); err != nil {
		return err
	}
	return Write(nb, "y", p.Y)
}

func (point) Load(nb *Notebook) (point, error) {
	var p point
	var err error
	if p.X, err = Get[int](nb, "x"); err != nil {
		return p, err
	}
	if p.Y, err = Get[int](nb, "y"); err != nil {
		return p, err
	}
	return p, nil
}

type segment struct {
	Symmetric
	From, To point
	Label    string
}

func (s *segment) Serialize(nb *Notebook) error {
	switch nb.Mode() {
	case Writing:
		if err := WriteObject(nb, "from", s.From); err != nil {
			return err
		}
		if err := WriteObject(nb, "to", s.To); err != nil {
			return err
		}
	default:
		var err error
		if s.From, err = LoadObject[point](nb, "from"); err != nil {
			return err
		}
		if s.To, err = LoadObject[point](nb, "to"); err != nil {
			return err
		}
	}
	return Serialize(nb, "label", &s.Label)
}

type drawing struct {
	Asymmetric
	Title string
	Main  segment
}

func (d drawing) Store(nb *Notebook) error {
	if err := Write(nb, "title", d.Title); err != nil {
		return err
	}
	return SerializeObject(nb, "main", &d.Main)
}

func (drawing) Load(nb *Notebook) (drawing, error) {
	var d drawing
	if err := Load(nb, "title", &d.Title); err != nil {
		return d, err
	}
	if err := SerializeObject(nb, "main", &d.Main); err != nil {
		return d, err
	}
	return d, nil
}

var compositeNode = node("val1", 65, "val2", "sad apple", "val3", true)

func TestDispatch_Asymmetric(t *testing.T) {
	nb := NewWriter()
	ok(t, WriteObject(nb, "mytest", composite{val1: 65, val2: "sad apple", val3: true}))

	v := must(nb.Data().Get("mytest"))
	eq(t, v.Kind(), KindNode)
	child, _ := v.Node()
	sameNode(t, child, compositeNode)

	got := must(LoadObject[composite](NewReader(nb.Data()), "mytest"))
	eq(t, got, composite{val1: 65, val2: "sad apple", val3: true})
}

func TestDispatch_Symmetric(t *testing.T) {
	in := symComposite{val1: 65, val2: "sad apple", val3: true}
	nb := NewWriter()
	ok(t, SerializeObject(nb, "mytest", &in))

	child, _ := must(nb.Data().Get("mytest")).Node()
	sameNode(t, child, compositeNode)

	var out symComposite
	ok(t, SerializeObject(NewReader(nb.Data()), "mytest", &out))
	eq(t, out, in)
}

func TestDispatch_ShapesProduceSameTree(t *testing.T) {
	a := NewWriter()
	ok(t, WriteObject(a, "obj", composite{val1: -1, val2: "", val3: false}))
	s := NewWriter()
	ok(t, SerializeObject(s, "obj", &symComposite{val1: -1, val2: "", val3: false}))
	sameNode(t, a.Data(), s.Data())

	// a tree written by one shape loads through the other
	var out symComposite
	ok(t, SerializeObject(NewReader(a.Data()), "obj", &out))
	eq(t, out.val1, -1)
	got := must(LoadObject[composite](NewReader(s.Data()), "obj"))
	eq(t, got.val1, -1)
}

func TestDispatch_Nesting(t *testing.T) {
	in := drawing{
		Title: "sketch",
		Main: segment{
			From:  point{X: 1, Y: 2},
			To:    point{X: -3, Y: 4},
			Label: "diagonal",
		},
	}
	root := must(Capture(in.Store))
	sameNode(t, root, node(
		"title", "sketch",
		"main", node(
			"from", node("x", 1, "y", 2),
			"to", node("x", -3, "y", 4),
			"label", "diagonal",
		),
	))

	var out drawing
	ok(t, Replay(root, func(nb *Notebook) error {
		var err error
		out, err = drawing{}.Load(nb)
		return err
	}))
	eq(t, out, in)
}

func TestDispatch_NestedErrorPath(t *testing.T) {
	root := node("title", "t", "main", node(
		"from", node("x", 1, "y", 2),
		"to", node("x", 1),
		"label", "l",
	))
	_, err := drawing{}.Load(NewReader(root))
	var fe *FieldError
	if !errors.As(err, &fe) || !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("** got %v, wanted missing key", err)
	}
	eq(t, fe.Path, "main.to")
	eq(t, fe.FullName(), "main.to.y")
	eq(t, err.Error(), "main.to.y: key not found")
}

func TestDispatch_PrimitiveWhereObjectExpected(t *testing.T) {
	nb := NewReader(node("mytest", 65))
	_, err := LoadObject[composite](nb, "mytest")
	var fe *FieldError
	if !errors.As(err, &fe) || !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("** got %v, wanted type mismatch", err)
	}
	eq(t, fe.Want, KindNode)
	eq(t, fe.Got, KindInt)

	var out symComposite
	err = SerializeObject(nb, "mytest", &out)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("** got %v, wanted type mismatch", err)
	}
}

func TestDispatch_WrongMode(t *testing.T) {
	err := WriteObject(NewReader(NewNode()), "x", point{})
	if !errors.Is(err, ErrWrongMode) {
		t.Fatalf("** got %v, wanted ErrWrongMode", err)
	}
	_, err = LoadObject[point](NewWriter(), "x")
	if !errors.Is(err, ErrWrongMode) {
		t.Fatalf("** got %v, wanted ErrWrongMode", err)
	}
}

type failing struct {
	Asymmetric
}

var errFailing = errors.New("failing")

func (failing) Store(nb *Notebook) error {
	if err := Write(nb, "partial", 1); err != nil {
		return err
	}
	return errFailing
}

func (failing) Load(nb *Notebook) (failing, error) {
	return failing{}, errFailing
}

func TestDispatch_FailedStoreLeavesNoField(t *testing.T) {
	nb := NewWriter()
	err := WriteObject(nb, "obj", failing{})
	if !errors.Is(err, errFailing) {
		t.Fatalf("** got %v, wanted errFailing", err)
	}
	eq(t, nb.Has("obj"), false)
}

func TestDispatch_OverwriteObject(t *testing.T) {
	nb := NewWriter()
	ok(t, WriteObject(nb, "obj", point{X: 1}))
	ok(t, Write(nb, "obj", "flat"))
	eq(t, must(nb.Data().KindOf("obj")), KindString)
}
