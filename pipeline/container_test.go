package pipeline

import (
	"reflect"
	"testing"
)

type sizeTag struct {
	W, H int
}

type colorTag struct {
	Name string
}

func TestContainerPrimary(t *testing.T) {
	c := NewContainer(42)
	if got := c.Primary(); got != 42 {
		t.Fatalf("Primary() = %v, want 42", got)
	}
}

func TestContainerAttachmentsByType(t *testing.T) {
	c := NewContainer("item")
	c.Add(sizeTag{W: 3, H: 4})
	c.Add(colorTag{Name: "red"})

	if !c.Has(reflect.TypeOf(sizeTag{})) {
		t.Error("sizeTag attachment missing")
	}
	if !c.Has(reflect.TypeOf(colorTag{})) {
		t.Error("colorTag attachment missing")
	}

	v, ok := c.Get(reflect.TypeOf(sizeTag{}))
	if !ok {
		t.Fatal("Get(sizeTag) reported absent")
	}
	if v.(sizeTag).W != 3 {
		t.Errorf("sizeTag = %+v, want W=3", v)
	}
}

func TestContainerReplaceSameType(t *testing.T) {
	c := NewContainer("item")
	c.Add(colorTag{Name: "red"})
	c.Add(colorTag{Name: "blue"})

	got, ok := Lookup[colorTag](c)
	if !ok {
		t.Fatal("colorTag attachment missing after replace")
	}
	if got.Name != "blue" {
		t.Errorf("colorTag.Name = %q, want %q (last add wins)", got.Name, "blue")
	}
}

func TestContainerAbsentAttachment(t *testing.T) {
	c := NewContainer("item")

	if c.Has(reflect.TypeOf(sizeTag{})) {
		t.Error("Has reported attachment on empty container")
	}
	v, ok := c.Get(reflect.TypeOf(sizeTag{}))
	if ok || v != nil {
		t.Errorf("Get on empty container = (%v, %v), want (nil, false)", v, ok)
	}
	if _, ok := Lookup[sizeTag](c); ok {
		t.Error("Lookup reported attachment on empty container")
	}
}

func TestContainerAddNilIgnored(t *testing.T) {
	c := NewContainer("item")
	c.Add(nil)
	found := false
	c.each(func(reflect.Type, any) { found = true })
	if found {
		t.Error("nil attachment was stored")
	}
}

type shape interface {
	Area() int
}

type rect struct{ W, H int }

func (r rect) Area() int { return r.W * r.H }

func TestAttachUnderInterfaceType(t *testing.T) {
	c := NewContainer("item")
	Attach[shape](c, rect{W: 2, H: 5})

	if !Has[shape](c) {
		t.Fatal("shape attachment missing")
	}
	// Keyed by the interface, not the concrete type.
	if Has[rect](c) {
		t.Error("attachment unexpectedly keyed by concrete type")
	}
	s, ok := Lookup[shape](c)
	if !ok || s.Area() != 10 {
		t.Errorf("Lookup[shape] = (%v, %v), want area 10", s, ok)
	}
}

func TestWrap(t *testing.T) {
	existing := NewContainer("pre-wrapped")
	out := Wrap([]any{1, existing, "three"})

	if len(out) != 3 {
		t.Fatalf("Wrap returned %d containers, want 3", len(out))
	}
	if out[0].Primary() != 1 || out[2].Primary() != "three" {
		t.Error("plain values not wrapped in order")
	}
	if out[1] != existing {
		t.Error("existing container was re-wrapped instead of passed through")
	}
}

func TestPrimaryAs(t *testing.T) {
	c := NewContainer(rect{W: 1, H: 2})

	r, ok := PrimaryAs[rect](c)
	if !ok || r.W != 1 {
		t.Errorf("PrimaryAs[rect] = (%+v, %v)", r, ok)
	}
	if _, ok := PrimaryAs[string](c); ok {
		t.Error("PrimaryAs succeeded for wrong type")
	}
}
