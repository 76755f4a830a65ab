package pipeline

import (
	"testing"
)

func passMap(_ *RunContext, item *Container) ([]*Container, error) {
	return One(item), nil
}

func passFilter(_ *RunContext, _ *Container) (bool, error) {
	return true, nil
}

func TestStepFactories(t *testing.T) {
	m := Map("m", passMap)
	if m.Kind() != KindMap || m.Mode() != ModeConcurrent {
		t.Errorf("Map: kind=%v mode=%v, want map/concurrent", m.Kind(), m.Mode())
	}

	f := Filter("f", passFilter, WithMode(ModeSequential))
	if f.Kind() != KindFilter || f.Mode() != ModeSequential {
		t.Errorf("Filter: kind=%v mode=%v, want filter/sequential", f.Kind(), f.Mode())
	}

	fold := Fold("fold", func(_ *RunContext, items []*Container) ([]*Container, error) {
		return items, nil
	})
	if fold.Kind() != KindFold || fold.Mode() != ModeSequential {
		t.Errorf("Fold: kind=%v mode=%v, want fold/sequential", fold.Kind(), fold.Mode())
	}
}

func TestStepIdentity(t *testing.T) {
	a := Map("same-name", passMap)
	b := Map("same-name", passMap)

	if a.ID() == b.ID() {
		t.Error("two step declarations share an id")
	}
	if a.Equal(b) {
		t.Error("distinct steps compare equal")
	}
	if !a.Equal(a) {
		t.Error("step not equal to itself")
	}
	if a.Equal(nil) {
		t.Error("step equal to nil")
	}
}

type minLength struct {
	n int
}

func (p minLength) Matches(item *Container) bool {
	s, _ := PrimaryAs[string](item)
	return len(s) >= p.n
}

func TestFilterPredicate(t *testing.T) {
	step := FilterPredicate("min-length", minLength{n: 3})

	keep, err := step.filterFn(nil, NewContainer("abcd"))
	if err != nil || !keep {
		t.Errorf("long value: keep=%v err=%v, want true", keep, err)
	}
	keep, err = step.filterFn(nil, NewContainer("ab"))
	if err != nil || keep {
		t.Errorf("short value: keep=%v err=%v, want false", keep, err)
	}
}

func TestMapWithArgsBindsOnce(t *testing.T) {
	type scaleArgs struct{ Factor int }

	scale := MapWithArgs("scale", func(_ *RunContext, args scaleArgs, item *Container) ([]*Container, error) {
		v, _ := PrimaryAs[int](item)
		return One(NewContainer(v * args.Factor)), nil
	})

	byTwo := scale(scaleArgs{Factor: 2})
	byTen := scale(scaleArgs{Factor: 10})

	out, err := byTwo.mapFn(nil, NewContainer(7))
	if err != nil || out[0].Primary() != 14 {
		t.Errorf("factor 2: %v, %v", out, err)
	}
	out, err = byTen.mapFn(nil, NewContainer(7))
	if err != nil || out[0].Primary() != 70 {
		t.Errorf("factor 10: %v, %v", out, err)
	}
	if byTwo.Equal(byTen) {
		t.Error("bound steps share an identity")
	}
}

func TestFilterWithArgs(t *testing.T) {
	type boundArgs struct{ Min int }

	atLeast := FilterWithArgs("at-least", func(_ *RunContext, args boundArgs, item *Container) (bool, error) {
		v, _ := PrimaryAs[int](item)
		return v >= args.Min, nil
	})

	step := atLeast(boundArgs{Min: 10})
	keep, err := step.filterFn(nil, NewContainer(12))
	if err != nil || !keep {
		t.Errorf("12 >= 10: keep=%v err=%v", keep, err)
	}
	keep, _ = step.filterFn(nil, NewContainer(3))
	if keep {
		t.Error("3 >= 10 kept")
	}
}

func TestOne(t *testing.T) {
	c := NewContainer(1)
	out := One(c)
	if len(out) != 1 || out[0] != c {
		t.Errorf("One(c) = %v", out)
	}
}
