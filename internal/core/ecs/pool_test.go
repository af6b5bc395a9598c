package ecs

import (
	"errors"
	"testing"
)

type position struct{ X, Y int }
type velocity struct{ DX, DY int }
type health struct{ HP int }

// mustPanic runs fn and returns the recovered value, failing if fn returns
// normally.
func mustPanic(t *testing.T, fn func()) (v any) {
	t.Helper()
	defer func() {
		v = recover()
		if v == nil {
			t.Fatal("expected panic")
		}
	}()
	fn()
	return nil
}

func TestPoolBounds(t *testing.T) {
	p := NewPool[position](4)
	if p.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", p.Len())
	}

	t.Run("set in range", func(t *testing.T) {
		if err := p.Set(3, position{1, 2}); err != nil {
			t.Fatalf("Set(3) error: %v", err)
		}
		got, err := p.Get(3)
		if err != nil || got == nil || *got != (position{1, 2}) {
			t.Fatalf("Get(3) = %v, %v", got, err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		if err := p.Set(4, position{}); !errors.Is(err, ErrEntityDoesNotExist) {
			t.Errorf("Set(4) error = %v, want EntityDoesNotExist", err)
		}
		if _, err := p.Get(10); !errors.Is(err, ErrEntityDoesNotExist) {
			t.Errorf("Get(10) error = %v, want EntityDoesNotExist", err)
		}
		if err := p.Remove(-1); !errors.Is(err, ErrEntityDoesNotExist) {
			t.Errorf("Remove(-1) error = %v, want EntityDoesNotExist", err)
		}
		var ede *EntityDoesNotExistError
		if err := p.Set(7, position{}); !errors.As(err, &ede) || ede.ID != 7 {
			t.Errorf("Set(7) error = %v, want id 7", err)
		}
	})

	t.Run("empty slot", func(t *testing.T) {
		got, err := p.Get(0)
		if err != nil || got != nil {
			t.Errorf("Get(0) = %v, %v, want nil, nil", got, err)
		}
	})
}

func TestPoolRemoveIdempotent(t *testing.T) {
	p := NewPool[health](2)
	_ = p.Set(1, health{5})
	if p.Count() != 1 || p.IsEmpty() {
		t.Fatalf("Count() = %d, IsEmpty() = %v", p.Count(), p.IsEmpty())
	}
	for i := 0; i < 3; i++ {
		if err := p.Remove(1); err != nil {
			t.Fatalf("Remove #%d: %v", i, err)
		}
	}
	if !p.IsEmpty() || p.Has(1) {
		t.Errorf("pool not empty after Remove")
	}
}

func TestPoolResizeNeverShrinks(t *testing.T) {
	p := NewPool[health](2)
	_ = p.Set(1, health{7})
	p.Resize(40)
	if p.Len() != 40 {
		t.Fatalf("Len() = %d, want 40", p.Len())
	}
	p.Resize(3)
	if p.Len() != 40 {
		t.Fatalf("Len() after shrinking Resize = %d, want 40", p.Len())
	}
	if v, _ := p.Get(1); v == nil || v.HP != 7 {
		t.Errorf("value lost across Resize: %v", v)
	}
	p.Clear()
	if !p.IsEmpty() || p.Len() != 40 {
		t.Errorf("Clear: IsEmpty=%v Len=%d", p.IsEmpty(), p.Len())
	}
}

func TestPoolEachAscending(t *testing.T) {
	p := NewPool[health](10)
	for _, i := range []int{7, 2, 5} {
		_ = p.Set(i, health{i})
	}
	var got []Entity
	p.Each(func(e Entity, h *health) { got = append(got, e) })
	want := []Entity{2, 5, 7}
	if len(got) != len(want) {
		t.Fatalf("Each visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Each visited %v, want %v", got, want)
		}
	}
}

func TestBorrowRules(t *testing.T) {
	t.Run("many readers", func(t *testing.T) {
		p := NewPool[health](1)
		r1, r2 := newRef(p), newRef(p)
		r1.Release()
		r2.Release()
		w := newRefMut(p)
		w.Release()
	})

	t.Run("writer excludes reader", func(t *testing.T) {
		p := NewPool[health](1)
		w := newRefMut(p)
		v := mustPanic(t, func() { newRef(p) })
		if _, ok := v.(*BorrowError); !ok {
			t.Errorf("panic value %T, want *BorrowError", v)
		}
		w.Release()
		newRef(p).Release()
	})

	t.Run("reader excludes writer", func(t *testing.T) {
		p := NewPool[health](1)
		r := newRef(p)
		mustPanic(t, func() { newRefMut(p) })
		r.Release()
	})

	t.Run("two writers", func(t *testing.T) {
		p := NewPool[health](1)
		w := newRefMut(p)
		mustPanic(t, func() { newRefMut(p) })
		w.Release()
	})

	t.Run("double release", func(t *testing.T) {
		p := NewPool[health](1)
		r := newRef(p)
		r.Release()
		mustPanic(t, func() { r.Release() })
	})

	t.Run("use after release", func(t *testing.T) {
		p := NewPool[position](1)
		_ = p.Set(0, position{1, 1})
		r := newRef(p)
		r.Release()
		w := newRefMut(p)
		v, _ := w.Get(0)
		v.X = 99
		for name, use := range map[string]func(){
			"Get":   func() { r.Get(0) },
			"Has":   func() { r.Has(0) },
			"Count": func() { r.Count() },
			"Each":  func() { r.Each(func(Entity, position) {}) },
		} {
			got := mustPanic(t, use)
			if be, ok := got.(*BorrowError); !ok || be.Op != "use after release" {
				t.Errorf("Ref.%s after release: panic %v", name, got)
			}
		}
		w.Release()
		mustPanic(t, func() { w.Get(0) })
		mustPanic(t, func() { w.Each(func(Entity, *position) {}) })
	})

	t.Run("resource use after release", func(t *testing.T) {
		type score struct{ N int }
		res := NewResources()
		addResource(res, score{1})
		r, _ := readResource[score](res)
		r.Release()
		m, _ := writeResource[score](res)
		m.Get().N = 2
		mustPanic(t, func() { r.Get() })
		m.Release()
		mustPanic(t, func() { m.Get() })
	})

	t.Run("structural write under view", func(t *testing.T) {
		cm := NewComponentManager(4)
		if _, err := cm.Add(0, C(health{1})); err != nil {
			t.Fatal(err)
		}
		r, err := Components[health](cm)
		if err != nil {
			t.Fatal(err)
		}
		mustPanic(t, func() { _, _ = cm.Add(1, C(health{2})) })
		r.Release()
		if _, err := cm.Add(1, C(health{2})); err != nil {
			t.Fatalf("Add after release: %v", err)
		}
	})
}

func TestRefMutEditsInPlace(t *testing.T) {
	p := NewPool[position](3)
	_ = p.Set(2, position{1, 1})
	w := newRefMut(p)
	if v, ok := w.Get(2); ok {
		v.X = 9
	}
	if _, ok := w.Get(0); ok {
		t.Error("Get(0) on empty slot reported ok")
	}
	w.Release()

	r := newRef(p)
	defer r.Release()
	if v, _ := r.Get(2); v.X != 9 {
		t.Errorf("X = %d, want 9", v.X)
	}
}
