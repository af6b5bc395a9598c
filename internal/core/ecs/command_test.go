package ecs

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
)

func TestCommandBufferKeepsOrder(t *testing.T) {
	b := NewCommandBuffer()
	b.RemoveEntity(1)
	b.RemoveComponent(2, Key[position]())
	b.AddComponent(3, C(health{1}))
	b.CreateEntity(C(position{}), C(velocity{}))

	cmds := b.Commands()
	want := []CommandKind{CmdRemoveEntity, CmdRemoveComponent, CmdAddComponent, CmdCreateEntity}
	if len(cmds) != len(want) {
		t.Fatalf("Len = %d, want %d", len(cmds), len(want))
	}
	for i, k := range want {
		if cmds[i].Kind != k {
			t.Errorf("cmds[%d] = %s, want %s", i, cmds[i].Kind, k)
		}
	}
	if cmds[1].String() != "remove_component(2, ecs.position)" {
		t.Errorf("String() = %q", cmds[1].String())
	}

	drained := b.drain()
	if len(drained) != 4 || b.Len() != 0 {
		t.Errorf("drain: got %d commands, %d left", len(drained), b.Len())
	}
}

func TestDrainRemoveEntityThenComponent(t *testing.T) {
	w := NewWorld(Options{}, nil)
	x, _ := w.Spawn(C(position{}), C(velocity{}))
	y, _ := w.Spawn(C(position{}), C(velocity{}))
	_ = w.Update()

	t.Run("different entities", func(t *testing.T) {
		b := NewCommandBuffer()
		b.RemoveEntity(x)
		b.RemoveComponent(y, Key[velocity]())
		if err := w.apply(b); err != nil {
			t.Fatal(err)
		}
		if err := w.Update(); err != nil {
			t.Fatal(err)
		}
		if w.IsLive(x) {
			t.Error("x still live")
		}
		if w.HasComponent(y, Key[velocity]()) {
			t.Error("y still has velocity")
		}
		if !w.HasComponent(y, Key[position]()) {
			t.Error("y lost position")
		}
	})

	t.Run("same entity", func(t *testing.T) {
		z, _ := w.Spawn(C(position{}), C(velocity{}))
		_ = w.Update()

		b := NewCommandBuffer()
		b.RemoveEntity(z)
		b.RemoveComponent(z, Key[velocity]())
		// Destruction waits for Update, so the component removal still
		// targets a live entity.
		if err := w.apply(b); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if !w.IsLive(z) {
			t.Fatal("z destroyed before Update")
		}
		if w.HasComponent(z, Key[velocity]()) {
			t.Error("z still has velocity after the drain")
		}
		if !w.HasComponent(z, Key[position]()) {
			t.Error("z lost position before Update")
		}
		_ = w.Update()
		if w.IsLive(z) {
			t.Error("z still live after Update")
		}
	})
}

func TestDrainOrderIsObservable(t *testing.T) {
	w := NewWorld(Options{}, nil)
	e, _ := w.Spawn(C(position{}))
	_ = w.Update()

	b := NewCommandBuffer()
	b.AddComponent(e, C(health{5}))
	b.RemoveComponent(e, Key[health]())
	if err := w.apply(b); err != nil {
		t.Fatal(err)
	}
	if w.HasComponent(e, Key[health]()) {
		t.Error("add then remove left the component in place")
	}

	b.RemoveComponent(e, Key[health]())
	b.AddComponent(e, C(health{6}))
	if err := w.apply(b); err != nil {
		t.Fatal(err)
	}
	if h, ok := Get[health](w, e); !ok || h.HP != 6 {
		t.Errorf("remove then add: got %v, %v", h, ok)
	}
}

func TestDrainCreateEntity(t *testing.T) {
	w := NewWorld(Options{}, nil)
	rec := &recorder{keys: []ComponentKey{Key[position]()}}
	w.AddSystem(rec, true)

	b := NewCommandBuffer()
	b.CreateEntity(C(position{3, 3}), C(health{1}))
	if err := w.apply(b); err != nil {
		t.Fatal(err)
	}
	sys, _ := GetSystem[*recorder](w)
	if sys.Len() != 0 {
		t.Fatal("created entity visible before Update")
	}
	_ = w.Update()
	if sys.Len() != 1 {
		t.Fatalf("system has %d entities, want 1", sys.Len())
	}
	e := sys.Entities()[0]
	if p, _ := Get[position](w, e); p != (position{3, 3}) {
		t.Errorf("position = %v", p)
	}
}

func TestDrainCollectsErrors(t *testing.T) {
	w := NewWorld(Options{}, nil)
	e, _ := w.Spawn(C(position{}))
	_ = w.Update()

	b := NewCommandBuffer()
	b.RemoveEntity(Entity(40))
	b.AddComponent(Entity(41), C(health{}))
	b.AddComponent(e, C(health{2}))

	err := w.apply(b)
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("got %d errors (%v), want 2", got, err)
	}
	if !errors.Is(err, ErrEntityDoesNotExist) {
		t.Errorf("error %v does not match EntityDoesNotExist", err)
	}
	// Commands after a failure still run.
	if !w.HasComponent(e, Key[health]()) {
		t.Error("command after failures was skipped")
	}
}
