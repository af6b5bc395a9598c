package ecs

import (
	"errors"
	"strings"
	"testing"
)

// distinctKeys returns 33 keys of pairwise distinct types.
func distinctKeys() []ComponentKey {
	return []ComponentKey{
		Key[[1]byte](), Key[[2]byte](), Key[[3]byte](), Key[[4]byte](),
		Key[[5]byte](), Key[[6]byte](), Key[[7]byte](), Key[[8]byte](),
		Key[[9]byte](), Key[[10]byte](), Key[[11]byte](), Key[[12]byte](),
		Key[[13]byte](), Key[[14]byte](), Key[[15]byte](), Key[[16]byte](),
		Key[[17]byte](), Key[[18]byte](), Key[[19]byte](), Key[[20]byte](),
		Key[[21]byte](), Key[[22]byte](), Key[[23]byte](), Key[[24]byte](),
		Key[[25]byte](), Key[[26]byte](), Key[[27]byte](), Key[[28]byte](),
		Key[[29]byte](), Key[[30]byte](), Key[[31]byte](), Key[[32]byte](),
		Key[[33]byte](),
	}
}

func TestComponentManagerAssignsBits(t *testing.T) {
	cm := NewComponentManager(0)
	m1, err := cm.Add(0, C(position{}))
	if err != nil {
		t.Fatal(err)
	}
	m2, _ := cm.Add(0, C(velocity{}))
	m3, _ := cm.Add(5, C(position{1, 1}))

	if m1 != 1 || m2 != 2 {
		t.Errorf("masks = %b, %b, want 1, 10", m1, m2)
	}
	if m3 != m1 {
		t.Errorf("second position mask = %b, want %b", m3, m1)
	}
	if cm.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cm.Len())
	}
	sigs := cm.Signatures()
	if sigs["ecs.position"] != 1 || sigs["ecs.velocity"] != 2 {
		t.Errorf("Signatures() = %v", sigs)
	}
}

func TestComponentManagerGrowsPool(t *testing.T) {
	cm := NewComponentManager(2)
	if _, err := cm.Add(100, C(health{3})); err != nil {
		t.Fatal(err)
	}
	p, err := PoolOf[health](cm)
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() < 101 {
		t.Errorf("pool Len() = %d, want >= 101", p.Len())
	}
	if !cm.Has(Key[health](), 100) {
		t.Error("Has(health, 100) = false")
	}
}

func TestComponentManagerUnknownType(t *testing.T) {
	cm := NewComponentManager(0)
	if _, err := Components[position](cm); !errors.Is(err, ErrComponentDoesNotExist) {
		t.Errorf("Components error = %v", err)
	}
	if _, err := ComponentsMut[position](cm); !errors.Is(err, ErrComponentDoesNotExist) {
		t.Errorf("ComponentsMut error = %v", err)
	}
	if err := cm.Remove(Key[position](), 0); !errors.Is(err, ErrComponentDoesNotExist) {
		t.Errorf("Remove error = %v", err)
	}
	_, err := cm.Mask(Key[position]())
	var cde *ComponentDoesNotExistError
	if !errors.As(err, &cde) || cde.Type != "ecs.position" {
		t.Errorf("Mask error = %v", err)
	}
}

func TestComponentManagerRemoveByType(t *testing.T) {
	cm := NewComponentManager(0)
	_, _ = cm.Add(3, C(position{}))
	if err := cm.RemoveByType(Key[position]().Type(), 3); err != nil {
		t.Fatal(err)
	}
	if cm.Has(Key[position](), 3) {
		t.Error("still present after RemoveByType")
	}
	// Past the end of the pool is not an error for removal.
	if err := cm.RemoveByType(Key[position]().Type(), 500); err != nil {
		t.Errorf("RemoveByType past end: %v", err)
	}
}

func TestComponentCapacity(t *testing.T) {
	cm := NewComponentManager(0)
	keys := distinctKeys()
	var all Signature
	for _, k := range keys[:MaxComponentTypes] {
		m := cm.Register(k)
		if all&m != 0 {
			t.Fatalf("bit %b reused", m)
		}
		all |= m
	}
	if all != ^Signature(0) {
		t.Fatalf("32 types cover %b, want all bits", all)
	}
	// Registering a known type again is fine.
	cm.Register(keys[0])

	v := mustPanic(t, func() { cm.Register(keys[MaxComponentTypes]) })
	if s, _ := v.(string); !strings.Contains(s, "too many component types") {
		t.Errorf("panic = %v", v)
	}
	if cm.Len() != MaxComponentTypes {
		t.Errorf("Len() = %d after rejected registration", cm.Len())
	}
}

func TestKeyIdentity(t *testing.T) {
	if Key[position]() != Key[position]() {
		t.Error("keys of the same type differ")
	}
	if Key[position]() == Key[velocity]() {
		t.Error("keys of different types are equal")
	}
	if got := Key[position]().String(); got != "ecs.position" {
		t.Errorf("String() = %q", got)
	}
	if C(velocity{}).Key() != Key[velocity]() {
		t.Error("C(v).Key() differs from Key[T]()")
	}
}
