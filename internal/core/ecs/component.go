package ecs

import (
	"reflect"
)

// ComponentKey identifies a component type at runtime. Obtain one with Key.
type ComponentKey interface {
	Type() reflect.Type
	String() string
	newStorage(capacity int) storage
}

type keyOf[T any] struct{}

func (keyOf[T]) Type() reflect.Type { return typeOf[T]() }
func (keyOf[T]) String() string     { return typeName(typeOf[T]()) }

func (keyOf[T]) newStorage(capacity int) storage { return NewPool[T](capacity) }

// Key returns the ComponentKey of T.
func Key[T any]() ComponentKey { return keyOf[T]{} }

// Component is a typed value boxed for transport through command buffers,
// prefabs and scripts. Build one with C.
type Component interface {
	Key() ComponentKey
	insert(cm *ComponentManager, e Entity) (Signature, error)
}

type boxed[T any] struct{ v T }

// C boxes v as a Component of type T.
func C[T any](v T) Component { return boxed[T]{v: v} }

func (b boxed[T]) Key() ComponentKey { return keyOf[T]{} }

func (b boxed[T]) insert(cm *ComponentManager, e Entity) (Signature, error) {
	return addComponent(cm, e, b.v)
}

// ComponentManager owns every component pool and assigns signature bits.
type ComponentManager struct {
	registry     *Registry
	initialSlots int
}

func NewComponentManager(initialSlots int) *ComponentManager {
	if initialSlots <= 0 {
		initialSlots = DefaultPoolCapacity
	}
	return &ComponentManager{
		registry:     NewRegistry(),
		initialSlots: initialSlots,
	}
}

// Register makes sure key has a pool and a bit, and returns the bit.
func (cm *ComponentManager) Register(key ComponentKey) Signature {
	if _, mask, ok := cm.registry.Lookup(key.Type()); ok {
		return mask
	}
	return cm.registry.Register(key.Type(), key.newStorage(cm.initialSlots))
}

// Add stores c for entity e, registering its type on first use.
func (cm *ComponentManager) Add(e Entity, c Component) (Signature, error) {
	return c.insert(cm, e)
}

func addComponent[T any](cm *ComponentManager, e Entity, v T) (Signature, error) {
	mask := cm.Register(keyOf[T]{})
	s, _, _ := cm.registry.Lookup(typeOf[T]())
	p := s.(*Pool[T])
	var err error
	exclusive(p, func() {
		if p.Len() <= e.Index() {
			p.Resize(e.Index() + 1)
		}
		err = p.Set(e.Index(), v)
	})
	return mask, err
}

// Remove clears e's slot in key's pool.
func (cm *ComponentManager) Remove(key ComponentKey, e Entity) error {
	return cm.RemoveByType(key.Type(), e)
}

// RemoveByType is Remove for callers that only hold the reflect.Type.
func (cm *ComponentManager) RemoveByType(t reflect.Type, e Entity) error {
	s, _, ok := cm.registry.Lookup(t)
	if !ok {
		return componentMissing(typeName(t))
	}
	if e.Index() >= s.Len() {
		return nil
	}
	var err error
	exclusive(s, func() { err = s.RemoveAt(e.Index()) })
	return err
}

// Mask returns key's signature bit.
func (cm *ComponentManager) Mask(key ComponentKey) (Signature, error) {
	return cm.MaskByType(key.Type())
}

func (cm *ComponentManager) MaskByType(t reflect.Type) (Signature, error) {
	_, mask, ok := cm.registry.Lookup(t)
	if !ok {
		return 0, componentMissing(typeName(t))
	}
	return mask, nil
}

// RemoveAll clears e from every pool.
func (cm *ComponentManager) RemoveAll(e Entity) { cm.registry.RemoveAll(e) }

// Has reports whether key's pool holds a value for e.
func (cm *ComponentManager) Has(key ComponentKey, e Entity) bool {
	s, _, ok := cm.registry.Lookup(key.Type())
	return ok && s.Has(e.Index())
}

// Signatures maps each registered type name to its bit.
func (cm *ComponentManager) Signatures() map[string]Signature {
	out := make(map[string]Signature, cm.registry.Len())
	cm.registry.Each(func(t reflect.Type, _ storage, mask Signature) {
		out[typeName(t)] = mask
	})
	return out
}

func (cm *ComponentManager) Len() int { return cm.registry.Len() }

// PoolOf returns the pool for T without taking a borrow.
func PoolOf[T any](cm *ComponentManager) (*Pool[T], error) {
	s, _, ok := cm.registry.Lookup(typeOf[T]())
	if !ok {
		return nil, componentMissing(typeName(typeOf[T]()))
	}
	return s.(*Pool[T]), nil
}

// Components returns a shared view over T's pool.
func Components[T any](cm *ComponentManager) (*Ref[T], error) {
	p, err := PoolOf[T](cm)
	if err != nil {
		return nil, err
	}
	return newRef(p), nil
}

// ComponentsMut returns the exclusive view over T's pool.
func ComponentsMut[T any](cm *ComponentManager) (*RefMut[T], error) {
	p, err := PoolOf[T](cm)
	if err != nil {
		return nil, err
	}
	return newRefMut(p), nil
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

func typeName(t reflect.Type) string { return t.String() }
