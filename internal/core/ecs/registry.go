package ecs

import "reflect"

// MaxComponentTypes is the width of a Signature.
const MaxComponentTypes = 32

// Signature has bit k set when the component type owning bit k is present.
type Signature uint32

func (s Signature) Contains(required Signature) bool { return s&required == required }

// Registry maps component types to their storage and signature bit, in
// registration order.
type Registry struct {
	stores map[reflect.Type]storage
	masks  map[reflect.Type]Signature
	order  []reflect.Type
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make(map[reflect.Type]storage, MaxComponentTypes),
		masks:  make(map[reflect.Type]Signature, MaxComponentTypes),
		order:  make([]reflect.Type, 0, MaxComponentTypes),
	}
}

// Register adds a store under t and assigns it the next free bit. It panics
// once all bits are taken.
func (r *Registry) Register(t reflect.Type, s storage) Signature {
	if len(r.order) >= MaxComponentTypes {
		panic("ecs: too many component types (max 32)")
	}
	mask := Signature(1) << len(r.order)
	r.stores[t] = s
	r.masks[t] = mask
	r.order = append(r.order, t)
	return mask
}

func (r *Registry) Lookup(t reflect.Type) (storage, Signature, bool) {
	s, ok := r.stores[t]
	if !ok {
		return nil, 0, false
	}
	return s, r.masks[t], true
}

func (r *Registry) Len() int { return len(r.order) }

// RemoveAll clears the given entity from every registered store.
func (r *Registry) RemoveAll(e Entity) {
	for _, t := range r.order {
		s := r.stores[t]
		if s.Has(e.Index()) {
			exclusive(s, func() { _ = s.RemoveAt(e.Index()) })
		}
	}
}

// Each visits stores in registration order.
func (r *Registry) Each(fn func(t reflect.Type, s storage, mask Signature)) {
	for _, t := range r.order {
		fn(t, r.stores[t], r.masks[t])
	}
}
