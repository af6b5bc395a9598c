package ecs

import "reflect"

// DefaultPoolCapacity is the number of slots a pool starts with.
const DefaultPoolCapacity = 30

// storage is the type-erased face of a Pool, used wherever the concrete
// component type is only known as a ComponentKey.
type storage interface {
	Len() int
	Resize(n int)
	Clear()
	RemoveAt(index int) error
	Has(index int) bool
	IsEmpty() bool
	TypeName() string
	guard() *borrowGuard
}

type slot[T any] struct {
	value T
	ok    bool
}

// Pool holds the values of one component type, indexed by entity.
type Pool[T any] struct {
	slots  []slot[T]
	filled int
	g      borrowGuard
}

func NewPool[T any](capacity int) *Pool[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool[T]{
		slots: make([]slot[T], capacity),
		g:     borrowGuard{target: typeName(reflect.TypeOf((*T)(nil)).Elem())},
	}
}

func (p *Pool[T]) Len() int { return len(p.slots) }

// Get returns nil for an empty slot.
func (p *Pool[T]) Get(index int) (*T, error) {
	if index < 0 || index >= len(p.slots) {
		return nil, entityMissing(uint32(index))
	}
	s := &p.slots[index]
	if !s.ok {
		return nil, nil
	}
	return &s.value, nil
}

// Set stores v at index. The pool must already cover index.
func (p *Pool[T]) Set(index int, v T) error {
	if index < 0 || index >= len(p.slots) {
		return entityMissing(uint32(index))
	}
	s := &p.slots[index]
	if !s.ok {
		p.filled++
	}
	s.value, s.ok = v, true
	return nil
}

// Remove clears the slot at index. Clearing an empty slot is not an error.
func (p *Pool[T]) Remove(index int) error {
	if index < 0 || index >= len(p.slots) {
		return entityMissing(uint32(index))
	}
	s := &p.slots[index]
	if s.ok {
		var zero T
		s.value, s.ok = zero, false
		p.filled--
	}
	return nil
}

func (p *Pool[T]) RemoveAt(index int) error { return p.Remove(index) }

func (p *Pool[T]) Has(index int) bool {
	return index >= 0 && index < len(p.slots) && p.slots[index].ok
}

// Resize grows the pool to n slots. It never shrinks.
func (p *Pool[T]) Resize(n int) {
	if n <= len(p.slots) {
		return
	}
	if n <= cap(p.slots) {
		p.slots = p.slots[:n]
		return
	}
	grown := make([]slot[T], n, n+n/2)
	copy(grown, p.slots)
	p.slots = grown
}

func (p *Pool[T]) Clear() {
	clear(p.slots)
	p.filled = 0
}

func (p *Pool[T]) IsEmpty() bool { return p.filled == 0 }

// Count returns the number of occupied slots.
func (p *Pool[T]) Count() int { return p.filled }

func (p *Pool[T]) TypeName() string { return p.g.target }

func (p *Pool[T]) guard() *borrowGuard { return &p.g }

// Each visits occupied slots in ascending entity order.
func (p *Pool[T]) Each(fn func(Entity, *T)) {
	for i := range p.slots {
		if p.slots[i].ok {
			fn(Entity(i), &p.slots[i].value)
		}
	}
}

// Ref is a shared view over a pool. Any number may be held at once, but not
// alongside a RefMut of the same pool.
type Ref[T any] struct {
	pool     *Pool[T]
	released bool
}

func newRef[T any](p *Pool[T]) *Ref[T] {
	p.g.acquireRead()
	return &Ref[T]{pool: p}
}

func (r *Ref[T]) Get(e Entity) (T, bool) {
	r.mustBeHeld()
	if r.pool.Has(e.Index()) {
		return r.pool.slots[e].value, true
	}
	var zero T
	return zero, false
}

func (r *Ref[T]) Has(e Entity) bool {
	r.mustBeHeld()
	return r.pool.Has(e.Index())
}

func (r *Ref[T]) Count() int {
	r.mustBeHeld()
	return r.pool.Count()
}

func (r *Ref[T]) Each(fn func(Entity, T)) {
	r.mustBeHeld()
	r.pool.Each(func(e Entity, v *T) { fn(e, *v) })
}

func (r *Ref[T]) mustBeHeld() {
	if r.released {
		panic(&BorrowError{Target: r.pool.g.target, Op: "use after release"})
	}
}

func (r *Ref[T]) Release() {
	if r.released {
		panic(&BorrowError{Target: r.pool.g.target, Op: "view released twice"})
	}
	r.released = true
	r.pool.g.releaseRead()
}

// RefMut is the exclusive view over a pool. Values may be changed in place;
// occupancy may not.
type RefMut[T any] struct {
	pool     *Pool[T]
	released bool
}

func newRefMut[T any](p *Pool[T]) *RefMut[T] {
	p.g.acquireWrite()
	return &RefMut[T]{pool: p}
}

func (r *RefMut[T]) Get(e Entity) (*T, bool) {
	r.mustBeHeld()
	if r.pool.Has(e.Index()) {
		return &r.pool.slots[e].value, true
	}
	return nil, false
}

func (r *RefMut[T]) Has(e Entity) bool {
	r.mustBeHeld()
	return r.pool.Has(e.Index())
}

func (r *RefMut[T]) Count() int {
	r.mustBeHeld()
	return r.pool.Count()
}

func (r *RefMut[T]) Each(fn func(Entity, *T)) {
	r.mustBeHeld()
	r.pool.Each(fn)
}

func (r *RefMut[T]) mustBeHeld() {
	if r.released {
		panic(&BorrowError{Target: r.pool.g.target, Op: "use after release"})
	}
}

func (r *RefMut[T]) Release() {
	if r.released {
		panic(&BorrowError{Target: r.pool.g.target, Op: "view released twice"})
	}
	r.released = true
	r.pool.g.releaseWrite()
}
