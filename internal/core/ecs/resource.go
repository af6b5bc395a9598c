package ecs

import "reflect"

type resourceCell struct {
	value any // *T
	g     borrowGuard
}

// Resources holds at most one value per type.
type Resources struct {
	cells map[reflect.Type]*resourceCell
}

func NewResources() *Resources {
	return &Resources{cells: make(map[reflect.Type]*resourceCell)}
}

func (r *Resources) Len() int { return len(r.cells) }

func addResource[T any](r *Resources, v T) {
	t := typeOf[T]()
	if old, ok := r.cells[t]; ok && old.g.busy() {
		panic(&BorrowError{Target: typeName(t), Op: "replaced while borrowed"})
	}
	p := new(T)
	*p = v
	r.cells[t] = &resourceCell{value: p, g: borrowGuard{target: typeName(t)}}
}

func deleteResource[T any](r *Resources) bool {
	t := typeOf[T]()
	c, ok := r.cells[t]
	if !ok {
		return false
	}
	if c.g.busy() {
		panic(&BorrowError{Target: typeName(t), Op: "deleted while borrowed"})
	}
	delete(r.cells, t)
	return true
}

// Res is a shared view over a resource.
type Res[T any] struct {
	cell     *resourceCell
	released bool
}

func (r *Res[T]) Get() T {
	if r.released {
		panic(&BorrowError{Target: r.cell.g.target, Op: "use after release"})
	}
	return *r.cell.value.(*T)
}

func (r *Res[T]) Release() {
	if r.released {
		panic(&BorrowError{Target: r.cell.g.target, Op: "view released twice"})
	}
	r.released = true
	r.cell.g.releaseRead()
}

// ResMut is the exclusive view over a resource.
type ResMut[T any] struct {
	cell     *resourceCell
	released bool
}

func (r *ResMut[T]) Get() *T {
	if r.released {
		panic(&BorrowError{Target: r.cell.g.target, Op: "use after release"})
	}
	return r.cell.value.(*T)
}

func (r *ResMut[T]) Release() {
	if r.released {
		panic(&BorrowError{Target: r.cell.g.target, Op: "view released twice"})
	}
	r.released = true
	r.cell.g.releaseWrite()
}

func readResource[T any](r *Resources) (*Res[T], bool) {
	c, ok := r.cells[typeOf[T]()]
	if !ok {
		return nil, false
	}
	c.g.acquireRead()
	return &Res[T]{cell: c}, true
}

func writeResource[T any](r *Resources) (*ResMut[T], bool) {
	c, ok := r.cells[typeOf[T]()]
	if !ok {
		return nil, false
	}
	c.g.acquireWrite()
	return &ResMut[T]{cell: c}, true
}
