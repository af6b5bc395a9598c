package ecs

// Query is the read side of a World for the length of one pass. It hands out
// borrow-checked views and entity lists but never changes structure.
type Query struct {
	entities  *EntityManager
	resources *Resources
}

func newQuery(em *EntityManager, res *Resources) *Query {
	return &Query{entities: em, resources: res}
}

// Read returns a shared view over T's pool. It panics if T was never
// registered.
func Read[T any](q *Query) *Ref[T] {
	r, err := Components[T](q.entities.components)
	if err != nil {
		panic(err)
	}
	return r
}

// Write returns the exclusive view over T's pool. It panics if T was never
// registered or another view of the pool is outstanding.
func Write[T any](q *Query) *RefMut[T] {
	r, err := ComponentsMut[T](q.entities.components)
	if err != nil {
		panic(err)
	}
	return r
}

// ReadResource returns a shared view over the T resource.
func ReadResource[T any](q *Query) (*Res[T], bool) { return readResource[T](q.resources) }

// WriteResource returns the exclusive view over the T resource.
func WriteResource[T any](q *Query) (*ResMut[T], bool) { return writeResource[T](q.resources) }

func (q *Query) Has(e Entity, key ComponentKey) bool {
	ok, _ := q.entities.HasComponent(e, key)
	return ok
}

func (q *Query) Signature(e Entity) (Signature, error) { return q.entities.Signature(e) }

func (q *Query) IsLive(e Entity) bool { return q.entities.IsLive(e) }

func (q *Query) Entities() *EntityQuery {
	return &EntityQuery{em: q.entities}
}

// EntityQuery filters live entities by a required signature.
type EntityQuery struct {
	em       *EntityManager
	required Signature
}

// With adds the given component types to the required signature. It panics on
// a type that was never registered.
func (eq *EntityQuery) With(keys ...ComponentKey) *EntityQuery {
	for _, k := range keys {
		mask, err := eq.em.components.Mask(k)
		if err != nil {
			panic(err)
		}
		eq.required |= mask
	}
	return eq
}

func (eq *EntityQuery) Required() Signature { return eq.required }

// Get returns matching entities in ascending id order.
func (eq *EntityQuery) Get() []Entity {
	var out []Entity
	eq.em.Each(func(e Entity, sig Signature) {
		if sig.Contains(eq.required) {
			out = append(out, e)
		}
	})
	return out
}

// Each2 visits every entity holding both A and B with exclusive views over
// both pools. It iterates the smaller pool and probes the larger.
func Each2[A, B any](q *Query, fn func(Entity, *A, *B)) {
	ra := Write[A](q)
	defer ra.Release()
	rb := Write[B](q)
	defer rb.Release()
	if ra.Count() <= rb.Count() {
		ra.Each(func(e Entity, a *A) {
			if b, ok := rb.Get(e); ok {
				fn(e, a, b)
			}
		})
		return
	}
	rb.Each(func(e Entity, b *B) {
		if a, ok := ra.Get(e); ok {
			fn(e, a, b)
		}
	})
}
