package data

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

// Decoder turns a YAML node into a boxed component.
type Decoder func(node *yaml.Node) (ecs.Component, error)

type catalogEntry struct {
	key    ecs.ComponentKey
	decode Decoder
	read   func(q *ecs.Query, e ecs.Entity) any
}

// Catalog maps the component names used in data files and scripts to
// component types.
type Catalog struct {
	entries map[string]catalogEntry
}

func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]catalogEntry)}
}

// Register makes T available under name. The YAML node is decoded straight
// into a T, so T's yaml tags apply.
func Register[T any](c *Catalog, name string) {
	c.entries[name] = catalogEntry{
		key: ecs.Key[T](),
		decode: func(node *yaml.Node) (ecs.Component, error) {
			var v T
			if node != nil {
				if err := node.Decode(&v); err != nil {
					return nil, err
				}
			}
			return ecs.C(v), nil
		},
		read: func(q *ecs.Query, e ecs.Entity) any {
			r := ecs.Read[T](q)
			defer r.Release()
			v, _ := r.Get(e)
			return v
		},
	}
}

// Key returns the component type registered under name.
func (c *Catalog) Key(name string) (ecs.ComponentKey, bool) {
	e, ok := c.entries[name]
	return e.key, ok
}

// Decode builds a component of the type registered under name from node. A
// nil node yields the zero value.
func (c *Catalog) Decode(name string, node *yaml.Node) (ecs.Component, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("unknown component %q", name)
	}
	comp, err := e.decode(node)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return comp, nil
}

// Read returns e's component registered under name as plain YAML data
// (maps, slices and scalars). ok is false when e lacks the component.
func (c *Catalog) Read(name string, q *ecs.Query, e ecs.Entity) (v any, ok bool, err error) {
	entry, found := c.entries[name]
	if !found {
		return nil, false, fmt.Errorf("unknown component %q", name)
	}
	if !q.Has(e, entry.key) {
		return nil, false, nil
	}
	var node yaml.Node
	if err := node.Encode(entry.read(q, e)); err != nil {
		return nil, false, fmt.Errorf("encode %s: %w", name, err)
	}
	if err := node.Decode(&v); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", name, err)
	}
	return v, true, nil
}

// DecodeValue is Decode for plain Go data such as a converted script table.
func (c *Catalog) DecodeValue(name string, v any) (ecs.Component, error) {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return c.Decode(name, &node)
}

// Names returns the registered names in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.entries))
	for n := range c.entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Count() int {
	return len(c.entries)
}
