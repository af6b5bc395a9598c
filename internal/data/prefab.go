package data

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

type prefabEntry struct {
	Name       string    `yaml:"name"`
	Components yaml.Node `yaml:"components"` // mapping of component name -> fields
}

type prefabFile struct {
	Prefabs []prefabEntry `yaml:"prefabs"`
}

// Prefab is a named component set that can be spawned repeatedly.
type Prefab struct {
	Name       string
	components []ecs.Component
}

// Components returns the prefab's components in file order.
func (p *Prefab) Components() []ecs.Component {
	out := make([]ecs.Component, len(p.components))
	copy(out, p.components)
	return out
}

// PrefabTable holds all prefabs indexed by name.
type PrefabTable struct {
	prefabs map[string]*Prefab
	order   []string
}

// LoadPrefabs loads prefab templates from a YAML file.
func LoadPrefabs(path string, cat *Catalog) (*PrefabTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prefabs: %w", err)
	}
	return ParsePrefabs(raw, cat)
}

// ParsePrefabs decodes prefab YAML. Every bad component in the document is
// reported, not just the first.
func ParsePrefabs(raw []byte, cat *Catalog) (*PrefabTable, error) {
	var f prefabFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prefabs: %w", err)
	}
	t := &PrefabTable{prefabs: make(map[string]*Prefab, len(f.Prefabs))}
	var errs error
	for i := range f.Prefabs {
		entry := &f.Prefabs[i]
		if entry.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("prefab #%d: missing name", i))
			continue
		}
		if _, dup := t.prefabs[entry.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("prefab %s: defined twice", entry.Name))
			continue
		}
		p, err := buildPrefab(entry, cat)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		t.prefabs[p.Name] = p
		t.order = append(t.order, p.Name)
	}
	if errs != nil {
		return nil, fmt.Errorf("parse prefabs: %w", errs)
	}
	return t, nil
}

func buildPrefab(entry *prefabEntry, cat *Catalog) (*Prefab, error) {
	p := &Prefab{Name: entry.Name}
	node := &entry.Components
	if node.Kind == 0 {
		return p, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("prefab %s: components must be a mapping (line %d)", entry.Name, node.Line)
	}
	var errs error
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]
		if value.Tag == "!!null" {
			value = nil
		}
		c, err := cat.Decode(name, value)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("prefab %s: %w", entry.Name, err))
			continue
		}
		p.components = append(p.components, c)
	}
	if errs != nil {
		return nil, errs
	}
	return p, nil
}

// Get returns the prefab with the given name, or nil if none.
func (t *PrefabTable) Get(name string) *Prefab {
	return t.prefabs[name]
}

// Count returns the number of prefabs loaded.
func (t *PrefabTable) Count() int {
	return len(t.prefabs)
}

// Names returns prefab names in file order.
func (t *PrefabTable) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Spawn creates an entity from the named prefab directly in w.
func (t *PrefabTable) Spawn(w *ecs.World, name string) (ecs.Entity, error) {
	p := t.prefabs[name]
	if p == nil {
		return 0, fmt.Errorf("unknown prefab %q", name)
	}
	return w.Spawn(p.components...)
}

// Queue requests an entity from the named prefab through cmds, for use
// inside a system or event handler.
func (t *PrefabTable) Queue(cmds *ecs.CommandBuffer, name string) error {
	p := t.prefabs[name]
	if p == nil {
		return fmt.Errorf("unknown prefab %q", name)
	}
	cmds.CreateEntity(p.Components()...)
	return nil
}
