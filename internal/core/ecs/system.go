package ecs

import "fmt"

// SystemAction is host logic run against the entities matching its
// components. It reads through q and requests changes through cmds.
type SystemAction interface {
	Components() []ComponentKey
	Run(q *Query, entities []Entity, cmds *CommandBuffer, events *Emitter)
}

// Named lets a SystemAction pick its registry name. Without it the name is
// the action's Go type.
type Named interface {
	SystemName() string
}

func systemName(a SystemAction) string {
	if n, ok := a.(Named); ok {
		return n.SystemName()
	}
	return fmt.Sprintf("%T", a)
}

func systemNameOf[T SystemAction]() string { return typeName(typeOf[T]()) }

// System is a registered SystemAction with its signature and the entities
// currently matching it.
type System struct {
	name      string
	signature Signature
	action    SystemAction
	entities  []Entity
	members   map[Entity]struct{}
}

func newSystem(name string, sig Signature, action SystemAction) *System {
	return &System{
		name:      name,
		signature: sig,
		action:    action,
		members:   make(map[Entity]struct{}),
	}
}

func (s *System) Name() string           { return s.name }
func (s *System) Signature() Signature   { return s.signature }
func (s *System) Action() SystemAction   { return s.action }
func (s *System) Len() int               { return len(s.entities) }
func (s *System) Contains(e Entity) bool { _, ok := s.members[e]; return ok }

// Entities returns a copy of the tracked entities in the order they joined.
func (s *System) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	return out
}

func (s *System) matches(sig Signature) bool { return sig.Contains(s.signature) }

func (s *System) add(e Entity) bool {
	if s.Contains(e) {
		return false
	}
	s.members[e] = struct{}{}
	s.entities = append(s.entities, e)
	return true
}

func (s *System) remove(e Entity) bool {
	if !s.Contains(e) {
		return false
	}
	delete(s.members, e)
	for i, x := range s.entities {
		if x == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
	return true
}
