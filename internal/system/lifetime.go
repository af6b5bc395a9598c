package system

import (
	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

// Expired is emitted for every entity whose Lifetime ran out this tick.
type Expired struct {
	Entity ecs.Entity
}

// LifetimeSystem counts Lifetime down by the Clock delta and removes
// entities that reach zero.
type LifetimeSystem struct{}

func (LifetimeSystem) Components() []ecs.ComponentKey {
	return []ecs.ComponentKey{ecs.Key[component.Lifetime]()}
}

func (LifetimeSystem) Run(q *ecs.Query, entities []ecs.Entity, cmds *ecs.CommandBuffer, events *ecs.Emitter) {
	clk, ok := ecs.ReadResource[component.Clock](q)
	if !ok {
		return
	}
	dt := clk.Get().Delta
	clk.Release()

	life := ecs.Write[component.Lifetime](q)
	var expired []ecs.Entity
	for _, e := range entities {
		l, ok := life.Get(e)
		if !ok {
			continue
		}
		l.Remaining -= dt
		if l.Remaining <= 0 {
			expired = append(expired, e)
		}
	}
	life.Release()

	for _, e := range expired {
		cmds.RemoveEntity(e)
		ecs.Emit(events, Expired{Entity: e})
	}
}
