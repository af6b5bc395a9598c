package system

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

// LeftBounds is emitted when movement carries an entity outside the Bounds
// resource.
type LeftBounds struct {
	Entity   ecs.Entity
	Position mgl64.Vec2
}

// MovementSystem integrates Velocity into Position using the Clock delta.
type MovementSystem struct{}

func (MovementSystem) Components() []ecs.ComponentKey {
	return []ecs.ComponentKey{ecs.Key[component.Position](), ecs.Key[component.Velocity]()}
}

func (MovementSystem) Run(q *ecs.Query, entities []ecs.Entity, _ *ecs.CommandBuffer, events *ecs.Emitter) {
	clk, ok := ecs.ReadResource[component.Clock](q)
	if !ok {
		return
	}
	dt := clk.Get().Delta.Seconds()
	clk.Release()

	var bounds *component.Bounds
	if b, ok := ecs.ReadResource[component.Bounds](q); ok {
		v := b.Get()
		bounds = &v
		b.Release()
	}

	pos := ecs.Write[component.Position](q)
	vel := ecs.Read[component.Velocity](q)
	var left []LeftBounds
	for _, e := range entities {
		p, ok := pos.Get(e)
		if !ok {
			continue
		}
		v, _ := vel.Get(e)
		p.Vec = p.Vec.Add(v.Vec.Mul(dt))
		if bounds != nil && !inside(*bounds, p.Vec) {
			left = append(left, LeftBounds{Entity: e, Position: p.Vec})
		}
	}
	vel.Release()
	pos.Release()

	// Handlers may read the pools, so emit only after the views are released.
	for _, ev := range left {
		ecs.Emit(events, ev)
	}
}

func inside(b component.Bounds, p mgl64.Vec2) bool {
	return p.X() >= b.Min.X() && p.X() <= b.Max.X() &&
		p.Y() >= b.Min.Y() && p.Y() <= b.Max.Y()
}

// DespawnOutOfBounds removes entities that left the Bounds area.
func DespawnOutOfBounds(ev LeftBounds, _ *ecs.Query, cmds *ecs.CommandBuffer) {
	cmds.RemoveEntity(ev.Entity)
}
