package system

import (
	"time"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
)

// ClockSystem advances the Clock resource at the start of every tick.
// Phase 0 (Input).
type ClockSystem struct {
	world *ecs.World
}

// NewClockSystem installs a zero Clock resource if none exists.
func NewClockSystem(world *ecs.World) *ClockSystem {
	q := world.Query()
	if r, ok := ecs.ReadResource[component.Clock](q); ok {
		r.Release()
	} else {
		ecs.AddResource(world, component.Clock{})
	}
	return &ClockSystem{world: world}
}

func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ClockSystem) Update(dt time.Duration) {
	clk, ok := ecs.WriteResource[component.Clock](s.world.Query())
	if !ok {
		return
	}
	defer clk.Release()
	c := clk.Get()
	c.Frame++
	c.Delta = dt
	c.Elapsed += dt
}
