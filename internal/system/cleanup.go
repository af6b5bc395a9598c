package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
)

// FlushSystem calls World.Update: pending entities join their systems,
// queued removals are destroyed and posted events are delivered.
// Register it at PhasePreUpdate, and again at PhaseCleanup to destroy
// entities removed during the tick before the next one starts.
type FlushSystem struct {
	world *ecs.World
	phase coresys.Phase
	log   *zap.Logger
}

func NewFlushSystem(world *ecs.World, phase coresys.Phase, log *zap.Logger) *FlushSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlushSystem{world: world, phase: phase, log: log}
}

func (s *FlushSystem) Phase() coresys.Phase { return s.phase }

func (s *FlushSystem) Update(_ time.Duration) {
	if err := s.world.Update(); err != nil {
		s.log.Warn("world update", zap.Stringer("phase", s.phase), zap.Error(err))
	}
}
