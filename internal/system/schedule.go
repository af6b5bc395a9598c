package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
)

// Scheduled runs one registered ECS system per tick in a fixed phase.
type Scheduled struct {
	world *ecs.World
	name  string
	phase coresys.Phase
	log   *zap.Logger
}

// Schedule adds action to world and returns the runner entry that updates it.
func Schedule(world *ecs.World, action ecs.SystemAction, phase coresys.Phase, backfill bool, log *zap.Logger) *Scheduled {
	if log == nil {
		log = zap.NewNop()
	}
	s := world.AddSystem(action, backfill)
	return &Scheduled{world: world, name: s.Name(), phase: phase, log: log}
}

func (s *Scheduled) Name() string { return s.name }

func (s *Scheduled) Phase() coresys.Phase { return s.phase }

func (s *Scheduled) Update(_ time.Duration) {
	if err := s.world.UpdateSystemNamed(s.name); err != nil {
		s.log.Warn("system update", zap.String("system", s.name), zap.Error(err))
	}
}
