package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: feed external input into the world
	PhasePreUpdate               // 1: flush pending entities, deliver posted events
	PhaseUpdate                  // 2: ECS systems
	PhasePostUpdate              // 3: follow-up systems reading this tick's results
	PhaseCleanup                 // 4: flush removals queued during the tick
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre_update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post_update"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is anything the Runner drives once per tick.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
