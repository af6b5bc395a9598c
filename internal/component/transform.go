package component

import "github.com/go-gl/mathgl/mgl64"

// Position is an entity's location in world units.
// Pure data, zero methods; all mutations happen in systems.
type Position struct {
	Vec mgl64.Vec2 `yaml:"vec"`
}

// Velocity is applied to Position once per second of simulated time.
type Velocity struct {
	Vec mgl64.Vec2 `yaml:"vec"`
}

// Bounds is the axis-aligned area entities are kept inside.
type Bounds struct {
	Min mgl64.Vec2 `yaml:"min"`
	Max mgl64.Vec2 `yaml:"max"`
}
