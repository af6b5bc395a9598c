package component

import "time"

type Health struct {
	Current int `yaml:"current"`
	Max     int `yaml:"max"`
}

// Lifetime counts down each tick; the entity is removed when it runs out.
type Lifetime struct {
	Remaining time.Duration `yaml:"remaining"`
}

// Label names an entity for logs and scripts.
type Label struct {
	Name string `yaml:"name"`
}
