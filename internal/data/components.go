package data

import "github.com/l1jgo/ecsrt/internal/component"

// StandardCatalog registers the built-in components under the names data
// files and scripts use.
func StandardCatalog() *Catalog {
	c := NewCatalog()
	Register[component.Position](c, "position")
	Register[component.Velocity](c, "velocity")
	Register[component.Health](c, "health")
	Register[component.Lifetime](c, "lifetime")
	Register[component.Label](c, "label")
	return c
}
