package component

import "time"

// Clock is a world resource advanced once per tick.
type Clock struct {
	Frame   uint64
	Elapsed time.Duration
	Delta   time.Duration
}
