package ecs

import "github.com/l1jgo/ecsrt/internal/core/event"

// pass is the context every event handler runs with.
type pass struct {
	query *Query
	cmds  *CommandBuffer
}

// Subscribe registers handler for events of type T. Handlers may read
// through q and must request changes through cmds.
func Subscribe[T any](w *World, handler func(ev T, q *Query, cmds *CommandBuffer)) {
	event.Subscribe(w.bus, func(ev T, p pass) { handler(ev, p.query, p.cmds) })
}

// EmitEvent delivers ev to every T handler, then applies the commands they
// queued. No subscribers is not an error.
func EmitEvent[T any](w *World, ev T) error {
	w.mustNotBeInPass("EmitEvent")
	p := pass{query: w.Query(), cmds: NewCommandBuffer()}
	w.within(func() { event.Emit(w.bus, ev, p) })
	return w.apply(p.cmds)
}

// PostEvent queues ev for delivery during the next Update.
func PostEvent[T any](w *World, ev T) {
	event.Post[T, pass](w.bus, ev)
}

// Emitter lets a running system raise events. Handlers run immediately and
// their commands join the system's own buffer.
type Emitter struct {
	bus *event.Bus[pass]
	p   pass
}

// Emit delivers ev through em and returns how many handlers ran.
func Emit[T any](em *Emitter, ev T) int {
	return event.Emit(em.bus, ev, em.p)
}
