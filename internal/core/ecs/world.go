package ecs

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/core/event"
)

// Options sizes the storage of a World. Zero fields take the defaults.
type Options struct {
	InitialPoolCapacity int
	SignatureHeadroom   int
}

func (o Options) withDefaults() Options {
	if o.InitialPoolCapacity <= 0 {
		o.InitialPoolCapacity = DefaultPoolCapacity
	}
	if o.SignatureHeadroom <= 0 {
		o.SignatureHeadroom = DefaultSignatureHeadroom
	}
	return o
}

// World is the top-level ECS container. Entity creation and destruction are
// deferred: new entities join systems and removed entities are destroyed on
// the next Update. Component changes on tracked entities re-sync system
// membership immediately.
type World struct {
	id        uuid.UUID
	entities  *EntityManager
	resources *Resources
	bus       *event.Bus[pass]

	systems map[string]*System
	order   []string

	toAdd    []Entity
	adding   map[Entity]struct{}
	toRemove []Entity
	removing map[Entity]struct{}
	inPass   bool

	log *zap.Logger
}

// NewWorld creates an empty world. A nil logger discards output.
func NewWorld(opts Options, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.New()
	log = log.With(zap.Stringer("world", id))
	return &World{
		id:        id,
		entities:  NewEntityManager(opts, log),
		resources: NewResources(),
		bus:       event.NewBus[pass](),
		systems:   make(map[string]*System),
		order:     make([]string, 0, 16),
		toAdd:     make([]Entity, 0, 64),
		adding:    make(map[Entity]struct{}),
		toRemove:  make([]Entity, 0, 64),
		removing:  make(map[Entity]struct{}),
		log:       log,
	}
}

func (w *World) ID() uuid.UUID { return w.id }

// Len returns the number of live entities, including ones not yet flushed.
func (w *World) Len() int { return w.entities.Len() }

func (w *World) IsLive(e Entity) bool { return w.entities.IsLive(e) }

func (w *World) Query() *Query { return newQuery(w.entities, w.resources) }

func (w *World) ComponentSignatures() map[string]Signature {
	return w.entities.components.Signatures()
}

func (w *World) mustNotBeInPass(op string) {
	if w.inPass {
		panic(fmt.Sprintf("ecs: %s called during a system or event pass; use the command buffer", op))
	}
}

// EntityBuilder attaches components to a freshly created entity.
type EntityBuilder struct {
	w   *World
	e   Entity
	err error
}

// CreateEntity allocates an entity. It becomes visible to systems on the
// next Update.
func (w *World) CreateEntity() *EntityBuilder {
	w.mustNotBeInPass("CreateEntity")
	e := w.entities.CreateEntity()
	w.adding[e] = struct{}{}
	w.toAdd = append(w.toAdd, e)
	w.log.Debug("entity created", zap.Uint32("entity", uint32(e)))
	return &EntityBuilder{w: w, e: e}
}

func (b *EntityBuilder) With(c Component) *EntityBuilder {
	if err := b.w.AddComponent(b.e, c); err != nil {
		b.err = multierr.Append(b.err, err)
	}
	return b
}

func (b *EntityBuilder) Build() Entity { return b.e }

func (b *EntityBuilder) Err() error { return b.err }

// Spawn creates an entity carrying components.
func (w *World) Spawn(components ...Component) (Entity, error) {
	b := w.CreateEntity()
	for _, c := range components {
		b.With(c)
	}
	return b.Build(), b.Err()
}

// RemoveEntity queues e for destruction on the next Update.
func (w *World) RemoveEntity(e Entity) error {
	w.mustNotBeInPass("RemoveEntity")
	if !w.entities.IsLive(e) {
		return entityMissing(uint32(e))
	}
	if _, ok := w.removing[e]; ok {
		return nil
	}
	w.removing[e] = struct{}{}
	w.toRemove = append(w.toRemove, e)
	w.log.Debug("entity queued for removal", zap.Uint32("entity", uint32(e)))
	return nil
}

func (w *World) AddComponent(e Entity, c Component) error {
	w.mustNotBeInPass("AddComponent")
	if err := w.entities.AddComponent(e, c); err != nil {
		return fmt.Errorf("add %s: %w", c.Key(), err)
	}
	w.log.Debug("component added",
		zap.Uint32("entity", uint32(e)),
		zap.Stringer("component", c.Key()))
	w.resync(e, c.Key())
	return nil
}

// RemoveComponent detaches key from e. Removing a component e does not have
// is a no-op.
func (w *World) RemoveComponent(e Entity, key ComponentKey) error {
	w.mustNotBeInPass("RemoveComponent")
	if err := w.entities.RemoveComponent(e, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	w.log.Debug("component removed",
		zap.Uint32("entity", uint32(e)),
		zap.Stringer("component", key))
	w.resync(e, key)
	return nil
}

func (w *World) HasComponent(e Entity, key ComponentKey) bool {
	ok, _ := w.entities.HasComponent(e, key)
	return ok
}

// Get returns a copy of e's T component.
func Get[T any](w *World, e Entity) (T, bool) {
	var zero T
	if !w.entities.IsLive(e) {
		return zero, false
	}
	r, err := Components[T](w.entities.components)
	if err != nil {
		return zero, false
	}
	defer r.Release()
	return r.Get(e)
}

// resync brings e's membership in line with its signature after key changed.
// Only systems that track key are touched. Entities waiting for their first
// Update are left alone.
func (w *World) resync(e Entity, key ComponentKey) {
	if _, pending := w.adding[e]; pending {
		return
	}
	changed, err := w.entities.components.Mask(key)
	if err != nil {
		return
	}
	sig, err := w.entities.Signature(e)
	if err != nil {
		return
	}
	for _, name := range w.order {
		s := w.systems[name]
		if s.signature&changed == 0 {
			continue
		}
		if s.matches(sig) {
			if s.add(e) {
				w.log.Debug("entity joined system",
					zap.Uint32("entity", uint32(e)), zap.String("system", s.name))
			}
		} else if s.remove(e) {
			w.log.Debug("entity left system",
				zap.Uint32("entity", uint32(e)), zap.String("system", s.name))
		}
	}
}

// Update applies pending entity creations and removals, then delivers events
// posted since the last Update and applies the commands their handlers
// queued.
func (w *World) Update() error {
	w.mustNotBeInPass("Update")

	toAdd := w.toAdd
	w.toAdd = make([]Entity, 0, cap(toAdd))
	clear(w.adding)
	for _, e := range toAdd {
		w.addToSystems(e)
	}

	toRemove := w.toRemove
	w.toRemove = make([]Entity, 0, cap(toRemove))
	clear(w.removing)
	var errs error
	for _, e := range toRemove {
		errs = multierr.Append(errs, w.kill(e))
	}

	if w.bus.Pending() > 0 {
		w.bus.SwapBuffers()
		p := pass{query: w.Query(), cmds: NewCommandBuffer()}
		w.within(func() { w.bus.DispatchAll(p) })
		errs = multierr.Append(errs, w.apply(p.cmds))
	}
	return errs
}

func (w *World) addToSystems(e Entity) {
	sig, err := w.entities.Signature(e)
	if err != nil {
		return
	}
	for _, name := range w.order {
		s := w.systems[name]
		if s.matches(sig) && s.add(e) {
			w.log.Debug("entity added to system",
				zap.Uint32("entity", uint32(e)), zap.String("system", s.name))
		}
	}
}

func (w *World) kill(e Entity) error {
	for _, name := range w.order {
		s := w.systems[name]
		if s.remove(e) {
			w.log.Debug("entity removed from system",
				zap.Uint32("entity", uint32(e)), zap.String("system", s.name))
		}
	}
	if err := w.entities.RemoveEntity(e); err != nil {
		return fmt.Errorf("destroy: %w", err)
	}
	w.log.Debug("entity destroyed", zap.Uint32("entity", uint32(e)))
	return nil
}

// AddSystem registers action under its name, replacing any system already
// registered there. With backfill, every entity already flushed into the
// world whose signature matches joins the system at once.
func (w *World) AddSystem(action SystemAction, backfill bool) *System {
	w.mustNotBeInPass("AddSystem")
	var sig Signature
	for _, k := range action.Components() {
		sig |= w.entities.components.Register(k)
	}
	s := newSystem(systemName(action), sig, action)
	if backfill {
		w.entities.Each(func(e Entity, es Signature) {
			if _, pending := w.adding[e]; !pending && s.matches(es) {
				s.add(e)
			}
		})
	}
	if _, ok := w.systems[s.name]; !ok {
		w.order = append(w.order, s.name)
	}
	w.systems[s.name] = s
	w.log.Info("system added",
		zap.String("system", s.name),
		zap.Uint32("signature", uint32(sig)),
		zap.Int("entities", s.Len()))
	return s
}

func (w *World) RemoveSystemNamed(name string) bool {
	w.mustNotBeInPass("RemoveSystem")
	if _, ok := w.systems[name]; !ok {
		return false
	}
	delete(w.systems, name)
	for i, n := range w.order {
		if n == name {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	w.log.Info("system removed", zap.String("system", name))
	return true
}

func RemoveSystem[T SystemAction](w *World) bool { return w.RemoveSystemNamed(systemNameOf[T]()) }

func HasSystem[T SystemAction](w *World) bool {
	_, ok := w.systems[systemNameOf[T]()]
	return ok
}

func GetSystem[T SystemAction](w *World) (*System, bool) { return w.SystemNamed(systemNameOf[T]()) }

func (w *World) SystemNamed(name string) (*System, bool) {
	s, ok := w.systems[name]
	return s, ok
}

// SystemNames lists registered systems in registration order.
func (w *World) SystemNames() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// UpdateSystem runs the system registered for T.
func UpdateSystem[T SystemAction](w *World) error { return w.UpdateSystemNamed(systemNameOf[T]()) }

// UpdateSystemNamed runs one system with a fresh Query and command buffer,
// then applies the buffer. An unknown name is skipped.
func (w *World) UpdateSystemNamed(name string) error {
	s, ok := w.systems[name]
	if !ok {
		w.log.Debug("skipping unknown system", zap.String("system", name))
		return nil
	}
	return w.run(s)
}

// UpdateSystems runs every system once in registration order.
func (w *World) UpdateSystems() error {
	var errs error
	for _, name := range w.SystemNames() {
		if s, ok := w.systems[name]; ok {
			errs = multierr.Append(errs, w.run(s))
		}
	}
	return errs
}

func (w *World) run(s *System) error {
	w.mustNotBeInPass("UpdateSystem")
	q := w.Query()
	cmds := NewCommandBuffer()
	em := &Emitter{bus: w.bus, p: pass{query: q, cmds: cmds}}
	w.within(func() { s.action.Run(q, s.entities, cmds, em) })
	if err := w.apply(cmds); err != nil {
		return fmt.Errorf("system %s: %w", s.name, err)
	}
	return nil
}

// within runs fn with direct structural changes forbidden.
func (w *World) within(fn func()) {
	w.inPass = true
	defer func() { w.inPass = false }()
	fn()
}

// apply drains cmds oldest first. A failing command does not stop the rest;
// all failures are returned together.
func (w *World) apply(cmds *CommandBuffer) error {
	var errs error
	for _, c := range cmds.drain() {
		if err := w.applyCommand(c); err != nil {
			w.log.Warn("command failed", zap.Stringer("command", c), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", c, err))
		}
	}
	return errs
}

func (w *World) applyCommand(c Command) error {
	switch c.Kind {
	case CmdRemoveEntity:
		return w.RemoveEntity(c.Entity)
	case CmdRemoveComponent:
		return w.RemoveComponent(c.Entity, c.Key)
	case CmdAddComponent:
		return w.AddComponent(c.Entity, c.Components[0])
	case CmdCreateEntity:
		_, err := w.Spawn(c.Components...)
		return err
	}
	return fmt.Errorf("unknown command kind %d", c.Kind)
}

// AddResource stores v as the T resource, replacing any previous one.
func AddResource[T any](w *World, v T) {
	addResource(w.resources, v)
	w.log.Debug("resource added", zap.String("resource", typeName(typeOf[T]())))
}

// DeleteResource drops the T resource and reports whether there was one.
func DeleteResource[T any](w *World) bool {
	ok := deleteResource[T](w.resources)
	if ok {
		w.log.Debug("resource deleted", zap.String("resource", typeName(typeOf[T]())))
	}
	return ok
}
