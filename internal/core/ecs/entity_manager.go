package ecs

import "go.uber.org/zap"

// DefaultSignatureHeadroom is how far past a new id the signature array grows.
const DefaultSignatureHeadroom = 10

// EntityManager keeps entity signatures and component pools in step. Every
// method that touches a pool updates the matching signature bit before it
// returns.
type EntityManager struct {
	ids        *IDAllocator
	components *ComponentManager
	signatures []Signature
	headroom   int
	log        *zap.Logger
}

func NewEntityManager(opts Options, log *zap.Logger) *EntityManager {
	opts = opts.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityManager{
		ids:        NewIDAllocator(),
		components: NewComponentManager(opts.InitialPoolCapacity),
		signatures: make([]Signature, 0, opts.InitialPoolCapacity),
		headroom:   opts.SignatureHeadroom,
		log:        log,
	}
}

func (m *EntityManager) Components() *ComponentManager { return m.components }

func (m *EntityManager) CreateEntity() Entity {
	e := m.ids.Allocate()
	if e.Index() >= len(m.signatures) {
		grown := make([]Signature, e.Index()+m.headroom)
		copy(grown, m.signatures)
		m.signatures = grown
		m.log.Debug("signature array grown", zap.Int("len", len(grown)))
	} else {
		m.signatures[e] = 0
	}
	return e
}

// RemoveEntity clears e from every pool and returns its id to the allocator.
func (m *EntityManager) RemoveEntity(e Entity) error {
	if !m.ids.IsLive(e) {
		return entityMissing(uint32(e))
	}
	m.signatures[e] = 0
	m.components.RemoveAll(e)
	m.ids.Free(e)
	return nil
}

func (m *EntityManager) AddComponent(e Entity, c Component) error {
	if !m.ids.IsLive(e) {
		return entityMissing(uint32(e))
	}
	mask, err := m.components.Add(e, c)
	if err != nil {
		return err
	}
	m.signatures[e] |= mask
	return nil
}

// RemoveComponent clears key from e. An entity without that component, or a
// type that was never registered, is left as is.
func (m *EntityManager) RemoveComponent(e Entity, key ComponentKey) error {
	if !m.ids.IsLive(e) {
		return entityMissing(uint32(e))
	}
	mask, err := m.components.Mask(key)
	if err != nil || m.signatures[e]&mask == 0 {
		return nil
	}
	if err := m.components.Remove(key, e); err != nil {
		return err
	}
	m.signatures[e] &^= mask
	return nil
}

func (m *EntityManager) HasComponent(e Entity, key ComponentKey) (bool, error) {
	if !m.ids.IsLive(e) {
		return false, entityMissing(uint32(e))
	}
	mask, err := m.components.Mask(key)
	if err != nil {
		return false, nil
	}
	return m.signatures[e].Contains(mask), nil
}

func (m *EntityManager) Signature(e Entity) (Signature, error) {
	if !m.ids.IsLive(e) {
		return 0, entityMissing(uint32(e))
	}
	return m.signatures[e], nil
}

func (m *EntityManager) IsLive(e Entity) bool { return m.ids.IsLive(e) }

func (m *EntityManager) Len() int { return m.ids.Len() }

// Each visits live entities in ascending id order.
func (m *EntityManager) Each(fn func(Entity, Signature)) {
	n := m.ids.HighWater()
	for i := 0; i < n; i++ {
		e := Entity(i)
		if m.ids.IsLive(e) {
			fn(e, m.signatures[i])
		}
	}
}
