package ecs

import "fmt"

// CommandKind tags the structural change a Command requests.
type CommandKind uint8

const (
	CmdRemoveEntity CommandKind = iota
	CmdRemoveComponent
	CmdCreateEntity
	CmdAddComponent
)

func (k CommandKind) String() string {
	switch k {
	case CmdRemoveEntity:
		return "remove_entity"
	case CmdRemoveComponent:
		return "remove_component"
	case CmdCreateEntity:
		return "create_entity"
	case CmdAddComponent:
		return "add_component"
	}
	return fmt.Sprintf("command(%d)", uint8(k))
}

// Command is one deferred structural change.
type Command struct {
	Kind       CommandKind
	Entity     Entity
	Key        ComponentKey // CmdRemoveComponent
	Components []Component  // CmdCreateEntity, CmdAddComponent (one element)
}

func (c Command) String() string {
	switch c.Kind {
	case CmdRemoveEntity:
		return fmt.Sprintf("%s(%d)", c.Kind, c.Entity)
	case CmdRemoveComponent:
		return fmt.Sprintf("%s(%d, %s)", c.Kind, c.Entity, c.Key)
	case CmdAddComponent:
		return fmt.Sprintf("%s(%d, %s)", c.Kind, c.Entity, c.Components[0].Key())
	}
	return fmt.Sprintf("%s(%d components)", c.Kind, len(c.Components))
}

// CommandBuffer queues structural changes made during a pass. The World
// applies them in the order they were queued, after the pass returns.
type CommandBuffer struct {
	cmds []Command
}

func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{cmds: make([]Command, 0, 8)}
}

func (b *CommandBuffer) RemoveEntity(e Entity) {
	b.cmds = append(b.cmds, Command{Kind: CmdRemoveEntity, Entity: e})
}

func (b *CommandBuffer) RemoveComponent(e Entity, key ComponentKey) {
	b.cmds = append(b.cmds, Command{Kind: CmdRemoveComponent, Entity: e, Key: key})
}

func (b *CommandBuffer) AddComponent(e Entity, c Component) {
	b.cmds = append(b.cmds, Command{Kind: CmdAddComponent, Entity: e, Components: []Component{c}})
}

// CreateEntity queues a new entity carrying components.
func (b *CommandBuffer) CreateEntity(components ...Component) {
	b.cmds = append(b.cmds, Command{Kind: CmdCreateEntity, Components: components})
}

func (b *CommandBuffer) Len() int { return len(b.cmds) }

// Commands returns a copy of the queued commands, oldest first.
func (b *CommandBuffer) Commands() []Command {
	out := make([]Command, len(b.cmds))
	copy(out, b.cmds)
	return out
}

func (b *CommandBuffer) Reset() { b.cmds = b.cmds[:0] }

// drain hands out the queued commands oldest first and empties the buffer.
func (b *CommandBuffer) drain() []Command {
	cmds := b.cmds
	b.cmds = nil
	return cmds
}
