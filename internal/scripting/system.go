package scripting

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

// ScriptSystem is an ecs.SystemAction whose body is a Lua function.
//
// The function is called as run(ctx, entities) where entities is an array of
// ids and ctx offers:
//
//	ctx.dt                          seconds since last tick (Clock resource)
//	ctx.frame                       tick counter (Clock resource)
//	ctx.has(id, name)               bool
//	ctx.get(id, name)               table or nil
//	ctx.set(id, name, table)        queue add/replace of a component
//	ctx.remove_component(id, name)  queue removal of a component
//	ctx.remove_entity(id)           queue removal of an entity
//	ctx.spawn(prefab)               queue creation from a prefab
//
// All changes go through the system's command buffer.
type ScriptSystem struct {
	engine     *Engine
	name       string
	components []string
	keys       []ecs.ComponentKey
	run        *lua.LFunction
}

func (e *Engine) newScriptSystem(def *lua.LTable) (*ScriptSystem, error) {
	name := lStr(def, "name")
	if name == "" {
		return nil, fmt.Errorf("script system without name")
	}
	fn, ok := def.RawGetString("run").(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("script system %s: run is not a function", name)
	}
	s := &ScriptSystem{engine: e, name: name, run: fn}
	if comps, ok := def.RawGetString("components").(*lua.LTable); ok {
		var err error
		comps.ForEach(func(_, v lua.LValue) {
			if err != nil {
				return
			}
			cname := lua.LVAsString(v)
			key, found := e.catalog.Key(cname)
			if !found {
				err = fmt.Errorf("script system %s: unknown component %q", name, cname)
				return
			}
			s.components = append(s.components, cname)
			s.keys = append(s.keys, key)
		})
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *ScriptSystem) SystemName() string { return "lua:" + s.name }

func (s *ScriptSystem) Components() []ecs.ComponentKey { return s.keys }

// Run calls the Lua function. Script errors are logged and the commands
// queued before the error still apply.
func (s *ScriptSystem) Run(q *ecs.Query, entities []ecs.Entity, cmds *ecs.CommandBuffer, _ *ecs.Emitter) {
	vm := s.engine.vm
	ids := vm.CreateTable(len(entities), 0)
	for _, e := range entities {
		ids.Append(lua.LNumber(e))
	}
	ctx := s.engine.context(q, cmds)
	if err := vm.CallByParam(lua.P{
		Fn:      s.run,
		NRet:    0,
		Protect: true,
	}, ctx, ids); err != nil {
		s.engine.log.Error("lua system error", zap.String("system", s.name), zap.Error(err))
	}
}

func (e *Engine) context(q *ecs.Query, cmds *ecs.CommandBuffer) *lua.LTable {
	vm := e.vm
	ctx := vm.NewTable()
	if clk, ok := ecs.ReadResource[component.Clock](q); ok {
		c := clk.Get()
		clk.Release()
		ctx.RawSetString("dt", lua.LNumber(c.Delta.Seconds()))
		ctx.RawSetString("frame", lua.LNumber(c.Frame))
	}

	ctx.RawSetString("has", vm.NewFunction(func(L *lua.LState) int {
		id, name := checkEntity(L, 1), L.CheckString(2)
		key, ok := e.catalog.Key(name)
		L.Push(lua.LBool(ok && q.Has(id, key)))
		return 1
	}))
	ctx.RawSetString("get", vm.NewFunction(func(L *lua.LState) int {
		id, name := checkEntity(L, 1), L.CheckString(2)
		v, ok, err := e.catalog.Read(name, q, id)
		if err != nil {
			L.RaiseError("get %s: %s", name, err.Error())
			return 0
		}
		if !ok {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(toLua(L, v))
		return 1
	}))
	ctx.RawSetString("set", vm.NewFunction(func(L *lua.LState) int {
		id, name := checkEntity(L, 1), L.CheckString(2)
		c, err := e.catalog.DecodeValue(name, fromLua(L.CheckTable(3)))
		if err != nil {
			L.RaiseError("set %s: %s", name, err.Error())
			return 0
		}
		cmds.AddComponent(id, c)
		return 0
	}))
	ctx.RawSetString("remove_component", vm.NewFunction(func(L *lua.LState) int {
		id, name := checkEntity(L, 1), L.CheckString(2)
		key, ok := e.catalog.Key(name)
		if !ok {
			L.RaiseError("remove_component: unknown component %q", name)
			return 0
		}
		cmds.RemoveComponent(id, key)
		return 0
	}))
	ctx.RawSetString("remove_entity", vm.NewFunction(func(L *lua.LState) int {
		cmds.RemoveEntity(checkEntity(L, 1))
		return 0
	}))
	ctx.RawSetString("spawn", vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if e.prefabs == nil {
			L.RaiseError("spawn: no prefabs loaded")
			return 0
		}
		if err := e.prefabs.Queue(cmds, name); err != nil {
			L.RaiseError("spawn: %s", err.Error())
		}
		return 0
	}))
	return ctx
}

func checkEntity(L *lua.LState, n int) ecs.Entity {
	v := float64(L.CheckNumber(n))
	if v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
		L.ArgError(n, "entity id must be an integer in [0, 2^32)")
	}
	return ecs.Entity(uint32(v))
}
