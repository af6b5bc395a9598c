package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	lua "github.com/yuin/gopher-lua"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	"github.com/l1jgo/ecsrt/internal/data"
)

const prefabsYAML = `
prefabs:
  - name: spark
    components:
      label: { name: spark }
      position: { vec: [1, 1] }
`

func newTestEngine(t *testing.T, src string) *Engine {
	t.Helper()
	cat := data.StandardCatalog()
	prefabs, err := data.ParsePrefabs([]byte(prefabsYAML), cat)
	if err != nil {
		t.Fatal(err)
	}
	e, err := NewEngineFromSource(src, cat, prefabs, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(e.Close)
	return e
}

func systemsOf(t *testing.T, e *Engine) []*ScriptSystem {
	t.Helper()
	systems, err := e.Systems()
	if err != nil {
		t.Fatal(err)
	}
	return systems
}

func TestScriptSystemDefinition(t *testing.T) {
	e := newTestEngine(t, `
assert(API_VERSION == 1)
table.insert(systems, { name = "noop", components = { "position", "velocity" }, run = function() end })
`)
	systems := systemsOf(t, e)
	if len(systems) != 1 {
		t.Fatalf("got %d systems", len(systems))
	}
	s := systems[0]
	if s.SystemName() != "lua:noop" {
		t.Errorf("SystemName() = %q", s.SystemName())
	}
	keys := s.Components()
	if len(keys) != 2 || keys[0] != ecs.Key[component.Position]() || keys[1] != ecs.Key[component.Velocity]() {
		t.Errorf("Components() = %v", keys)
	}
}

func TestScriptSystemBadDefinitions(t *testing.T) {
	tests := map[string]string{
		"no name":           `table.insert(systems, { run = function() end })`,
		"no run":            `table.insert(systems, { name = "x" })`,
		"unknown component": `table.insert(systems, { name = "x", components = { "wings" }, run = function() end })`,
		"not a table":       `table.insert(systems, 5)`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			e := newTestEngine(t, src)
			if _, err := e.Systems(); err == nil {
				t.Error("Systems() returned nil error")
			}
		})
	}
	if _, err := NewEngineFromSource("this is not lua", data.StandardCatalog(), nil, nil); err == nil {
		t.Error("syntax error accepted")
	}
}

func TestScriptSystemQueuesCommands(t *testing.T) {
	eng := newTestEngine(t, `
table.insert(systems, {
  name = "ops",
  components = { "health" },
  run = function(ctx, entities)
    for _, id in ipairs(entities) do
      local hp = ctx.get(id, "health")
      if hp.current <= 0 then
        ctx.remove_entity(id)
      else
        hp.current = hp.current + ctx.frame
        ctx.set(id, "health", hp)
        if ctx.has(id, "label") then
          ctx.remove_component(id, "label")
        end
        ctx.spawn("spark")
      end
    end
  end,
})
`)
	w := ecs.NewWorld(ecs.Options{}, nil)
	ecs.AddResource(w, component.Clock{Frame: 2})
	alive, _ := w.Spawn(ecs.C(component.Health{Current: 5, Max: 10}), ecs.C(component.Label{Name: "a"}))
	dying, _ := w.Spawn(ecs.C(component.Health{Current: 0, Max: 10}))
	_ = w.Update()

	sys := systemsOf(t, eng)[0]
	w.AddSystem(sys, true)
	if err := w.UpdateSystemNamed(sys.SystemName()); err != nil {
		t.Fatal(err)
	}
	_ = w.Update()

	if h, _ := ecs.Get[component.Health](w, alive); h.Current != 7 || h.Max != 10 {
		t.Errorf("health = %+v, want {7 10}", h)
	}
	if w.HasComponent(alive, ecs.Key[component.Label]()) {
		t.Error("label not removed")
	}
	if w.IsLive(dying) {
		t.Error("entity with no health still live")
	}
	// alive + one spawned spark
	if w.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", w.Len())
	}
	spark := w.Query().Entities().With(ecs.Key[component.Label]()).Get()
	if len(spark) != 1 {
		t.Fatalf("labelled entities = %v", spark)
	}
	if p, _ := ecs.Get[component.Position](w, spark[0]); p.Vec != (mgl64.Vec2{1, 1}) {
		t.Errorf("spark position = %v", p.Vec)
	}
}

func TestScriptErrorKeepsEarlierCommands(t *testing.T) {
	eng := newTestEngine(t, `
table.insert(systems, {
  name = "broken",
  components = { "health" },
  run = function(ctx, entities)
    ctx.remove_entity(entities[1])
    ctx.set(entities[1], "wings", {})
  end,
})
`)
	w := ecs.NewWorld(ecs.Options{}, nil)
	e, _ := w.Spawn(ecs.C(component.Health{Current: 1}))
	_ = w.Update()
	w.AddSystem(systemsOf(t, eng)[0], true)

	if err := w.UpdateSystemNamed("lua:broken"); err != nil {
		t.Fatal(err)
	}
	_ = w.Update()
	if w.IsLive(e) {
		t.Error("command queued before the script error was dropped")
	}
}

func TestScriptRejectsBadEntityIDs(t *testing.T) {
	eng := newTestEngine(t, `
table.insert(systems, {
  name = "ids",
  components = { "health" },
  run = function(ctx, entities)
    ctx.remove_entity(ARG)
  end,
})
`)
	w := ecs.NewWorld(ecs.Options{}, nil)
	w.Spawn(ecs.C(component.Health{Current: 1}))
	_ = w.Update()
	sys := systemsOf(t, eng)[0]
	w.AddSystem(sys, true)

	for _, id := range []float64{0.5, -1, 4294967296, 1e12} {
		eng.vm.SetGlobal("ARG", lua.LNumber(id))
		cmds := ecs.NewCommandBuffer()
		sys.Run(w.Query(), []ecs.Entity{0}, cmds, nil)
		if cmds.Len() != 0 {
			t.Errorf("id %v was accepted as %v", id, cmds.Commands())
		}
	}

	eng.vm.SetGlobal("ARG", lua.LNumber(0))
	cmds := ecs.NewCommandBuffer()
	sys.Run(w.Query(), []ecs.Entity{0}, cmds, nil)
	if cmds.Len() != 1 || cmds.Commands()[0].Entity != 0 {
		t.Errorf("valid id not queued: %v", cmds.Commands())
	}
}

func TestNewEngineLoadsDirectories(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, src string) {
		path := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("lib.lua", `function make(name) return { name = name, run = function() end } end`)
	write("systems/b.lua", `table.insert(systems, make("b"))`)
	write("systems/a.lua", `table.insert(systems, make("a"))`)
	write("systems/readme.txt", `not a script`)

	eng, err := NewEngine(dir, data.StandardCatalog(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()
	systems := systemsOf(t, eng)
	if len(systems) != 2 || systems[0].SystemName() != "lua:a" || systems[1].SystemName() != "lua:b" {
		t.Errorf("systems loaded out of order")
	}

	if _, err := NewEngine(filepath.Join(dir, "missing"), data.StandardCatalog(), nil, nil); err != nil {
		t.Errorf("missing script dir: %v", err)
	}
}

func TestLuaConversion(t *testing.T) {
	eng := newTestEngine(t, "")
	L := eng.vm
	in := map[string]any{
		"n":    int64(3),
		"f":    1.5,
		"s":    "x",
		"list": []any{int64(1), int64(2)},
	}
	out, ok := fromLua(toLua(L, in)).(map[string]any)
	if !ok {
		t.Fatal("table did not convert back to a map")
	}
	if out["n"] != int64(3) || out["f"] != 1.5 || out["s"] != "x" {
		t.Errorf("scalars = %#v", out)
	}
	if list, _ := out["list"].([]any); len(list) != 2 || list[1] != int64(2) {
		t.Errorf("list = %#v", out["list"])
	}
}
