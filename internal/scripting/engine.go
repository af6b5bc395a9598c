package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/ecsrt/internal/data"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// Engine wraps a single gopher-lua VM that hosts scripted systems.
// Single-goroutine access only (game loop).
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	catalog *data.Catalog
	prefabs *data.PrefabTable
}

// NewEngine creates a Lua engine and loads every script under scriptsDir:
// first the directory itself, then its systems/ subdirectory. prefabs may be
// nil, in which case ctx.spawn is unavailable to scripts.
func NewEngine(scriptsDir string, cat *data.Catalog, prefabs *data.PrefabTable, log *zap.Logger) (*Engine, error) {
	e := newEngine(cat, prefabs, log)
	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "systems")} {
		if err := e.loadDir(dir); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

// NewEngineFromSource is NewEngine for a single in-memory chunk.
func NewEngineFromSource(src string, cat *data.Catalog, prefabs *data.PrefabTable, log *zap.Logger) (*Engine, error) {
	e := newEngine(cat, prefabs, log)
	if err := e.vm.DoString(src); err != nil {
		e.vm.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return e, nil
}

func newEngine(cat *data.Catalog, prefabs *data.PrefabTable, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))
	vm.SetGlobal("systems", vm.NewTable())
	return &Engine{vm: vm, log: log, catalog: cat, prefabs: prefabs}
}

// loadDir loads all .lua files in a directory in name order.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Systems builds a ScriptSystem for every entry of the global systems table.
// Each entry is {name = "...", components = {...}, run = function(ctx, entities)}.
func (e *Engine) Systems() ([]*ScriptSystem, error) {
	tbl, ok := e.vm.GetGlobal("systems").(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("global systems is not a table")
	}
	var out []*ScriptSystem
	var ferr error
	tbl.ForEach(func(_, v lua.LValue) {
		if ferr != nil {
			return
		}
		def, ok := v.(*lua.LTable)
		if !ok {
			ferr = fmt.Errorf("systems entry is %s, want table", v.Type())
			return
		}
		s, err := e.newScriptSystem(def)
		if err != nil {
			ferr = err
			return
		}
		out = append(out, s)
	})
	if ferr != nil {
		return nil, ferr
	}
	return out, nil
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	return lua.LVAsString(t.RawGetString(key))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
