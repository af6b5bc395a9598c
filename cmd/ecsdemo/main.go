package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/ecsrt/internal/component"
	"github.com/l1jgo/ecsrt/internal/config"
	"github.com/l1jgo/ecsrt/internal/core/ecs"
	coresys "github.com/l1jgo/ecsrt/internal/core/system"
	"github.com/l1jgo/ecsrt/internal/data"
	"github.com/l1jgo/ecsrt/internal/scripting"
	"github.com/l1jgo/ecsrt/internal/system"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ─────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/ecsdemo.toml"
	if p := os.Getenv("ECSRT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. World, resources and event handlers
	world := ecs.NewWorld(cfg.WorldOptions(), log)
	ecs.AddResource(world, component.Bounds{
		Min: mgl64.Vec2{-100, -100},
		Max: mgl64.Vec2{100, 100},
	})
	ecs.Subscribe(world, system.DespawnOutOfBounds)
	ecs.Subscribe(world, func(ev system.Expired, _ *ecs.Query, _ *ecs.CommandBuffer) {
		log.Debug("entity expired", zap.Uint32("entity", uint32(ev.Entity)))
	})

	// 4. Prefabs and scripts
	printSection("data")
	catalog := data.StandardCatalog()
	prefabs, err := data.LoadPrefabs(cfg.Data.Prefabs, catalog)
	if err != nil {
		return fmt.Errorf("prefabs: %w", err)
	}
	printStat("prefabs", prefabs.Count())

	lua, err := scripting.NewEngine(cfg.Data.ScriptsDir, catalog, prefabs, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer lua.Close()
	scripted, err := lua.Systems()
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	printStat("lua systems", len(scripted))

	spawned := 0
	for _, sp := range cfg.Data.Spawn {
		for i := 0; i < sp.Count; i++ {
			if _, err := prefabs.Spawn(world, sp.Prefab); err != nil {
				return fmt.Errorf("spawn %s: %w", sp.Prefab, err)
			}
			spawned++
		}
	}
	printStat("entities", spawned)
	fmt.Println()

	// 5. Create systems and register with runner
	backfill := cfg.World.BackfillSystems
	runner := coresys.NewRunner()
	runner.Register(system.NewClockSystem(world))
	runner.Register(system.NewFlushSystem(world, coresys.PhasePreUpdate, log))
	runner.Register(system.Schedule(world, system.MovementSystem{}, coresys.PhaseUpdate, backfill, log))
	runner.Register(system.Schedule(world, system.LifetimeSystem{}, coresys.PhaseUpdate, backfill, log))
	for _, s := range scripted {
		runner.Register(system.Schedule(world, s, coresys.PhasePostUpdate, backfill, log))
	}
	runner.Register(system.NewFlushSystem(world, coresys.PhaseCleanup, log))

	// 6. Optional profiling of the run
	switch cfg.Profile.Mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(cfg.Profile.Dir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath(cfg.Profile.Dir), profile.NoShutdownHook).Stop()
	}

	// 7. Start loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

	printSection("ready")
	printReady(fmt.Sprintf("world %s", world.ID()))
	printReady(fmt.Sprintf("loop started (tick: %s)", cfg.World.TickRate))
	fmt.Println()

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.World.TickRate)
			if runner.Ticks()%50 == 0 {
				log.Info("tick",
					zap.Uint64("tick", runner.Ticks()),
					zap.Int("entities", world.Len()))
			}
			if cfg.World.MaxTicks > 0 && runner.Ticks() >= uint64(cfg.World.MaxTicks) {
				log.Info("tick limit reached", zap.Int("entities", world.Len()))
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			return nil
		}
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
