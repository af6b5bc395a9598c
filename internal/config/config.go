package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/l1jgo/ecsrt/internal/core/ecs"
)

type Config struct {
	World   WorldConfig   `toml:"world"`
	Logging LoggingConfig `toml:"logging"`
	Data    DataConfig    `toml:"data"`
	Profile ProfileConfig `toml:"profile"`
}

type WorldConfig struct {
	InitialPoolCapacity int           `toml:"initial_pool_capacity"`
	SignatureHeadroom   int           `toml:"signature_headroom"`
	BackfillSystems     bool          `toml:"backfill_systems"`
	TickRate            time.Duration `toml:"tick_rate"`
	MaxTicks            int           `toml:"max_ticks"` // 0 = run until signalled
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DataConfig struct {
	Prefabs    string        `toml:"prefabs"`
	ScriptsDir string        `toml:"scripts_dir"`
	Spawn      []SpawnConfig `toml:"spawn"`
}

// SpawnConfig asks for Count copies of a prefab at startup.
type SpawnConfig struct {
	Prefab string `toml:"prefab"`
	Count  int    `toml:"count"`
}

type ProfileConfig struct {
	Mode string `toml:"mode"` // "cpu", "mem" or "" for none
	Dir  string `toml:"dir"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes TOML over the defaults. name is only used in errors.
func Parse(data []byte, name string) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.TickRate <= 0 {
		return fmt.Errorf("world.tick_rate must be positive, got %s", c.World.TickRate)
	}
	if c.World.InitialPoolCapacity < 0 || c.World.SignatureHeadroom < 0 {
		return fmt.Errorf("world sizes must not be negative")
	}
	switch c.Profile.Mode {
	case "", "cpu", "mem":
	default:
		return fmt.Errorf("profile.mode %q is not one of cpu, mem", c.Profile.Mode)
	}
	return nil
}

// WorldOptions maps the [world] section onto ecs.Options.
func (c *Config) WorldOptions() ecs.Options {
	return ecs.Options{
		InitialPoolCapacity: c.World.InitialPoolCapacity,
		SignatureHeadroom:   c.World.SignatureHeadroom,
	}
}

func defaults() *Config {
	return &Config{
		World: WorldConfig{
			InitialPoolCapacity: ecs.DefaultPoolCapacity,
			SignatureHeadroom:   ecs.DefaultSignatureHeadroom,
			BackfillSystems:     true,
			TickRate:            100 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Data: DataConfig{
			Prefabs:    "data/prefabs.yaml",
			ScriptsDir: "scripts",
		},
		Profile: ProfileConfig{
			Dir: ".",
		},
	}
}
