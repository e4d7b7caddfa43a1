package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/gravitas-games/seedforge/internal/bootstrap"
	"github.com/gravitas-games/seedforge/internal/generator"
	"github.com/gravitas-games/seedforge/internal/requirement"
	"github.com/gravitas-games/seedforge/internal/resource"
)

// Config holds all generator configuration
type Config struct {
	Generator GeneratorConfig `yaml:"generator"`
	Store     StoreConfig     `yaml:"store"`
	Output    OutputConfig    `yaml:"output"`
	Players   []PlayerConfig  `yaml:"players"`
}

// GeneratorConfig holds generation settings
type GeneratorConfig struct {
	Seed            *uint64           `yaml:"seed"`     // nil picks a seed from the clock
	Attempts        int               `yaml:"attempts"` // retries after the first attempt
	Timeout         time.Duration     `yaml:"timeout"`
	ResolverTimeout time.Duration     `yaml:"resolver_timeout"`
	Weights         generator.Weights `yaml:"weights"`
}

// StoreConfig holds layout store settings
type StoreConfig struct {
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis connection settings. An empty address disables
// Redis and keeps layouts in memory.
type RedisConfig struct {
	Address   string        `yaml:"address"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// OutputConfig holds where the layout JSON is written
type OutputConfig struct {
	Path string `yaml:"path"`
}

// PlayerConfig holds one player's game and options
type PlayerConfig struct {
	Game             string            `yaml:"game"`
	Data             string            `yaml:"data"` // YAML game definition, overrides the builtin game
	TrickLevels      map[string]string `yaml:"trick_levels"`
	StartingLocation string            `yaml:"starting_location"` // vanilla or random
	DockShuffle      string            `yaml:"dock_shuffle"`      // vanilla, two-way or one-way
	MajorMinorSplit  bool              `yaml:"major_minor_split"`
	StartingItems    []ItemConfig      `yaml:"starting_items"`
}

// ItemConfig names an item amount
type ItemConfig struct {
	Name   string `yaml:"name"`
	Amount int    `yaml:"amount"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Generator.Timeout == 0 {
		cfg.Generator.Timeout = 2 * time.Minute
	}
	if cfg.Generator.ResolverTimeout == 0 {
		cfg.Generator.ResolverTimeout = 30 * time.Second
	}
	if cfg.Generator.Weights == (generator.Weights{}) {
		cfg.Generator.Weights = generator.DefaultWeights()
	}
	if cfg.Store.Redis.KeyPrefix == "" {
		cfg.Store.Redis.KeyPrefix = "seedforge:layout:"
	}
	if cfg.Store.Redis.TTL == 0 {
		cfg.Store.Redis.TTL = 7 * 24 * time.Hour
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "layout.json"
	}
	if len(cfg.Players) == 0 {
		cfg.Players = []PlayerConfig{{}}
	}
	for i := range cfg.Players {
		if cfg.Players[i].Game == "" && cfg.Players[i].Data == "" {
			cfg.Players[i].Game = "demo"
		}
	}
}

// Validate checks the settings that do not need game data
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Generator.Attempts < 0 {
		errs = append(errs, fmt.Errorf("generator.attempts must not be negative"))
	}
	if err := cfg.Generator.Weights.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("generator.weights: %w", err))
	}
	for i, p := range cfg.Players {
		if _, err := bootstrap.ParseStartMode(p.StartingLocation); err != nil {
			errs = append(errs, fmt.Errorf("players[%d]: %w", i, err))
		}
		if _, err := bootstrap.ParseDockMode(p.DockShuffle); err != nil {
			errs = append(errs, fmt.Errorf("players[%d]: %w", i, err))
		}
		for name, level := range p.TrickLevels {
			if _, err := requirement.ParseLevel(level); err != nil {
				errs = append(errs, fmt.Errorf("players[%d]: trick %q: %w", i, name, err))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// SeedOrNow returns the configured seed, or one derived from now
func (g GeneratorConfig) SeedOrNow(now time.Time) uint64 {
	if g.Seed != nil {
		return *g.Seed
	}
	return uint64(now.UnixNano())
}

// Settings resolves the player's options against a game's resources
func (p PlayerConfig) Settings(db *resource.Database) (bootstrap.Settings, error) {
	var s bootstrap.Settings
	var err error
	if s.StartingLocation, err = bootstrap.ParseStartMode(p.StartingLocation); err != nil {
		return s, err
	}
	if s.DockShuffle, err = bootstrap.ParseDockMode(p.DockShuffle); err != nil {
		return s, err
	}
	s.MajorMinorSplit = p.MajorMinorSplit

	names := lo.Keys(p.TrickLevels)
	sort.Strings(names)
	if len(names) > 0 {
		s.Tricks = make(requirement.TrickLevels, len(names))
	}
	for _, name := range names {
		info, err := db.Find(resource.KindTrick, name)
		if err != nil {
			return s, err
		}
		level, err := requirement.ParseLevel(p.TrickLevels[name])
		if err != nil {
			return s, err
		}
		s.Tricks[info.Index] = level
	}

	for _, item := range p.StartingItems {
		info, err := db.Find(resource.KindItem, item.Name)
		if err != nil {
			return s, err
		}
		amount := item.Amount
		if amount == 0 {
			amount = 1
		}
		s.StartingItems = append(s.StartingItems, resource.Quantity{Resource: info.Index, Amount: amount})
	}
	return s, nil
}
