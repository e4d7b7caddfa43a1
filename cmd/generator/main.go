package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"

	"github.com/gravitas-games/seedforge/internal/bootstrap"
	"github.com/gravitas-games/seedforge/internal/config"
	"github.com/gravitas-games/seedforge/internal/gamedata"
	"github.com/gravitas-games/seedforge/internal/generator"
	"github.com/gravitas-games/seedforge/internal/resource"
	"github.com/gravitas-games/seedforge/internal/store"
)

func main() {
	log.Println("Starting layout generator...")

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/generator.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded from %s", configPath)

	registry := bootstrap.NewRegistry()
	if err := gamedata.Register(registry); err != nil {
		log.Fatalf("Failed to register builtin games: %v", err)
	}
	log.Printf("Games available: %v", registry.IDs())

	players, err := loadPlayers(cfg, registry)
	if err != nil {
		log.Fatalf("Failed to prepare players: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	layouts, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open layout store: %v", err)
	}
	defer layouts.Close()

	bus := generator.NewSimpleEventBus()
	bus.Subscribe("log", func(e generator.Event) {
		switch e.Type {
		case generator.EventAttemptFailed:
			log.Printf("Attempt %d failed: %s", e.Attempt+1, e.Message)
		case generator.EventPlacement:
			log.Printf("Player %d: placed %s (%.0f%%)", e.Player, e.Message, e.Percent)
		}
	})

	gen := generator.New(generator.Options{
		Attempts:        cfg.Generator.Attempts,
		Timeout:         cfg.Generator.Timeout,
		ResolverTimeout: cfg.Generator.ResolverTimeout,
		Weights:         cfg.Generator.Weights,
		Events:          bus,
	})
	seed := cfg.Generator.SeedOrNow(time.Now())
	log.Printf("Generating %d player(s) with seed %d", len(players), seed)

	type result struct {
		layout *generator.LayoutDescription
		err    error
	}
	done := make(chan result, 1)
	go func() {
		layout, err := gen.Generate(ctx, generator.Input{Seed: seed, Players: players})
		done <- result{layout, err}
	}()

	// Wait for the result or an interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var res result
	select {
	case res = <-done:
	case sig := <-sigChan:
		log.Printf("Received signal %v, cancelling generation...", sig)
		cancel()
		res = <-done
	}

	if res.err != nil {
		var gerr *generator.GenerationError
		if errors.As(res.err, &gerr) && gerr.Layout != nil {
			writeFailedLayout(cfg.Output.Path+".failed.json", gerr.Layout)
		}
		log.Fatalf("Generation failed: %v", res.err)
	}

	data, err := res.layout.Marshal()
	if err != nil {
		log.Fatalf("Failed to encode layout: %v", err)
	}
	if err := os.WriteFile(cfg.Output.Path, data, 0o644); err != nil {
		log.Fatalf("Failed to write layout: %v", err)
	}
	if err := layouts.Put(ctx, res.layout.Hash, data, cfg.Store.Redis.TTL); err != nil {
		log.Printf("Warning: failed to store layout: %v", err)
	}

	log.Printf("Layout %s written to %s (attempt %d)", res.layout.Hash, cfg.Output.Path, res.layout.Attempt+1)
}

// loadPlayers resolves every configured player to a generator input.
func loadPlayers(cfg *config.Config, registry *bootstrap.Registry) ([]generator.PlayerInput, error) {
	players := make([]generator.PlayerInput, 0, len(cfg.Players))
	for i, pc := range cfg.Players {
		var game bootstrap.Game
		if pc.Data != "" {
			def, err := gamedata.Load(pc.Data)
			if err != nil {
				return nil, err
			}
			game = def.Game()
			log.Printf("Player %d: game %q loaded from %s", i, game.ID, pc.Data)
		} else {
			g, err := registry.Get(pc.Game)
			if err != nil {
				return nil, err
			}
			game = g
		}

		in, err := generator.NewPlayerInput(game, bootstrap.Settings{})
		if err != nil {
			return nil, err
		}
		if in.Settings, err = pc.Settings(in.World.Resources); err != nil {
			return nil, err
		}
		tricks := lo.Map(in.World.Resources.OfKind(resource.KindTrick), func(info resource.Info, _ int) string { return info.Name })
		log.Printf("Player %d: %s, start %s, docks %s, tricks %v", i, game.Name, in.Settings.StartingLocation, in.Settings.DockShuffle, tricks)
		players = append(players, in)
	}
	return players, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	rc := cfg.Store.Redis
	if rc.Address == "" {
		log.Println("No Redis address configured, keeping layouts in memory")
		return store.NewMemoryStore(), nil
	}
	return store.NewRedisStore(ctx, store.RedisOptions{
		Address:   rc.Address,
		Password:  rc.Password,
		DB:        rc.DB,
		KeyPrefix: rc.KeyPrefix,
	})
}

func writeFailedLayout(path string, layout *generator.LayoutDescription) {
	data, err := layout.Marshal()
	if err != nil {
		log.Printf("Failed to encode unsolvable layout: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("Failed to write unsolvable layout: %v", err)
		return
	}
	log.Printf("Last unsolvable layout written to %s", path)
}
