// Command deadgrid runs the headless survival simulation: a survivor
// roams a ruined town while the horde chases, investigates, and stalks.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talgya/deadgrid/internal/actor"
	"github.com/talgya/deadgrid/internal/api"
	"github.com/talgya/deadgrid/internal/engine"
	"github.com/talgya/deadgrid/internal/grid"
	"github.com/talgya/deadgrid/internal/persistence"
	"github.com/talgya/deadgrid/internal/worldgen"
)

func main() {
	var (
		seed     = flag.Int64("seed", 42, "world seed (0 = random)")
		turns    = flag.Int("turns", 0, "stop after N turns (0 = run until the player falls)")
		horde    = flag.Int("horde", 12, "number of zombies to spawn")
		dbPath   = flag.String("db", "data/deadgrid.db", "SQLite save path")
		apiPort  = flag.Int("port", 8080, "HTTP API port")
		interval = flag.Duration("interval", time.Second, "delay between turns")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("DEADGRID — turn-based survival simulation")

	// ── Database ──────────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", *dbPath)

	// ── World Map (always regenerated — deterministic from seed) ──────
	cfg := worldgen.DefaultGenConfig()
	cfg.Seed = *seed
	worldMap := worldgen.Generate(cfg)

	for t, c := range worldgen.TerrainCounts(worldMap) {
		slog.Info("terrain", "type", grid.TerrainName(t), "count", c)
	}

	// ── Load or Spawn Entities ────────────────────────────────────────
	spawner := actor.NewSpawner(*seed)
	var player *actor.Player
	var zombies []*actor.Zombie
	var startTurn uint64

	if db.HasWorldState() {
		slog.Info("found saved world state, loading...")

		player, err = db.LoadPlayer()
		if err != nil {
			slog.Error("failed to load player", "error", err)
			os.Exit(1)
		}
		zombies, err = db.LoadZombies()
		if err != nil {
			slog.Error("failed to load zombies", "error", err)
			os.Exit(1)
		}
		if turnStr, err := db.GetMeta("last_turn"); err == nil {
			fmt.Sscanf(turnStr, "%d", &startTurn)
		}

		// Re-place loaded entities, clearing terrain if the regenerated
		// map disagrees with the save.
		worldgen.ClearSpawn(worldMap, player.Loc, 0)
		if err := worldMap.PlaceEntity(player, player.Loc); err != nil {
			slog.Error("failed to place player", "error", err)
			os.Exit(1)
		}
		for _, z := range zombies {
			if !z.Alive() {
				continue
			}
			worldgen.ClearSpawn(worldMap, z.Loc, 0)
			if err := worldMap.PlaceEntity(z, z.Loc); err != nil {
				slog.Error("failed to place zombie", "error", err)
				os.Exit(1)
			}
		}
		slog.Info("world state restored", "zombies", len(zombies), "turn", startTurn)
	} else {
		slog.Info("no saved state found, spawning fresh world...")

		center := grid.Coord{X: worldMap.Width / 2, Y: worldMap.Height / 2}
		worldgen.ClearSpawn(worldMap, center, 2)

		player, err = spawner.SpawnPlayer(worldMap, "Survivor", center)
		if err != nil {
			slog.Error("failed to spawn player", "error", err)
			os.Exit(1)
		}
		zombies, err = spawner.SpawnHorde(worldMap, *horde, player.Pos(), 8)
		if err != nil {
			slog.Warn("horde spawn incomplete", "error", err, "spawned", len(zombies))
		}
	}

	slog.Info("world ready",
		"map", worldMap.String(),
		"player", player.Pos(),
		"zombies", len(zombies),
	)

	// ── Simulation ────────────────────────────────────────────────────
	sim := engine.NewSimulation(worldMap, player, zombies)
	sim.Turn = startTurn
	sim.PlayerPolicy = engine.NewSurvivorPolicy(*seed)

	if startTurn == 0 {
		if err := db.SaveWorldState(sim); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("DEADGRID_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("DEADGRID_ADMIN_KEY not set — the step endpoint will be disabled")
	}

	server := &api.Server{
		Sim:      sim,
		DB:       db,
		Port:     *apiPort,
		AdminKey: adminKey,
		Stream:   api.NewStream(),
	}
	server.Start()

	// ── Turn Loop ─────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	stop := false
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		stop = true
	}()

	fmt.Printf("\nThe town is quiet. %d of them are out there.\n", len(zombies))
	fmt.Printf("API: http://localhost:%d/api/v1/status  feed: ws://localhost:%d/ws\n\n", *apiPort, *apiPort)

	for !stop && !sim.Over() {
		if *turns > 0 && sim.Turn >= startTurn+uint64(*turns) {
			break
		}

		server.Mu.Lock()
		before := len(sim.Events)
		err := sim.RunTurn()
		if err == nil {
			server.Stream.Broadcast(api.TurnUpdate{
				Turn:   sim.Turn,
				Stats:  sim.Stats,
				Events: sim.Events[before:],
			})
		}
		server.Mu.Unlock()

		if err != nil {
			slog.Error("turn failed", "error", err)
			break
		}

		// Auto-save every 10 turns.
		if sim.Turn%10 == 0 {
			if err := db.SaveWorldState(sim); err != nil {
				slog.Error("auto-save failed", "error", err)
			}
		}

		time.Sleep(*interval)
	}

	slog.Info("final save...")
	if err := db.SaveWorldState(sim); err != nil {
		slog.Error("final save failed", "error", err)
	}

	if sim.Over() {
		fmt.Println("\nThe survivor has fallen. The town belongs to them now.")
	} else {
		fmt.Println("\nSimulation stopped. World state saved.")
	}
}
