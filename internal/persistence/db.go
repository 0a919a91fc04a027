// Package persistence provides SQLite-based world state storage. Agent
// rows round-trip all perception fields verbatim: the four flags, both
// coordinate pairs, and the action point budget.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/deadgrid/internal/actor"
	"github.com/talgya/deadgrid/internal/engine"
	"github.com/talgya/deadgrid/internal/grid"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS zombies (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		last_seen INTEGER NOT NULL,
		last_seen_x INTEGER NOT NULL,
		last_seen_y INTEGER NOT NULL,
		heard_noise INTEGER NOT NULL,
		noise_x INTEGER NOT NULL,
		noise_y INTEGER NOT NULL,
		max_ap INTEGER NOT NULL,
		ap INTEGER NOT NULL,
		hp INTEGER NOT NULL,
		behavior TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS player (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		max_ap INTEGER NOT NULL,
		ap INTEGER NOT NULL,
		hp INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_zombies_hp ON zombies(hp);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveZombies writes all zombies to the database (full replace).
func (db *DB) SaveZombies(horde []*actor.Zombie) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM zombies"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO zombies
		(id, kind, x, y, last_seen, last_seen_x, last_seen_y,
		 heard_noise, noise_x, noise_y, max_ap, ap, hp, behavior)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, z := range horde {
		_, err := stmt.Exec(
			z.UUID.String(), z.Kind.String(), z.Loc.X, z.Loc.Y,
			boolInt(z.LastSeen), z.LastSeenCoords.X, z.LastSeenCoords.Y,
			boolInt(z.HeardNoise), z.NoiseCoords.X, z.NoiseCoords.Y,
			z.MaxAP, z.AP, z.HP, z.BehaviorLabel,
		)
		if err != nil {
			return fmt.Errorf("insert zombie %s: %w", z.UUID, err)
		}
	}

	return tx.Commit()
}

// LoadZombies rebuilds every stored zombie through the variant registry.
func (db *DB) LoadZombies() ([]*actor.Zombie, error) {
	type row struct {
		ID         string `db:"id"`
		Kind       string `db:"kind"`
		X          int    `db:"x"`
		Y          int    `db:"y"`
		LastSeen   int    `db:"last_seen"`
		LastSeenX  int    `db:"last_seen_x"`
		LastSeenY  int    `db:"last_seen_y"`
		HeardNoise int    `db:"heard_noise"`
		NoiseX     int    `db:"noise_x"`
		NoiseY     int    `db:"noise_y"`
		MaxAP      int    `db:"max_ap"`
		AP         int    `db:"ap"`
		HP         int    `db:"hp"`
		Behavior   string `db:"behavior"`
	}

	var rows []row
	if err := db.conn.Select(&rows, "SELECT * FROM zombies"); err != nil {
		return nil, fmt.Errorf("load zombies: %w", err)
	}

	horde := make([]*actor.Zombie, 0, len(rows))
	for _, r := range rows {
		z, err := actor.FromDiscriminator(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("load zombie %s: %w", r.ID, err)
		}
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("load zombie %s: %w", r.ID, err)
		}
		z.UUID = id
		z.Loc = grid.Coord{X: r.X, Y: r.Y}
		z.LastSeen = r.LastSeen != 0
		z.LastSeenCoords = grid.Coord{X: r.LastSeenX, Y: r.LastSeenY}
		z.HeardNoise = r.HeardNoise != 0
		z.NoiseCoords = grid.Coord{X: r.NoiseX, Y: r.NoiseY}
		z.MaxAP = r.MaxAP
		z.AP = r.AP
		z.HP = r.HP
		z.BehaviorLabel = r.Behavior
		horde = append(horde, z)
	}
	return horde, nil
}

// SavePlayer writes the player row (full replace).
func (db *DB) SavePlayer(p *actor.Player) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM player"); err != nil {
		return err
	}
	_, err = tx.Exec(
		"INSERT INTO player (id, name, x, y, max_ap, ap, hp) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.UUID.String(), p.Name, p.Loc.X, p.Loc.Y, p.MaxAP, p.AP, p.HP,
	)
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return tx.Commit()
}

// LoadPlayer restores the stored player, or nil when no save exists.
func (db *DB) LoadPlayer() (*actor.Player, error) {
	type row struct {
		ID    string `db:"id"`
		Name  string `db:"name"`
		X     int    `db:"x"`
		Y     int    `db:"y"`
		MaxAP int    `db:"max_ap"`
		AP    int    `db:"ap"`
		HP    int    `db:"hp"`
	}

	var r row
	err := db.conn.Get(&r, "SELECT * FROM player LIMIT 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}

	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("load player: %w", err)
	}
	return &actor.Player{
		UUID:  id,
		Name:  r.Name,
		Loc:   grid.Coord{X: r.X, Y: r.Y},
		MaxAP: r.MaxAP,
		AP:    r.AP,
		HP:    r.HP,
	}, nil
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (turn, description, category) VALUES (?, ?, ?)",
			e.Turn, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// HasWorldState reports whether a previous save exists.
func (db *DB) HasWorldState() bool {
	var count int
	if err := db.conn.Get(&count, "SELECT COUNT(*) FROM player"); err != nil {
		return false
	}
	return count > 0
}

// SaveWorldState performs a full save of the simulation.
func (db *DB) SaveWorldState(sim *engine.Simulation) error {
	slog.Info("saving world state", "zombies", len(sim.Zombies), "turn", sim.Turn)

	if err := db.SavePlayer(sim.Player); err != nil {
		return fmt.Errorf("save player: %w", err)
	}
	if err := db.SaveZombies(sim.Zombies); err != nil {
		return fmt.Errorf("save zombies: %w", err)
	}
	if err := db.SaveEvents(sim.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_turn", fmt.Sprintf("%d", sim.Turn)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved")
	return nil
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT turn, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
