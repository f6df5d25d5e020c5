// Package persistence provides a SQLite archive of simulation runs.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/simplemacro/internal/economy"
	"github.com/talgya/simplemacro/internal/engine"
)

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Run is one archived simulation.
type Run struct {
	ID        string `db:"id" json:"id"`
	Scenario  string `db:"scenario" json:"scenario"`
	Seed      int64  `db:"seed" json:"seed"`
	Periods   int64  `db:"periods" json:"periods"`
	Faults    int    `db:"faults" json:"faults"`
	Config    string `db:"config_json" json:"config"`
	CreatedAt string `db:"created_at" json:"created_at"`
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
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		seed INTEGER NOT NULL,
		periods INTEGER NOT NULL,
		faults INTEGER NOT NULL,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS observations (
		run_id TEXT NOT NULL REFERENCES runs(id),
		period INTEGER NOT NULL,
		price REAL NOT NULL,
		profit REAL NOT NULL,
		rate REAL NOT NULL,
		liquidity REAL NOT NULL,
		output REAL NOT NULL,
		asset REAL NOT NULL,
		inflation REAL NOT NULL,
		PRIMARY KEY (run_id, period)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS archive_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveRun archives one finished run under a fresh id and returns it.
func (db *DB) SaveRun(scenario string, cfg engine.Config, res engine.Result) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	var obs []economy.Observation
	if res.History != nil {
		obs = res.History.All()
	}

	id := uuid.NewString()
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO runs
		(id, scenario, seed, periods, faults, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, scenario, res.Seed, len(obs), res.Stats.Faults, string(cfgJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Preparex(`INSERT INTO observations
		(run_id, period, price, profit, rate, liquidity, output, asset, inflation)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, o := range obs {
		_, err := stmt.Exec(id, int64(o.Period), o.Price, o.Profit, o.Rate,
			o.Liquidity, o.Output, o.Asset, o.Inflation)
		if err != nil {
			return "", fmt.Errorf("insert observation %d: %w", o.Period, err)
		}
	}

	for _, e := range res.Events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)",
			id, int64(e.Tick), e.Description, e.Category,
		)
		if err != nil {
			return "", fmt.Errorf("insert event: %w", err)
		}
	}

	if _, err := tx.Exec(
		"INSERT OR REPLACE INTO archive_meta (key, value) VALUES ('last_run', ?)", id,
	); err != nil {
		return "", fmt.Errorf("save meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("run archived", "run", id, "scenario", scenario, "seed", res.Seed, "periods", len(obs))
	return id, nil
}

// GetRun returns one archived run.
func (db *DB) GetRun(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", id)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns every archived run, newest first.
func (db *DB) ListRuns() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs, "SELECT * FROM runs ORDER BY created_at DESC, rowid DESC")
	return runs, err
}

// LoadObservations returns a run's observations in period order.
func (db *DB) LoadObservations(runID string) ([]economy.Observation, error) {
	var obs []economy.Observation
	err := db.conn.Select(&obs,
		`SELECT period, price, profit, rate, liquidity, output, asset, inflation
		 FROM observations WHERE run_id = ? ORDER BY period`,
		runID,
	)
	return obs, err
}

// LoadHistory rebuilds a History from an archived run.
func (db *DB) LoadHistory(runID string) (*economy.History, error) {
	obs, err := db.LoadObservations(runID)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	h := economy.NewHistory(len(obs))
	for _, o := range obs {
		h.Append(o)
	}
	return h, nil
}

// RecentEvents returns a run's most recent N events.
func (db *DB) RecentEvents(runID string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		runID, limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in archive metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO archive_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM archive_meta WHERE key = ?", key)
	return value, err
}
