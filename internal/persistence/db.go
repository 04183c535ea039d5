// Package persistence provides SQLite-based storage for trust field
// snapshots, keyed by field instance identity.
//
// Adapted from the teacher's internal/persistence/db.go: same sqlx-over-
// modernc.org/sqlite connection handling, migrate-on-open schema, and
// fmt.Errorf wrapping, but storing Snapshot rows (one per field instance,
// one per persisted context) instead of agent/settlement/faction rows.
package persistence

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/trustfield/internal/personality"
	"github.com/talgya/trustfield/internal/snapshot"
)

// DB wraps a SQLite connection for trust field snapshot storage.
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
	CREATE TABLE IF NOT EXISTS fields (
		id TEXT PRIMARY KEY,
		version INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		last_active INTEGER NOT NULL,
		total_interactions INTEGER NOT NULL,
		curiosity REAL NOT NULL,
		startle REAL NOT NULL,
		recovery REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS field_contexts (
		field_id TEXT NOT NULL,
		hash TEXT NOT NULL,
		coherence REAL NOT NULL,
		floor REAL NOT NULL,
		positive_count INTEGER NOT NULL,
		last_tick INTEGER NOT NULL,
		PRIMARY KEY (field_id, hash)
	);

	CREATE INDEX IF NOT EXISTS idx_field_contexts_field ON field_contexts(field_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// fieldRow mirrors the fields table for sqlx scanning.
type fieldRow struct {
	ID                string  `db:"id"`
	Version           int     `db:"version"`
	CreatedAt         uint64  `db:"created_at"`
	LastActive        uint64  `db:"last_active"`
	TotalInteractions uint64  `db:"total_interactions"`
	Curiosity         float64 `db:"curiosity"`
	Startle           float64 `db:"startle"`
	Recovery          float64 `db:"recovery"`
}

// contextRow mirrors the field_contexts table for sqlx scanning.
//
// Hash is stored as decimal text rather than INTEGER: SQLite's native
// integer type is signed 64-bit, and roughly half of all uint64 hash
// values don't fit in it without reinterpretation. Text avoids the
// round-trip ambiguity.
type contextRow struct {
	FieldID       string  `db:"field_id"`
	Hash          string  `db:"hash"`
	Coherence     float64 `db:"coherence"`
	Floor         float64 `db:"floor"`
	PositiveCount uint32  `db:"positive_count"`
	LastTick      uint64  `db:"last_tick"`
}

// SaveSnapshot writes a field instance's full snapshot to the database
// (full replace of its context rows).
func (db *DB) SaveSnapshot(id uuid.UUID, snap snapshot.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	idStr := id.String()

	_, err = tx.Exec(`INSERT INTO fields
		(id, version, created_at, last_active, total_interactions, curiosity, startle, recovery)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			version=excluded.version,
			created_at=excluded.created_at,
			last_active=excluded.last_active,
			total_interactions=excluded.total_interactions,
			curiosity=excluded.curiosity,
			startle=excluded.startle,
			recovery=excluded.recovery`,
		idStr, snap.Version, snap.CreatedAt, snap.LastActive, snap.TotalInteractions,
		snap.Personality.Curiosity, snap.Personality.Startle, snap.Personality.Recovery,
	)
	if err != nil {
		return fmt.Errorf("upsert field %s: %w", idStr, err)
	}

	if _, err := tx.Exec("DELETE FROM field_contexts WHERE field_id = ?", idStr); err != nil {
		return fmt.Errorf("clear contexts for %s: %w", idStr, err)
	}

	stmt, err := tx.Preparex(`INSERT INTO field_contexts
		(field_id, hash, coherence, floor, positive_count, last_tick)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range snap.Contexts {
		if _, err := stmt.Exec(idStr, fmt.Sprintf("%d", c.Hash), c.Coherence, c.Floor, c.PositiveCount, c.LastTick); err != nil {
			return fmt.Errorf("insert context %d for %s: %w", c.Hash, idStr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Debug("saved field snapshot", "field_id", idStr, "contexts", len(snap.Contexts))
	return nil
}

// LoadSnapshot reads a field instance's snapshot back from the database.
// Returns an error wrapping sql.ErrNoRows if no such field exists.
func (db *DB) LoadSnapshot(id uuid.UUID) (snapshot.Snapshot, error) {
	idStr := id.String()

	var fr fieldRow
	if err := db.conn.Get(&fr, "SELECT * FROM fields WHERE id = ?", idStr); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("load field %s: %w", idStr, err)
	}

	var rows []contextRow
	if err := db.conn.Select(&rows, "SELECT * FROM field_contexts WHERE field_id = ?", idStr); err != nil {
		return snapshot.Snapshot{}, fmt.Errorf("load contexts for %s: %w", idStr, err)
	}

	contexts := make([]snapshot.Context, 0, len(rows))
	for _, r := range rows {
		var hash uint64
		if _, err := fmt.Sscanf(r.Hash, "%d", &hash); err != nil {
			return snapshot.Snapshot{}, fmt.Errorf("parse hash %q for %s: %w", r.Hash, idStr, err)
		}
		contexts = append(contexts, snapshot.Context{
			Hash:          hash,
			Coherence:     float32(r.Coherence),
			Floor:         float32(r.Floor),
			PositiveCount: r.PositiveCount,
			LastTick:      r.LastTick,
		})
	}

	return snapshot.Snapshot{
		Version:           fr.Version,
		CreatedAt:         fr.CreatedAt,
		LastActive:        fr.LastActive,
		TotalInteractions: fr.TotalInteractions,
		Personality: personality.New().
			WithCuriosity(fr.Curiosity).
			WithStartle(fr.Startle).
			WithRecovery(fr.Recovery),
		Contexts: contexts,
	}, nil
}

// ListFieldIDs returns the UUIDs of every field instance currently stored.
func (db *DB) ListFieldIDs() ([]uuid.UUID, error) {
	var ids []string
	if err := db.conn.Select(&ids, "SELECT id FROM fields ORDER BY last_active DESC"); err != nil {
		return nil, fmt.Errorf("list field ids: %w", err)
	}

	out := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse field id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

// DeleteSnapshot removes a field instance and all its contexts.
func (db *DB) DeleteSnapshot(id uuid.UUID) error {
	idStr := id.String()
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM field_contexts WHERE field_id = ?", idStr); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM fields WHERE id = ?", idStr); err != nil {
		return err
	}
	return tx.Commit()
}
