// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuiear/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed-width UTC so stored timestamps compare as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

// Store wraps SQLite access for progress documents and set history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sets (
			id INTEGER PRIMARY KEY,
			run_id TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			question_count INTEGER NOT NULL,
			set_index INTEGER NOT NULL,
			perfect INTEGER NOT NULL,
			good INTEGER NOT NULL,
			miss INTEGER NOT NULL,
			score INTEGER NOT NULL,
			max_combo INTEGER NOT NULL,
			avg_reaction_ms INTEGER NOT NULL,
			accuracy REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sets_ended_at ON sets(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_sets_mode ON sets(mode);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the document stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Set stores a document under key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), formatTime(time.Now()))
	return err
}

// InsertSet stores a completed set.
func (s *Store) InsertSet(ctx context.Context, rec model.SetRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO sets (run_id, ended_at, mode, difficulty, question_count, set_index, perfect, good, miss, score, max_combo, avg_reaction_ms, accuracy)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		formatTime(rec.EndedAt),
		string(rec.Mode),
		string(rec.Difficulty),
		rec.QuestionCount,
		rec.SetIndex,
		rec.PerfectCount,
		rec.GoodCount,
		rec.MissCount,
		rec.Score,
		rec.MaxCombo,
		rec.AvgReactionMs,
		rec.Accuracy,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func filterClauses(cfg model.StatsConfig) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	return strings.Join(clauses, " AND "), args
}

// ListSets returns stored sets filtered by stats config, oldest first.
func (s *Store) ListSets(ctx context.Context, cfg model.StatsConfig) ([]model.SetRecord, error) {
	where, args := filterClauses(cfg)
	query := fmt.Sprintf(`SELECT id, run_id, ended_at, mode, difficulty, question_count, set_index, perfect, good, miss, score, max_combo, avg_reaction_ms, accuracy
		FROM sets
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sets []model.SetRecord
	for rows.Next() {
		var rec model.SetRecord
		var endedAt, mode, difficulty string
		if err := rows.Scan(&rec.ID, &rec.RunID, &endedAt, &mode, &difficulty, &rec.QuestionCount, &rec.SetIndex,
			&rec.PerfectCount, &rec.GoodCount, &rec.MissCount, &rec.Score, &rec.MaxCombo, &rec.AvgReactionMs, &rec.Accuracy); err != nil {
			return nil, err
		}
		parsed, err := parseTime(endedAt)
		if err != nil {
			return nil, err
		}
		rec.EndedAt = parsed
		rec.Mode = model.TrainingMode(mode)
		rec.Difficulty = model.Difficulty(difficulty)
		sets = append(sets, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

// ModeAggregates summarizes stored sets per training mode.
func (s *Store) ModeAggregates(ctx context.Context, cfg model.StatsConfig) ([]model.ModeAggregate, error) {
	where, args := filterClauses(cfg)
	query := fmt.Sprintf(`SELECT mode, COUNT(*), SUM(perfect), SUM(good), SUM(miss), MAX(score), MAX(max_combo),
		SUM(CASE WHEN avg_reaction_ms > 0 THEN avg_reaction_ms ELSE 0 END),
		SUM(CASE WHEN avg_reaction_ms > 0 THEN 1 ELSE 0 END)
		FROM sets
		WHERE %s
		GROUP BY mode
		ORDER BY mode ASC`, where)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.ModeAggregate
	for rows.Next() {
		var agg model.ModeAggregate
		var mode string
		if err := rows.Scan(&mode, &agg.Sets, &agg.PerfectCount, &agg.GoodCount, &agg.MissCount,
			&agg.BestScore, &agg.BestCombo, &agg.ReactionSumMs, &agg.ReactionSets); err != nil {
			return nil, err
		}
		agg.Mode = model.TrainingMode(mode)
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
