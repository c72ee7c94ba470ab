// Package cache provides a local SQLite mirror of the document's day
// records for fast queries.
//
// The JSON document remains the single source of truth; the mirror is
// rebuilt from it wholesale and only ever read for derived views (streaks,
// averages). Losing the mirror loses nothing, it is recomputed on the next
// rebuild.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/mschirtz/daybook/internal/schema"
)

// DB wraps the mirror database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens the mirror database at path.
// The caller must Close when done.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if _, err := db.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close cache database: %w", err)
	}
	db.conn = nil
	return nil
}

// InitSchema creates the mirror tables if they don't exist. Idempotent.
func (db *DB) InitSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS days (
		date TEXT PRIMARY KEY,
		mood INTEGER,
		reading_minutes INTEGER NOT NULL DEFAULT 0,
		symptom_count INTEGER NOT NULL DEFAULT 0,
		has_notes INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS habit_marks (
		date TEXT NOT NULL,
		habit_id TEXT NOT NULL,
		done INTEGER NOT NULL,
		PRIMARY KEY (date, habit_id)
	);

	CREATE TABLE IF NOT EXISTS symptom_marks (
		date TEXT NOT NULL,
		category_id TEXT NOT NULL,
		severity INTEGER NOT NULL,
		note TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_habit_marks_habit ON habit_marks(habit_id, date);
	CREATE INDEX IF NOT EXISTS idx_symptom_marks_cat ON symptom_marks(category_id, date);
	CREATE INDEX IF NOT EXISTS idx_days_mood ON days(mood);
	`

	if _, err := db.conn.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// Rebuild replaces the whole mirror with the document's current day
// records. All-or-nothing: a failed rebuild leaves the previous mirror.
func (db *DB) Rebuild(ctx context.Context, doc *schema.Document) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin rebuild: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"days", "habit_marks", "symptom_marks"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for date, day := range doc.Days {
		if day == nil {
			continue
		}
		var mood any
		if day.Mood != nil {
			mood = *day.Mood
		}
		minutes := 0
		for _, s := range day.Reading {
			minutes += s.Minutes
		}
		hasNotes := 0
		if day.Notes != "" {
			hasNotes = 1
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO days (date, mood, reading_minutes, symptom_count, has_notes)
			 VALUES (?, ?, ?, ?, ?)`,
			date, mood, minutes, len(day.Symptoms), hasNotes,
		); err != nil {
			return fmt.Errorf("failed to mirror day %s: %w", date, err)
		}

		for habitID, done := range day.Habits {
			doneInt := 0
			if done {
				doneInt = 1
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO habit_marks (date, habit_id, done) VALUES (?, ?, ?)`,
				date, habitID, doneInt,
			); err != nil {
				return fmt.Errorf("failed to mirror habits for %s: %w", date, err)
			}
		}

		for _, sym := range day.Symptoms {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO symptom_marks (date, category_id, severity, note) VALUES (?, ?, ?, ?)`,
				date, sym.CategoryID, sym.Severity, sym.Note,
			); err != nil {
				return fmt.Errorf("failed to mirror symptoms for %s: %w", date, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rebuild: %w", err)
	}
	return nil
}

// HabitStreak returns the number of consecutive days the habit was done,
// counting backwards from asOf (inclusive).
func (db *DB) HabitStreak(ctx context.Context, habitID, asOf string) (int, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT date FROM habit_marks WHERE habit_id = ? AND done = 1 AND date <= ? ORDER BY date DESC`,
		habitID, asOf,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to query habit %s: %w", habitID, err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return 0, fmt.Errorf("failed to scan habit row: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to read habit rows: %w", err)
	}

	cursor, err := time.Parse(schema.DateLayout, asOf)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", asOf, err)
	}

	streak := 0
	for _, d := range dates {
		if d != schema.DateKey(cursor) {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak, nil
}

// MoodAverage returns the mean mood over days with a recorded mood in the
// inclusive date range. ok is false when no moods were recorded.
func (db *DB) MoodAverage(ctx context.Context, from, to string) (avg float64, ok bool, err error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT AVG(mood), COUNT(mood) FROM days WHERE mood IS NOT NULL AND date BETWEEN ? AND ?`,
		from, to,
	)
	var nullAvg sql.NullFloat64
	var count int
	if err := row.Scan(&nullAvg, &count); err != nil {
		return 0, false, fmt.Errorf("failed to query mood average: %w", err)
	}
	if count == 0 || !nullAvg.Valid {
		return 0, false, nil
	}
	return nullAvg.Float64, true, nil
}

// SymptomCounts returns per-category occurrence counts over the inclusive
// date range, sorted by descending count.
func (db *DB) SymptomCounts(ctx context.Context, from, to string) ([]SymptomCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT category_id, COUNT(*) FROM symptom_marks WHERE date BETWEEN ? AND ? GROUP BY category_id`,
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query symptom counts: %w", err)
	}
	defer rows.Close()

	var counts []SymptomCount
	for rows.Next() {
		var c SymptomCount
		if err := rows.Scan(&c.CategoryID, &c.Count); err != nil {
			return nil, fmt.Errorf("failed to scan symptom count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read symptom counts: %w", err)
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].CategoryID < counts[j].CategoryID
	})
	return counts, nil
}

// SymptomCount is one category's occurrence count.
type SymptomCount struct {
	CategoryID string
	Count      int
}
