package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mschirtz/daybook/internal/schema"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	return db
}

func intPtr(v int) *int { return &v }

func testDocument() *schema.Document {
	doc := schema.Defaults()
	doc.Days["2026-08-27"] = &schema.DayRecord{
		Habits: map[string]bool{"exercise": true, "read": false},
		Mood:   intPtr(6),
		Symptoms: []schema.SymptomEntry{
			{CategoryID: "headache", Severity: 5},
		},
	}
	doc.Days["2026-08-28"] = &schema.DayRecord{
		Habits: map[string]bool{"exercise": true},
		Mood:   intPtr(8),
		Symptoms: []schema.SymptomEntry{
			{CategoryID: "headache", Severity: 3},
			{CategoryID: "fatigue", Severity: 4},
		},
	}
	doc.Days["2026-08-29"] = &schema.DayRecord{
		Habits: map[string]bool{"exercise": true},
	}
	return doc
}

func TestRebuildAndHabitStreak(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Rebuild(ctx, testDocument()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	streak, err := db.HabitStreak(ctx, "exercise", "2026-08-29")
	if err != nil {
		t.Fatalf("HabitStreak: %v", err)
	}
	if streak != 3 {
		t.Errorf("exercise streak = %d, want 3", streak)
	}

	// read was marked not-done, so no streak.
	streak, err = db.HabitStreak(ctx, "read", "2026-08-29")
	if err != nil {
		t.Fatalf("HabitStreak: %v", err)
	}
	if streak != 0 {
		t.Errorf("read streak = %d, want 0", streak)
	}
}

func TestHabitStreakBrokenByGap(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	doc := schema.Defaults()
	doc.Days["2026-08-25"] = &schema.DayRecord{Habits: map[string]bool{"exercise": true}}
	// 2026-08-26 missing: the streak stops there.
	doc.Days["2026-08-27"] = &schema.DayRecord{Habits: map[string]bool{"exercise": true}}
	doc.Days["2026-08-28"] = &schema.DayRecord{Habits: map[string]bool{"exercise": true}}

	if err := db.Rebuild(ctx, doc); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	streak, err := db.HabitStreak(ctx, "exercise", "2026-08-28")
	if err != nil {
		t.Fatalf("HabitStreak: %v", err)
	}
	if streak != 2 {
		t.Errorf("streak = %d, want 2 (gap on the 26th)", streak)
	}
}

func TestMoodAverage(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Rebuild(ctx, testDocument()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	avg, ok, err := db.MoodAverage(ctx, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("MoodAverage: %v", err)
	}
	if !ok {
		t.Fatal("ok = false with moods recorded")
	}
	if avg != 7 {
		t.Errorf("avg = %v, want 7 (mean of 6 and 8, nulls excluded)", avg)
	}

	_, ok, err = db.MoodAverage(ctx, "2025-01-01", "2025-12-31")
	if err != nil {
		t.Fatalf("MoodAverage: %v", err)
	}
	if ok {
		t.Error("ok = true for a range with no moods")
	}
}

func TestSymptomCounts(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Rebuild(ctx, testDocument()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	counts, err := db.SymptomCounts(ctx, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("SymptomCounts: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("counts = %+v, want 2 categories", counts)
	}
	if counts[0].CategoryID != "headache" || counts[0].Count != 2 {
		t.Errorf("counts[0] = %+v, want headache x2 first", counts[0])
	}
	if counts[1].CategoryID != "fatigue" || counts[1].Count != 1 {
		t.Errorf("counts[1] = %+v", counts[1])
	}
}

func TestRebuildReplacesPreviousState(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if err := db.Rebuild(ctx, testDocument()); err != nil {
		t.Fatalf("first Rebuild: %v", err)
	}

	// Rebuilding from a smaller document leaves no stale rows behind.
	doc := schema.Defaults()
	doc.Days["2026-08-29"] = &schema.DayRecord{Habits: map[string]bool{"exercise": true}}
	if err := db.Rebuild(ctx, doc); err != nil {
		t.Fatalf("second Rebuild: %v", err)
	}

	streak, err := db.HabitStreak(ctx, "exercise", "2026-08-29")
	if err != nil {
		t.Fatalf("HabitStreak: %v", err)
	}
	if streak != 1 {
		t.Errorf("streak = %d, want 1 after rebuild from one day", streak)
	}

	counts, err := db.SymptomCounts(ctx, "2026-01-01", "2026-12-31")
	if err != nil {
		t.Fatalf("SymptomCounts: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("stale symptom rows survived rebuild: %+v", counts)
	}
}
