package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mschirtz/daybook/internal/remote"
	"github.com/mschirtz/daybook/internal/schema"
)

// fakeRemote serves canned content and records writes.
type fakeRemote struct {
	content    []byte // nil means absent
	resolveErr error
	readErr    error
	written    [][]byte
}

func (f *fakeRemote) Resolve(ctx context.Context) (string, bool, error) {
	if f.resolveErr != nil {
		return "", false, f.resolveErr
	}
	if f.content == nil {
		return "", false, nil
	}
	return "obj-1", true, nil
}

func (f *fakeRemote) Read(ctx context.Context) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if f.content == nil {
		return nil, remote.ErrAbsent
	}
	return f.content, nil
}

func (f *fakeRemote) Write(ctx context.Context, content []byte) (string, error) {
	f.written = append(f.written, content)
	return "obj-1", nil
}

func loadedStore(t *testing.T, rem Remote) *Store {
	t.Helper()
	s := New(rem, nil)
	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func TestLoadFreshUser(t *testing.T) {
	rem := &fakeRemote{}
	s := loadedStore(t, rem)

	doc := s.Data()
	if doc.Version != schema.Version {
		t.Errorf("version = %q, want %q", doc.Version, schema.Version)
	}
	if len(doc.Days) != 0 {
		t.Errorf("fresh document has %d days", len(doc.Days))
	}
	if len(rem.written) != 0 {
		t.Error("Load must never write; creation happens on first save")
	}
}

func TestLoadMigratesExistingDocument(t *testing.T) {
	rem := &fakeRemote{content: []byte(`{
		"version": "0.2.0",
		"settings": {"habits": [{"id": "workout", "name": "Workout"}]},
		"days": {"2026-01-05": {"habits": {"workout": true}}}
	}`)}
	s := loadedStore(t, rem)

	if s.Settings().HabitByID("exercise") == nil {
		t.Error("migration did not run on load")
	}
	if !s.Day("2026-01-05").Habits["exercise"] {
		t.Error("day completion not migrated")
	}
}

func TestLoadPropagatesResolveFailure(t *testing.T) {
	wantErr := &remote.ReadError{Status: 401, Err: errors.New("expired")}
	s := New(&fakeRemote{resolveErr: wantErr}, nil)

	err := s.Load(context.Background())
	if err == nil {
		t.Fatal("expected load failure")
	}
	if !remote.IsAuthFailure(err) {
		t.Errorf("err = %v, auth failure must survive wrapping", err)
	}
}

func TestLoadPropagatesReadFailure(t *testing.T) {
	rem := &fakeRemote{content: []byte(`{}`)}
	rem.readErr = &remote.ReadError{Err: errors.New("store down")}

	err := New(rem, nil).Load(context.Background())
	if err == nil {
		t.Fatal("a failed read must not silently start empty")
	}
}

func TestDayLazyCreation(t *testing.T) {
	s := loadedStore(t, &fakeRemote{})

	if n := len(s.Data().Days); n != 0 {
		t.Fatalf("days before access = %d", n)
	}
	s.Day("2026-08-29")
	if n := len(s.Data().Days); n != 1 {
		t.Errorf("days after access = %d, want 1", n)
	}
	if _, ok := s.Data().Days["2026-08-29"]; !ok {
		t.Error("accessed date not present")
	}
}

func TestDayReferenceStability(t *testing.T) {
	s := loadedStore(t, &fakeRemote{})

	a := s.Day("2026-08-29")
	a.Habits["exercise"] = true

	b := s.Day("2026-08-29")
	if a != b {
		t.Error("same date returned different references")
	}
	if !b.Habits["exercise"] {
		t.Error("mutation through one reference not visible through another")
	}

	other := s.Day("2026-08-30")
	if other == a {
		t.Error("distinct dates share a record")
	}
	if other.Habits["exercise"] {
		t.Error("distinct dates share habit state")
	}
}

func TestDayBackFillsOldRecords(t *testing.T) {
	// A stored record that predates several buckets.
	rem := &fakeRemote{content: []byte(`{
		"version": "0.4.0",
		"days": {"2026-01-05": {"mood": 7}}
	}`)}
	s := loadedStore(t, rem)

	day := s.Day("2026-01-05")
	if day.Mood == nil || *day.Mood != 7 {
		t.Errorf("mood = %v, want 7", day.Mood)
	}
	if day.Habits == nil || day.Symptoms == nil || day.IssueLogs == nil {
		t.Errorf("old record not back-filled: %+v", day)
	}
}

func TestSnapshotBeforeLoad(t *testing.T) {
	s := New(&fakeRemote{}, nil)

	if _, err := s.Snapshot(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("err = %v, want ErrNotLoaded", err)
	}
}

func TestSnapshotSerializesCurrentState(t *testing.T) {
	s := loadedStore(t, &fakeRemote{})
	s.Day("2026-08-29").Notes = "snapshot me"

	data, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	var doc schema.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("snapshot is not valid JSON: %v", err)
	}
	if doc.Days["2026-08-29"].Notes != "snapshot me" {
		t.Error("snapshot missing latest mutation")
	}
}

// sessionAPI is an in-memory object store for the end-to-end scenario.
type sessionAPI struct {
	id      string
	content []byte
	creates int
	updates int
}

func (s *sessionAPI) Find(ctx context.Context, name string) (string, bool, error) {
	return s.id, s.id != "", nil
}

func (s *sessionAPI) Get(ctx context.Context, id string) ([]byte, error) {
	return s.content, nil
}

func (s *sessionAPI) Create(ctx context.Context, name string, content []byte) (string, error) {
	s.creates++
	s.id = "obj-1"
	s.content = content
	return s.id, nil
}

func (s *sessionAPI) Update(ctx context.Context, id string, content []byte) error {
	s.updates++
	s.content = content
	return nil
}

func TestFreshUserSession(t *testing.T) {
	api := &sessionAPI{}
	binding := remote.NewBinding(api, "daybook.json")
	s := New(binding, nil)
	ctx := context.Background()

	if err := s.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Data().Days) != 0 {
		t.Fatal("fresh document should have no days")
	}

	day := s.Day("2024-01-01")
	if len(day.Habits) != 0 || day.Mood != nil || len(day.Symptoms) != 0 {
		t.Errorf("fresh day record = %+v, want empty buckets and null mood", day)
	}

	// First save creates; the identity is memoized for the second save.
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	id1, err := binding.Write(ctx, snap)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}

	day.Notes = "changed"
	snap, err = s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	id2, err := binding.Write(ctx, snap)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}

	if id1 != id2 {
		t.Errorf("identity changed between saves: %q vs %q", id1, id2)
	}
	if api.creates != 1 || api.updates != 1 {
		t.Errorf("creates=%d updates=%d, want exactly one of each", api.creates, api.updates)
	}

	var persisted schema.Document
	if err := json.Unmarshal(api.content, &persisted); err != nil {
		t.Fatalf("persisted content not valid JSON: %v", err)
	}
	if persisted.Days["2024-01-01"].Notes != "changed" {
		t.Error("second save missing latest state")
	}
}

func TestSettingsLive(t *testing.T) {
	s := loadedStore(t, &fakeRemote{})

	s.Settings().Habits = append(s.Settings().Habits, schema.Habit{ID: "floss", Name: "Floss"})
	if s.Settings().HabitByID("floss") == nil {
		t.Error("settings mutation not visible on next access")
	}
}
