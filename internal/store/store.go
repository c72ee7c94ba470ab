// Package store owns the canonical in-memory document and provides
// controlled, lazily-initializing access to it.
//
// Exactly one Store exists per session. Feature code receives the Store as
// an injected handle and reaches the document only through its accessors;
// mutations happen in place on the live references the accessors return.
// The document is the single writer's state: the mutex guards the brief
// windows where the store itself touches the document (lazy day creation,
// snapshot serialization), not feature-level mutation, which follows the
// one-logical-writer discipline.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mschirtz/daybook/internal/migrate"
	"github.com/mschirtz/daybook/internal/schema"
)

// ErrNotLoaded is returned by Snapshot when Load has not completed yet.
var ErrNotLoaded = errors.New("document not loaded")

// Remote is the persistence surface the store needs.
// *remote.Binding implements it; tests substitute fakes.
type Remote interface {
	Resolve(ctx context.Context) (id string, ok bool, err error)
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, content []byte) (id string, err error)
}

// Store owns the canonical document instance.
type Store struct {
	remote Remote
	logger *log.Logger
	now    func() time.Time

	mu  sync.Mutex
	doc *schema.Document
}

// New creates a store bound to the given remote document.
// If logger is nil, the default logger is used.
func New(rem Remote, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{
		remote: rem,
		logger: logger,
		now:    time.Now,
	}
}

// Load resolves the remote document and installs it as the canonical
// in-memory instance.
//
// When a remote document exists it is read and run through the migration
// pipeline; read or migration failures propagate so the caller can surface
// an authentication/connectivity error instead of silently starting empty.
// When no remote document exists the schema defaults are installed and no
// remote write happens; the first save creates the object.
func (s *Store) Load(ctx context.Context) error {
	_, ok, err := s.remote.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve document: %w", err)
	}

	if !ok {
		s.logger.Printf("No remote document found, starting from defaults")
		s.mu.Lock()
		s.doc = schema.Defaults()
		s.mu.Unlock()
		return nil
	}

	content, err := s.remote.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	doc, result, err := migrate.Run(content)
	if err != nil {
		return fmt.Errorf("failed to migrate document: %w", err)
	}
	for _, name := range result.Applied {
		s.logger.Printf("Applied migration: %s", name)
	}
	for _, record := range result.Degraded {
		s.logger.Printf("Warning: degraded record during migration: %s", record)
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
	return nil
}

// Day returns the live day record for the given YYYY-MM-DD date, creating
// it with full default buckets on first access and back-filling any buckets
// missing from an already-present record.
//
// Repeated calls for the same date return the same reference, so mutations
// by any caller are visible to all. Records are only ever created for dates
// actually accessed.
func (s *Store) Day(date string) *schema.DayRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.mustDoc()
	if doc.Days == nil {
		doc.Days = make(map[string]*schema.DayRecord)
	}
	rec, ok := doc.Days[date]
	if !ok || rec == nil {
		rec = schema.NewDayRecord()
		doc.Days[date] = rec
		return rec
	}
	// Back-fill on every access, not just at load time: a bucket introduced
	// after this record was stored must appear with its empty default.
	rec.FillDefaults()
	return rec
}

// Settings returns the live settings sub-object for direct mutation.
// Feature-specific validation lives in feature code, not here.
func (s *Store) Settings() *schema.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.mustDoc()
	if doc.Settings == nil {
		doc.Settings = schema.DefaultSettings()
	}
	return doc.Settings
}

// Data returns the whole live document reference.
func (s *Store) Data() *schema.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mustDoc()
}

// Today returns the current local calendar date as YYYY-MM-DD.
func (s *Store) Today() string {
	return schema.DateKey(s.now())
}

// Snapshot serializes the current full document. The document is marshaled
// atomically under the store lock, so a snapshot never contains a torn
// state.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.doc == nil {
		return nil, ErrNotLoaded
	}
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return data, nil
}

// mustDoc returns the canonical document, installing defaults when accessors
// run before Load. Callers must hold s.mu.
func (s *Store) mustDoc() *schema.Document {
	if s.doc == nil {
		s.doc = schema.Defaults()
	}
	return s.doc
}
