// Package schema defines the canonical shape of the daybook document.
//
// The entire persistent state of the application is one JSON document: a
// version watermark, user settings, a map of day records keyed by calendar
// date, and catalogs of long-lived entities (issues, medications, books).
// The document is loaded once per session, mutated in place by feature code,
// and serialized wholesale on every save.
package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Version is the current schema version. It is written into every saved
// document and gates which structural migrations have already run.
const Version = "0.4.0"

// DateLayout is the canonical calendar-date key format for Document.Days.
const DateLayout = "2006-01-02"

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Document is the single root object holding all user state.
//
// Unknown top-level keys encountered during load are preserved in Extra and
// written back verbatim on save, so data written by a newer release survives
// a round trip through an older one.
type Document struct {
	// Version is the migration watermark (semantic version string).
	Version string

	// Settings holds user configuration: habit and substance catalogs,
	// symptom categories, display preferences, PIN hash.
	Settings *Settings

	// Days maps YYYY-MM-DD date keys to per-day records.
	Days map[string]*DayRecord

	// Issues maps generated ids to chronic-issue records.
	Issues map[string]*Issue

	// Medications maps generated ids to medication definitions.
	Medications map[string]*Medication

	// Books maps generated ids to book records.
	Books map[string]*Book

	// Fitness holds provider-integration state (sync tokens etc.) that is
	// opaque to the document core.
	Fitness json.RawMessage

	// Extra holds top-level keys the current schema does not know about.
	Extra map[string]json.RawMessage
}

// documentFields mirrors Document's known fields for JSON encoding.
// Document itself needs custom marshaling to carry Extra.
type documentFields struct {
	Version     string                 `json:"version"`
	Settings    *Settings              `json:"settings"`
	Days        map[string]*DayRecord  `json:"days"`
	Issues      map[string]*Issue      `json:"issues"`
	Medications map[string]*Medication `json:"medications"`
	Books       map[string]*Book       `json:"books"`
	Fitness     json.RawMessage        `json:"fitness,omitempty"`
}

var knownDocumentKeys = map[string]bool{
	"version":     true,
	"settings":    true,
	"days":        true,
	"issues":      true,
	"medications": true,
	"books":       true,
	"fitness":     true,
}

// UnmarshalJSON decodes the known document fields and captures every
// unknown top-level key into Extra.
func (d *Document) UnmarshalJSON(data []byte) error {
	var fields documentFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("failed to parse document keys: %w", err)
	}
	for key := range all {
		if knownDocumentKeys[key] {
			delete(all, key)
		}
	}
	if len(all) == 0 {
		all = nil
	}

	d.Version = fields.Version
	d.Settings = fields.Settings
	d.Days = fields.Days
	d.Issues = fields.Issues
	d.Medications = fields.Medications
	d.Books = fields.Books
	d.Fitness = fields.Fitness
	d.Extra = all
	return nil
}

// MarshalJSON encodes the known fields and re-emits preserved unknown keys.
func (d *Document) MarshalJSON() ([]byte, error) {
	fields := documentFields{
		Version:     d.Version,
		Settings:    d.Settings,
		Days:        d.Days,
		Issues:      d.Issues,
		Medications: d.Medications,
		Books:       d.Books,
		Fitness:     d.Fitness,
	}

	known, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	if len(d.Extra) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, fmt.Errorf("failed to merge document keys: %w", err)
	}
	for key, raw := range d.Extra {
		if _, exists := merged[key]; !exists {
			merged[key] = raw
		}
	}
	return json.Marshal(merged)
}

// ValidDateKey reports whether s is a well-formed YYYY-MM-DD date key.
func ValidDateKey(s string) bool {
	if !dateKeyPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// DateKey formats t as a calendar-date key in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// NewID returns a generated id for catalog entities (issues, medications,
// books).
func NewID() string {
	return uuid.NewString()
}
