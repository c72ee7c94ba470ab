// Package migrate brings a previously-persisted document up to the current
// schema without losing user data.
//
// The pipeline is merge-then-migrate: MergeDefaults fills structural gaps
// from the schema defaults, then versioned structural steps run in a fixed
// order, each gated by the version watermark so it never reapplies. The
// whole pipeline is idempotent.
//
// A malformed individual record degrades to a safe default for that one
// field and is reported in Result.Degraded; one corrupt record never blocks
// migration of the rest of the document. The watermark is stamped
// best-effort even when records were degraded, so callers should log the
// degraded list rather than expect a retry to pick them up.
package migrate

import (
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/mod/semver"

	"github.com/mschirtz/daybook/internal/schema"
)

// ErrMalformed is returned when the loaded bytes are not a JSON object at
// the top level. Anything less structured than that cannot be migrated.
var ErrMalformed = errors.New("document is not a JSON object")

// Result reports what the migration pipeline did.
type Result struct {
	// FromVersion is the watermark the document arrived with ("" when the
	// document predates versioning).
	FromVersion string

	// Applied lists the names of structural steps that ran.
	Applied []string

	// Degraded lists records that were structurally invalid and were reset
	// to a safe default, as "path: reason" strings.
	Degraded []string
}

func (r *Result) degrade(path, reason string) {
	r.Degraded = append(r.Degraded, fmt.Sprintf("%s: %s", path, reason))
}

// step is one versioned structural migration. Steps run in registration
// order; each is skipped when the document watermark is already at or above
// its target version.
type step struct {
	// version is the watermark this step brings the document to.
	version string
	name    string
	apply   func(doc map[string]any, res *Result)
}

// Registration order is load-bearing: steps assume every earlier step has
// already run.
var steps = []step{
	{"0.2.0", "split ongoing entries into issues and issue logs", splitOngoingIssues},
	{"0.3.0", "rename workout habit to exercise", renameWorkoutHabit},
	{"0.4.0", "add sleep symptom category", addSleepCategory},
}

// Run executes the full pipeline on raw document bytes: merge defaults,
// apply pending structural steps, stamp the current watermark, and decode
// into the typed document.
func Run(data []byte) (*schema.Document, *Result, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if raw == nil {
		return nil, nil, ErrMalformed
	}

	res := &Result{}
	res.FromVersion, _ = raw["version"].(string)

	merged := MergeDefaults(raw)

	watermark := res.FromVersion
	for _, s := range steps {
		if versionAtLeast(watermark, s.version) {
			continue
		}
		s.apply(merged, res)
		merged["version"] = s.version
		watermark = s.version
		res.Applied = append(res.Applied, s.name)
	}
	merged["version"] = schema.Version

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-encode migrated document: %w", err)
	}
	var doc schema.Document
	if err := json.Unmarshal(out, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to decode migrated document: %w", err)
	}
	return &doc, res, nil
}

// MergeDefaults fills gaps in a loaded document from the schema defaults.
//
// Top-level keys present in loaded take precedence wholesale; absent keys
// are filled from defaults. The settings object is merged one level deeper,
// key by key. Arrays and per-entity maps inside loaded are kept as-is, never
// deep merged, so entries the user deleted are not resurrected. Keys unknown
// to the defaults pass through untouched.
func MergeDefaults(loaded map[string]any) map[string]any {
	defaults := docToMap(schema.Defaults())

	out := make(map[string]any, len(loaded)+len(defaults))
	for key, value := range loaded {
		out[key] = value
	}
	for key, value := range defaults {
		if _, present := out[key]; !present {
			out[key] = value
		}
	}

	defSettings, _ := defaults["settings"].(map[string]any)
	switch loadedSettings := loaded["settings"].(type) {
	case map[string]any:
		mergedSettings := make(map[string]any, len(defSettings))
		for key, value := range defSettings {
			mergedSettings[key] = value
		}
		for key, value := range loadedSettings {
			mergedSettings[key] = value
		}
		out["settings"] = mergedSettings
	case nil:
		out["settings"] = defSettings
	default:
		// settings was present but not an object; fall back wholesale.
		out["settings"] = defSettings
	}

	return out
}

// versionAtLeast reports whether watermark >= target. An empty or
// unparsable watermark counts as older than everything.
func versionAtLeast(watermark, target string) bool {
	if watermark == "" || !semver.IsValid("v"+watermark) {
		return false
	}
	return semver.Compare("v"+watermark, "v"+target) >= 0
}

// docToMap round-trips a typed document into the generic map form the
// pipeline operates on.
func docToMap(doc *schema.Document) map[string]any {
	data, err := json.Marshal(doc)
	if err != nil {
		// Defaults are produced by our own code; failing to marshal them is
		// a programming error.
		panic(fmt.Sprintf("migrate: cannot marshal defaults: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("migrate: cannot decode defaults: %v", err))
	}
	return m
}
