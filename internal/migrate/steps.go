package migrate

import (
	"fmt"
	"sort"

	"github.com/mschirtz/daybook/internal/schema"
)

// splitOngoingIssues (-> 0.2.0) consolidates the legacy "ongoing" concept
// into the unified issue/record split.
//
// Documents before 0.2.0 carried a top-level "ongoing" list of named
// long-running problems, and each day record could hold an "ongoing" list of
// observations referencing them by name. The modern schema keeps a catalog
// of issues keyed by generated id, with per-day observations in the day's
// issue_logs bucket referencing the issue id.
func splitOngoingIssues(doc map[string]any, res *Result) {
	issues := objectField(doc, "issues", res)
	idsByName := make(map[string]string)

	// Seed the name index from issues that already exist (partial prior
	// migrations, or documents hand-edited into the new shape).
	for id, v := range issues {
		if issue, ok := v.(map[string]any); ok {
			if title, ok := issue["title"].(string); ok && title != "" {
				idsByName[title] = id
			}
		}
	}

	ensureIssue := func(name, openedOn string) string {
		if id, ok := idsByName[name]; ok {
			return id
		}
		id := schema.NewID()
		issues[id] = map[string]any{
			"id":        id,
			"title":     name,
			"opened_on": openedOn,
		}
		idsByName[name] = id
		return id
	}

	// Legacy catalog: top-level "ongoing" list of {name, opened_on}.
	if legacy, present := doc["ongoing"]; present {
		if entries, ok := legacy.([]any); ok {
			for i, v := range entries {
				entry, ok := v.(map[string]any)
				if !ok {
					res.degrade(fmt.Sprintf("ongoing[%d]", i), "not an object")
					continue
				}
				name, ok := entry["name"].(string)
				if !ok || name == "" {
					res.degrade(fmt.Sprintf("ongoing[%d]", i), "missing name")
					continue
				}
				openedOn, _ := entry["opened_on"].(string)
				ensureIssue(name, openedOn)
			}
		} else {
			res.degrade("ongoing", "not a list")
		}
		delete(doc, "ongoing")
	}

	// Per-day observations: "ongoing" list of {name, severity, note} becomes
	// issue_logs referencing the catalog. Every day record is visited;
	// malformed entries are skipped individually.
	days := objectField(doc, "days", res)
	for _, date := range sortedKeys(days) {
		day, ok := days[date].(map[string]any)
		if !ok {
			res.degrade("days."+date, "not an object")
			days[date] = map[string]any{}
			continue
		}
		legacy, present := day["ongoing"]
		if !present {
			continue
		}
		delete(day, "ongoing")

		entries, ok := legacy.([]any)
		if !ok {
			res.degrade("days."+date+".ongoing", "not a list")
			continue
		}

		logs, _ := day["issue_logs"].([]any)
		for i, v := range entries {
			entry, ok := v.(map[string]any)
			if !ok {
				res.degrade(fmt.Sprintf("days.%s.ongoing[%d]", date, i), "not an object")
				continue
			}
			name, ok := entry["name"].(string)
			if !ok || name == "" {
				res.degrade(fmt.Sprintf("days.%s.ongoing[%d]", date, i), "missing name")
				continue
			}
			log := map[string]any{
				"issue_id": ensureIssue(name, date),
			}
			if sev, ok := entry["severity"].(float64); ok {
				log["severity"] = sev
			}
			if note, ok := entry["note"].(string); ok && note != "" {
				log["note"] = note
			}
			logs = append(logs, log)
		}
		day["issue_logs"] = logs
	}
}

// renameWorkoutHabit (-> 0.3.0) renames the stock habit id "workout" to
// "exercise" everywhere it is referenced: the settings catalog and every
// day's habit completion map.
func renameWorkoutHabit(doc map[string]any, res *Result) {
	settings := objectField(doc, "settings", res)

	if habits, ok := settings["habits"].([]any); ok {
		hasExercise := false
		for _, v := range habits {
			if habit, ok := v.(map[string]any); ok {
				if id, _ := habit["id"].(string); id == "exercise" {
					hasExercise = true
				}
			}
		}
		out := make([]any, 0, len(habits))
		for i, v := range habits {
			habit, ok := v.(map[string]any)
			if !ok {
				res.degrade(fmt.Sprintf("settings.habits[%d]", i), "not an object")
				continue
			}
			if id, _ := habit["id"].(string); id == "workout" {
				if hasExercise {
					// An exercise habit already exists; drop the duplicate
					// definition rather than collide ids.
					continue
				}
				habit["id"] = "exercise"
			}
			out = append(out, v)
		}
		settings["habits"] = out
	} else if settings["habits"] != nil {
		res.degrade("settings.habits", "not a list")
		settings["habits"] = habitsToAny(schema.DefaultSettings().Habits)
	}

	days := objectField(doc, "days", res)
	for _, date := range sortedKeys(days) {
		day, ok := days[date].(map[string]any)
		if !ok {
			continue // already degraded by an earlier step
		}
		completion, ok := day["habits"].(map[string]any)
		if !ok {
			continue
		}
		if done, present := completion["workout"]; present {
			delete(completion, "workout")
			if _, taken := completion["exercise"]; !taken {
				completion["exercise"] = done
			}
		}
	}
}

// addSleepCategory (-> 0.4.0) adds the sleep symptom category introduced
// with this version to documents that predate it. User-defined categories
// are untouched; the settings merge never resurrects deleted entries, so
// the catalog addition has to happen here.
func addSleepCategory(doc map[string]any, res *Result) {
	settings := objectField(doc, "settings", res)

	categories, ok := settings["symptom_categories"].([]any)
	if !ok {
		if settings["symptom_categories"] != nil {
			res.degrade("settings.symptom_categories", "not a list")
		}
		categories = []any{}
	}
	for _, v := range categories {
		if cat, ok := v.(map[string]any); ok {
			if id, _ := cat["id"].(string); id == "sleep" {
				return
			}
		}
	}
	settings["symptom_categories"] = append(categories, map[string]any{
		"id":   "sleep",
		"name": "Poor sleep",
	})
}

// objectField returns doc[key] as an object, resetting it to an empty object
// (and recording the degradation) when it holds something else. The returned
// map is always the one stored in doc.
func objectField(doc map[string]any, key string, res *Result) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	if doc[key] != nil {
		res.degrade(key, "not an object")
	}
	m := map[string]any{}
	doc[key] = m
	return m
}

// sortedKeys gives migrations a deterministic visit order over map fields.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func habitsToAny(habits []schema.Habit) []any {
	out := make([]any, 0, len(habits))
	for _, h := range habits {
		entry := map[string]any{"id": h.ID, "name": h.Name}
		if h.Archived {
			entry["archived"] = true
		}
		out = append(out, entry)
	}
	return out
}
