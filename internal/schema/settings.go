package schema

// Settings holds user configuration carried inside the document.
type Settings struct {
	Habits            []Habit           `json:"habits"`
	Substances        []Substance       `json:"substances"`
	SymptomCategories []SymptomCategory `json:"symptom_categories"`
	Display           DisplayPrefs      `json:"display"`

	// PINSalt and PINHash gate local UI access only. The remote document is
	// stored in cleartext JSON regardless of PIN state.
	PINSalt string `json:"pin_salt,omitempty"`
	PINHash string `json:"pin_hash,omitempty"`
}

// Habit is a tracked daily habit definition.
type Habit struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Archived bool   `json:"archived,omitempty"`
}

// Substance is a tracked substance definition.
type Substance struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"` // mg, ml, cups, ...
}

// SymptomCategory classifies symptom log entries.
type SymptomCategory struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DisplayPrefs holds presentation preferences.
type DisplayPrefs struct {
	WeekStart string `json:"week_start"` // monday or sunday
	Theme     string `json:"theme"`      // auto, light, dark
}

// HabitByID returns the habit definition for id, or nil when unknown.
func (s *Settings) HabitByID(id string) *Habit {
	for i := range s.Habits {
		if s.Habits[i].ID == id {
			return &s.Habits[i]
		}
	}
	return nil
}

// HasSymptomCategory reports whether a category with the given id exists.
func (s *Settings) HasSymptomCategory(id string) bool {
	for _, c := range s.SymptomCategories {
		if c.ID == id {
			return true
		}
	}
	return false
}
