package schema

// Defaults returns the document shape for a user with no prior data.
//
// Every call yields fully independent containers: the result is safe to
// mutate without affecting later calls or other documents. Callers must
// never hand out sub-structures of one Defaults() result to two places that
// expect independent state.
func Defaults() *Document {
	return &Document{
		Version:     Version,
		Settings:    DefaultSettings(),
		Days:        make(map[string]*DayRecord),
		Issues:      make(map[string]*Issue),
		Medications: make(map[string]*Medication),
		Books:       make(map[string]*Book),
	}
}

// DefaultSettings returns the stock settings catalog for a new user.
func DefaultSettings() *Settings {
	return &Settings{
		Habits: []Habit{
			{ID: "exercise", Name: "Exercise"},
			{ID: "meditate", Name: "Meditate"},
			{ID: "read", Name: "Read"},
		},
		Substances: []Substance{
			{ID: "caffeine", Name: "Caffeine", Unit: "mg"},
			{ID: "alcohol", Name: "Alcohol", Unit: "units"},
		},
		SymptomCategories: []SymptomCategory{
			{ID: "headache", Name: "Headache"},
			{ID: "fatigue", Name: "Fatigue"},
			{ID: "sleep", Name: "Poor sleep"},
		},
		Display: DisplayPrefs{
			WeekStart: "monday",
			Theme:     "auto",
		},
	}
}
