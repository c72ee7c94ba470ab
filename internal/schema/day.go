package schema

// DayRecord holds one bucket per tracked feature for a single calendar date.
//
// Records are created lazily on first access for a date, never eagerly.
// A record fetched through the store accessor always contains every
// currently-defined bucket with its correct empty default, even when the
// stored document predates the bucket.
type DayRecord struct {
	// Habits maps habit id to completion for the day.
	Habits map[string]bool `json:"habits"`

	// Symptoms is the symptom log for the day.
	Symptoms []SymptomEntry `json:"symptoms"`

	// Substances logs substance use for the day.
	Substances []SubstanceEntry `json:"substances"`

	// Mood is the day's mood rating (1-10), nil when not recorded.
	Mood *int `json:"mood"`

	// Reading logs reading sessions for the day.
	Reading []ReadingSession `json:"reading"`

	// Meds logs medication intakes for the day.
	Meds []MedIntake `json:"medications"`

	// IssueLogs holds per-day observations attached to chronic issues.
	IssueLogs []IssueLog `json:"issue_logs"`

	// Notes is freeform text for the day.
	Notes string `json:"notes,omitempty"`
}

// NewDayRecord returns a day record with every bucket at its empty default.
// Each call yields independent containers.
func NewDayRecord() *DayRecord {
	rec := &DayRecord{}
	rec.FillDefaults()
	return rec
}

// FillDefaults back-fills any bucket missing from the record, leaving
// populated buckets untouched. Records loaded from documents that predate a
// bucket's introduction gain it here, not only at load time.
func (r *DayRecord) FillDefaults() {
	if r.Habits == nil {
		r.Habits = make(map[string]bool)
	}
	if r.Symptoms == nil {
		r.Symptoms = []SymptomEntry{}
	}
	if r.Substances == nil {
		r.Substances = []SubstanceEntry{}
	}
	if r.Reading == nil {
		r.Reading = []ReadingSession{}
	}
	if r.Meds == nil {
		r.Meds = []MedIntake{}
	}
	if r.IssueLogs == nil {
		r.IssueLogs = []IssueLog{}
	}
	// Mood stays nil until recorded; null is its empty default.
}

// SymptomEntry is one logged symptom occurrence.
//
// CategoryID may reference a category that no longer exists in settings;
// dangling references are preserved rather than dropped.
type SymptomEntry struct {
	CategoryID string `json:"category_id"`
	Severity   int    `json:"severity"`
	Note       string `json:"note,omitempty"`
}

// SubstanceEntry is one logged substance use.
type SubstanceEntry struct {
	SubstanceID string  `json:"substance_id"`
	Amount      float64 `json:"amount"`
}

// ReadingSession is one logged reading session.
type ReadingSession struct {
	BookID  string `json:"book_id"`
	Minutes int    `json:"minutes"`
	Pages   int    `json:"pages,omitempty"`
}

// MedIntake records whether a medication was taken on the day.
type MedIntake struct {
	MedicationID string `json:"medication_id"`
	Taken        bool   `json:"taken"`
	Time         string `json:"time,omitempty"` // HH:MM
}

// IssueLog is a per-day observation attached to a chronic issue.
type IssueLog struct {
	IssueID  string `json:"issue_id"`
	Severity int    `json:"severity"`
	Note     string `json:"note,omitempty"`
}
