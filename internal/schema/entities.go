package schema

// Issue is a chronic, ongoing issue tracked across days. Per-day
// observations live in DayRecord.IssueLogs and reference the issue by id.
type Issue struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	OpenedOn string `json:"opened_on"` // YYYY-MM-DD
	ClosedOn string `json:"closed_on,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Open reports whether the issue is still ongoing.
func (i *Issue) Open() bool {
	return i.ClosedOn == ""
}

// Medication is a medication definition.
type Medication struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Dose     string `json:"dose,omitempty"`
	Schedule string `json:"schedule,omitempty"` // freeform: "morning", "2x daily"
	Active   bool   `json:"active"`
}

// BookStatus enumerates reading states for a book record.
type BookStatus string

const (
	BookStatusWantToRead BookStatus = "want_to_read"
	BookStatusReading    BookStatus = "reading"
	BookStatusFinished   BookStatus = "finished"
	BookStatusAbandoned  BookStatus = "abandoned"
)

// Book is a book record in the reading tracker.
type Book struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Author   string     `json:"author,omitempty"`
	Status   BookStatus `json:"status"`
	AddedOn  string     `json:"added_on"` // YYYY-MM-DD
	Finished string     `json:"finished_on,omitempty"`
}
