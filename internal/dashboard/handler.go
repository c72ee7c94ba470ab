package dashboard

import (
	"encoding/json"
	"log"
	"time"

	"github.com/mschirtz/daybook/internal/autosave"
	"github.com/mschirtz/daybook/internal/schema"
)

// Handler bridges document activity into dashboard broadcasts.
//
// It subscribes to the save coordinator and is called by feature code after
// day-record mutations.
type Handler struct {
	server *Server
	logger *log.Logger
}

// NewHandler creates a handler publishing to server.
func NewHandler(server *Server, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{server: server, logger: logger}
}

// OnSaveEvent implements the autosave listener contract.
func (h *Handler) OnSaveEvent(ev autosave.Event) {
	data := SaveStatusData{Status: string(ev.Status), ObjectID: ev.ID}
	if ev.Err != nil {
		data.Error = ev.Err.Error()
	}
	h.send(MessageTypeSaveStatus, ev.Time, data)
}

// OnDayUpdated reports a mutation of the record for date in the named
// section (habits, mood, symptoms, ...).
func (h *Handler) OnDayUpdated(date, section string) {
	h.send(MessageTypeDayUpdate, time.Now(), DayUpdateData{Date: date, Section: section})
}

// BroadcastStats publishes document statistics.
func (h *Handler) BroadcastStats(doc *schema.Document, lastSaved time.Time) {
	stats := StatsData{
		Days:        len(doc.Days),
		Medications: len(doc.Medications),
		Books:       len(doc.Books),
	}
	for _, issue := range doc.Issues {
		if issue != nil && issue.Open() {
			stats.OpenIssues++
		}
	}
	if !lastSaved.IsZero() {
		stats.LastSaved = lastSaved.Format(time.RFC3339)
	}
	h.send(MessageTypeStats, time.Now(), stats)
}

func (h *Handler) send(typ MessageType, ts time.Time, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("Failed to marshal %s payload: %v", typ, err)
		return
	}
	h.server.Broadcast(Message{Type: typ, Timestamp: ts, Data: data})
}
