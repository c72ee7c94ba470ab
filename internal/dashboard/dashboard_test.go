package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/mschirtz/daybook/internal/autosave"
	"github.com/mschirtz/daybook/internal/schema"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	server := NewServer(&Config{
		Port:   0, // random available port
		Logger: log.New(os.Stderr, "[test] ", log.LstdFlags),
	})
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func dialWS(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+server.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })

	// Registration happens on the accept goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for server.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	return msg
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(&Config{
		Port:   0,
		Logger: log.New(os.Stderr, "[test] ", log.LstdFlags),
	})

	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	if server.Addr() == "" {
		t.Fatal("Server address is empty")
	}
	if err := server.Stop(); err != nil {
		t.Fatalf("Failed to stop server: %v", err)
	}
}

func TestBroadcastReachesClient(t *testing.T) {
	server := testServer(t)
	conn := dialWS(t, server)

	server.Broadcast(Message{
		Type: MessageTypeDayUpdate,
		Data: json.RawMessage(`{"date":"2026-08-29","section":"mood"}`),
	})

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeDayUpdate {
		t.Errorf("Type = %s, want %s", msg.Type, MessageTypeDayUpdate)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp not filled in")
	}

	var data DayUpdateData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}
	if data.Date != "2026-08-29" || data.Section != "mood" {
		t.Errorf("data = %+v", data)
	}
}

func TestHandlerSaveEvents(t *testing.T) {
	server := testServer(t)
	conn := dialWS(t, server)
	handler := NewHandler(server, nil)

	handler.OnSaveEvent(autosave.Event{Status: autosave.StatusSaving, Time: time.Now()})
	handler.OnSaveEvent(autosave.Event{
		Status: autosave.StatusError,
		Err:    errors.New("store rejected"),
		Time:   time.Now(),
	})

	first := readMessage(t, conn)
	if first.Type != MessageTypeSaveStatus {
		t.Fatalf("Type = %s, want %s", first.Type, MessageTypeSaveStatus)
	}
	var saving SaveStatusData
	if err := json.Unmarshal(first.Data, &saving); err != nil {
		t.Fatal(err)
	}
	if saving.Status != "saving" {
		t.Errorf("Status = %q, want saving", saving.Status)
	}

	second := readMessage(t, conn)
	var failed SaveStatusData
	if err := json.Unmarshal(second.Data, &failed); err != nil {
		t.Fatal(err)
	}
	if failed.Status != "error" || failed.Error == "" {
		t.Errorf("error event = %+v", failed)
	}
}

func TestHandlerStats(t *testing.T) {
	server := testServer(t)
	conn := dialWS(t, server)
	handler := NewHandler(server, nil)

	doc := schema.Defaults()
	doc.Days["2026-08-29"] = schema.NewDayRecord()
	doc.Issues["i1"] = &schema.Issue{ID: "i1", Title: "Back pain", OpenedOn: "2026-01-01"}
	doc.Issues["i2"] = &schema.Issue{ID: "i2", Title: "Resolved", OpenedOn: "2026-01-01", ClosedOn: "2026-02-01"}

	handler.BroadcastStats(doc, time.Now())

	msg := readMessage(t, conn)
	if msg.Type != MessageTypeStats {
		t.Fatalf("Type = %s, want %s", msg.Type, MessageTypeStats)
	}
	var stats StatsData
	if err := json.Unmarshal(msg.Data, &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Days != 1 {
		t.Errorf("Days = %d, want 1", stats.Days)
	}
	if stats.OpenIssues != 1 {
		t.Errorf("OpenIssues = %d, want 1 (closed issues excluded)", stats.OpenIssues)
	}
	if stats.LastSaved == "" {
		t.Error("LastSaved missing")
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := testServer(t)

	resp, err := http.Get("http://" + server.Addr() + "/health")
	if err != nil {
		t.Fatalf("Failed to reach health endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	var body struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestClientDisconnectCleansUp(t *testing.T) {
	server := testServer(t)
	conn := dialWS(t, server)

	if count := server.ClientCount(); count != 1 {
		t.Fatalf("clients = %d, want 1", count)
	}

	_ = conn.Close(websocket.StatusNormalClosure, "")

	deadline := time.Now().Add(2 * time.Second)
	for server.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if count := server.ClientCount(); count != 0 {
		t.Errorf("clients = %d after disconnect, want 0", count)
	}
}
