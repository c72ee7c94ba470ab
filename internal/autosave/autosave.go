// Package autosave turns a high-frequency stream of "something changed"
// signals from many independent callers into low-frequency, non-overlapping
// remote writes.
//
// One Coordinator instance is injected into every feature component. Each
// component calls Request() after mutating the document; the Coordinator
// owns the debounce window and the single-flight state machine:
//
//	idle -> pending (timer armed) -> in-flight (write running) -> idle
//
// Requests during pending re-arm the window; requests during flight are
// recorded and trigger exactly one follow-up write cycle once the flight
// resolves. The document is serialized at write time, never at request
// time, so a write always carries the freshest state. Failures return the
// coordinator to idle and are reported to listeners; there is no automatic
// retry; the next mutation naturally re-arms the window.
package autosave

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// DefaultDebounce is the delay after the most recent Request before a write
// is issued. A tuning parameter, not a correctness requirement.
const DefaultDebounce = time.Second

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("save coordinator is closed")

// Status is the user-visible save state.
type Status string

const (
	// StatusSaving means a write is in flight.
	StatusSaving Status = "saving"
	// StatusSaved means the last write succeeded.
	StatusSaved Status = "saved"
	// StatusError means the last write failed and will not be retried
	// automatically.
	StatusError Status = "error"
)

// Event notifies listeners of a save state change.
type Event struct {
	Status Status
	// ID is the remote object identity, set on StatusSaved.
	ID string
	// Err is set on StatusError.
	Err  error
	Time time.Time
}

// Snapshotter serializes the full document atomically.
// *store.Store implements it.
type Snapshotter interface {
	Snapshot() ([]byte, error)
}

// Writer persists serialized content and returns the remote object id.
// *remote.Binding implements it.
type Writer interface {
	Write(ctx context.Context, content []byte) (string, error)
}

// Config holds coordinator configuration.
type Config struct {
	// Debounce is the quiet window after the last Request before writing.
	Debounce time.Duration

	// Logger for save activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Debounce: DefaultDebounce,
		Logger:   log.Default(),
	}
}

// Coordinator is the save() entry point used by every feature section.
type Coordinator struct {
	source Snapshotter
	writer Writer
	config *Config

	mu        sync.Mutex
	cond      *sync.Cond
	timer     *time.Timer
	inFlight  bool
	followUp  bool
	closed    bool
	listeners []func(Event)
	wg        sync.WaitGroup
}

// New creates a coordinator persisting snapshots of source through writer.
func New(source Snapshotter, writer Writer, config *Config) *Coordinator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultDebounce
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}
	c := &Coordinator{
		source: source,
		writer: writer,
		config: config,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Subscribe registers a listener for save events. Listeners run on the
// writing goroutine and must not block. Subscribe before the first Request.
func (c *Coordinator) Subscribe(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Request schedules a save. It never blocks the caller.
//
// In idle it arms the debounce timer; in pending it re-arms it; during a
// flight it records that one more write cycle is needed afterwards.
func (c *Coordinator) Request() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.inFlight {
		c.followUp = true
		return
	}
	if c.timer != nil {
		c.timer.Reset(c.config.Debounce)
		return
	}
	c.timer = time.AfterFunc(c.config.Debounce, c.fire)
}

// Flush writes immediately, bypassing the debounce window but never the
// single-flight rule. It blocks until its own write cycle resolves and
// returns that cycle's error. Intended for one-shot CLI commands that must
// persist before exiting.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	for c.inFlight {
		c.cond.Wait()
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
	}
	c.inFlight = true
	c.wg.Add(1)
	c.mu.Unlock()

	return c.drain(ctx)
}

// Close stops the timer and waits for any in-flight write to resolve.
// A pending (not yet fired) save is dropped; callers that need it persisted
// must Flush first.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.cond.Broadcast()
	c.mu.Unlock()

	c.wg.Wait()
}

// fire runs when the debounce window elapses with no further requests.
func (c *Coordinator) fire() {
	c.mu.Lock()
	c.timer = nil
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		// A Flush claimed the flight between timer expiry and now; fold
		// this save into its follow-up cycle.
		c.followUp = true
		c.mu.Unlock()
		return
	}
	c.inFlight = true
	c.wg.Add(1)
	c.mu.Unlock()

	_ = c.drain(context.Background())
}

// drain performs one write cycle plus at most one chained follow-up per
// batch of requests that arrived mid-flight. The caller must have claimed
// the flight. Returns the first cycle's error.
func (c *Coordinator) drain(ctx context.Context) error {
	defer c.wg.Done()

	first := c.writeCycle(ctx)
	for {
		c.mu.Lock()
		again := c.followUp && !c.closed
		c.followUp = false
		if !again {
			c.inFlight = false
			c.cond.Broadcast()
			c.mu.Unlock()
			return first
		}
		c.mu.Unlock()
		c.writeCycle(ctx)
	}
}

// writeCycle serializes the current document and writes it. The snapshot is
// taken here, at write time, so the freshest state is persisted.
func (c *Coordinator) writeCycle(ctx context.Context) error {
	c.notify(Event{Status: StatusSaving, Time: time.Now()})

	content, err := c.source.Snapshot()
	if err == nil {
		var id string
		id, err = c.writer.Write(ctx, content)
		if err == nil {
			c.config.Logger.Printf("Saved document (%d bytes)", len(content))
			c.notify(Event{Status: StatusSaved, ID: id, Time: time.Now()})
			return nil
		}
	}

	c.config.Logger.Printf("Save failed: %v", err)
	c.notify(Event{Status: StatusError, Err: err, Time: time.Now()})
	return err
}

func (c *Coordinator) notify(ev Event) {
	c.mu.Lock()
	listeners := make([]func(Event), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
