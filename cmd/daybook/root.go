package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mschirtz/daybook/internal/auth"
	"github.com/mschirtz/daybook/internal/autosave"
	"github.com/mschirtz/daybook/internal/config"
	"github.com/mschirtz/daybook/internal/remote"
	"github.com/mschirtz/daybook/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "daybook",
	Short: "Personal self-tracking with one document in your own cloud storage",
	Long: `daybook tracks habits, mood, symptoms, medications, and reading.

Everything is stored in a single JSON document in a remote file store you
control. The document is created on first save, migrated forward on load,
and written back as a whole; there is no partial persistence and no server
of ours holding your data.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "tracking", Title: "Tracking Commands:"},
		&cobra.Group{ID: "data", Title: "Data Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)
}

// app wires the session: one store, one binding, one save coordinator,
// injected into every command that needs them.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	binding *remote.Binding
	store   *store.Store
	saver   *autosave.Coordinator
}

// newApp loads config, loads the document, and verifies the PIN gate.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.RemoteBaseURL == "" {
		return nil, fmt.Errorf("remote_base_url is not configured (edit %s)", config.Path())
	}

	logger := newLogger(cfg)

	tokens := auth.NewFileTokenSource(cfg.TokenPath)
	client := remote.NewClient(cfg.RemoteBaseURL, tokens, logger)
	binding := remote.NewBinding(client, cfg.DocumentName)

	st := store.New(binding, logger)
	if err := st.Load(ctx); err != nil {
		if remote.IsAuthFailure(err) {
			return nil, fmt.Errorf("not authenticated with the remote store: %w", err)
		}
		return nil, fmt.Errorf("could not load your document: %w", err)
	}

	if err := checkPIN(st); err != nil {
		return nil, err
	}

	saver := autosave.New(st, binding, &autosave.Config{
		Debounce: cfg.Debounce(),
		Logger:   logger,
	})

	return &app{cfg: cfg, logger: logger, binding: binding, store: st, saver: saver}, nil
}

// close releases the coordinator. Commands that mutated state must Flush
// before calling close; a pending debounce is otherwise dropped.
func (a *app) close() {
	a.saver.Close()
}

// flush persists immediately and maps write failures to a user-facing
// message.
func (a *app) flush(ctx context.Context) error {
	if err := a.saver.Flush(ctx); err != nil {
		if remote.IsAuthFailure(err) {
			return fmt.Errorf("save failed, remote store authentication expired: %w", err)
		}
		return fmt.Errorf("save failed: %w", err)
	}
	return nil
}

func newLogger(cfg *config.Config) *log.Logger {
	if cfg.LogPath == "" {
		return log.New(os.Stderr, "[daybook] ", log.LstdFlags)
	}
	return log.New(&lumberjack.Logger{
		Filename:   cfg.LogPath,
		MaxSize:    5, // megabytes
		MaxBackups: 3,
	}, "[daybook] ", log.LstdFlags)
}

// checkPIN enforces the local access gate when a PIN is set. The PIN can be
// supplied via DAYBOOK_PIN for non-interactive use.
func checkPIN(st *store.Store) error {
	settings := st.Settings()
	if settings.PINHash == "" {
		return nil
	}

	pin := os.Getenv("DAYBOOK_PIN")
	if pin == "" {
		var err error
		pin, err = auth.PromptPIN("PIN: ")
		if err != nil {
			return err
		}
	}
	if !auth.VerifyPIN(settings, pin) {
		return errors.New("incorrect PIN")
	}
	return nil
}
