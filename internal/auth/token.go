// Package auth supplies the bearer credential for the remote store and the
// local PIN gate.
//
// Token acquisition and refresh (the OAuth dance) live outside this
// program; an external helper drops the current token into a file and this
// package reads it. The PIN gates local UI access only; it is not an
// encryption layer, the remote document stays cleartext JSON.
package auth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mschirtz/daybook/internal/remote"
)

// FileTokenSource reads a bearer token from a file, re-reading when the
// cached copy goes stale.
type FileTokenSource struct {
	path string

	mu       sync.Mutex
	token    string
	readAt   time.Time
	maxStale time.Duration
}

// NewFileTokenSource creates a token source backed by the given file.
func NewFileTokenSource(path string) *FileTokenSource {
	return &FileTokenSource{
		path:     path,
		maxStale: time.Minute,
	}
}

// Token implements remote.TokenSource. A missing or empty token file is a
// precondition failure surfaced as remote.ErrNoToken.
func (s *FileTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && time.Since(s.readAt) < s.maxStale {
		return s.token, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", remote.ErrNoToken, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: token file %s is empty", remote.ErrNoToken, s.path)
	}

	s.token = token
	s.readAt = time.Now()
	return token, nil
}

// StaticTokenSource returns a TokenSource that always yields token.
// Useful for tests and ad-hoc tooling.
func StaticTokenSource(token string) remote.TokenSource {
	return staticToken(token)
}

type staticToken string

func (t staticToken) Token(ctx context.Context) (string, error) {
	if t == "" {
		return "", remote.ErrNoToken
	}
	return string(t), nil
}
