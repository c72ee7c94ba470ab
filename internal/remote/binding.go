package remote

import (
	"context"
	"fmt"
	"sync"
)

// API is the protocol surface Binding needs from the store client.
// *Client implements it; tests substitute fakes.
type API interface {
	Find(ctx context.Context, name string) (id string, ok bool, err error)
	Get(ctx context.Context, id string) ([]byte, error)
	Create(ctx context.Context, name string, content []byte) (string, error)
	Update(ctx context.Context, id string, content []byte) error
}

// identityState tracks what we know about the remote object identity.
// The create-vs-update branch in Write is an explicit decision on this
// state, not a null check.
type identityState int

const (
	// identityUnresolved means the store has not been queried yet.
	identityUnresolved identityState = iota
	// identityAbsent means the store was queried and holds no object; the
	// next write creates one.
	identityAbsent
	// identityBound means the object id is known; writes update in place.
	identityBound
)

// Binding maps the single logical document to exactly one remote object.
//
// The identity, once learned from Resolve or a successful Write, is
// memoized for the rest of the session so a second write can never create a
// second object. Failed calls leave the state unchanged and are safe to
// retry.
type Binding struct {
	api  API
	name string

	mu    sync.Mutex
	state identityState
	id    string
}

// NewBinding creates a binding for the well-known document name.
func NewBinding(api API, name string) *Binding {
	return &Binding{api: api, name: name}
}

// Resolve queries the store for the document by name. It returns the bound
// id and ok=true, or ok=false when no object exists. The answer is memoized;
// only the first call touches the network. Resolve never creates anything.
func (b *Binding) Resolve(ctx context.Context) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolveLocked(ctx)
}

func (b *Binding) resolveLocked(ctx context.Context) (string, bool, error) {
	switch b.state {
	case identityBound:
		return b.id, true, nil
	case identityAbsent:
		return "", false, nil
	}

	id, ok, err := b.api.Find(ctx, b.name)
	if err != nil {
		return "", false, err
	}
	if !ok {
		b.state = identityAbsent
		return "", false, nil
	}
	b.state = identityBound
	b.id = id
	return id, true, nil
}

// Read fetches the full document content. It returns ErrAbsent (wrapped)
// when no remote document exists.
func (b *Binding) Read(ctx context.Context) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id, ok, err := b.resolveLocked(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("read %q: %w", b.name, ErrAbsent)
	}
	return b.api.Get(ctx, id)
}

// Write persists content to the bound object and returns its id.
//
// When no identity is bound yet the object is created and its new id
// memoized; this is the only creation path in the system. When an identity
// is bound the object is overwritten in place. A failed create leaves the
// state absent so the next write retries the create.
func (b *Binding) Write(ctx context.Context, content []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, _, err := b.resolveLocked(ctx); err != nil {
		return "", err
	}

	switch b.state {
	case identityAbsent:
		id, err := b.api.Create(ctx, b.name, content)
		if err != nil {
			return "", err
		}
		b.state = identityBound
		b.id = id
		return id, nil
	case identityBound:
		if err := b.api.Update(ctx, b.id, content); err != nil {
			return "", err
		}
		return b.id, nil
	default:
		// resolveLocked always lands on absent or bound when it succeeds.
		return "", fmt.Errorf("write %q: identity unresolved", b.name)
	}
}

// Bound reports whether an object id is currently memoized, and the id.
func (b *Binding) Bound() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.id, b.state == identityBound
}
