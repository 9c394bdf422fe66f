// Package auth holds the per-view authentication state: the Gate that
// mirrors the current session and the Form that drives it.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/templui/gallery/internal/model"
	"github.com/templui/gallery/internal/service"
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Source is the session surface a Gate observes
type Source interface {
	Session(ctx context.Context, token string) (*model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	OnSessionChange(fn func(model.SessionEvent)) (unsubscribe func())
}

// Gate tracks whether its view is signed in. It follows session events for
// its own session, so a sign-out elsewhere flips it to Unauthenticated.
// Callers must Close it to release the subscription.
type Gate struct {
	src         Source
	unsubscribe func()

	mu      sync.Mutex
	state   State
	session *model.Session
	changes chan State
	closed  bool

	// signed-out session IDs seen while NewGate is still resolving its token
	pending map[string]bool
}

// NewGate resolves token and subscribes to session changes. An empty or
// unusable token yields an Unauthenticated gate.
func NewGate(ctx context.Context, src Source, token string) (*Gate, error) {
	g := &Gate{
		src:     src,
		changes: make(chan State, 8),
		pending: map[string]bool{},
	}

	// Subscribe first so a sign-out published during the lookup is recorded
	g.unsubscribe = src.OnSessionChange(g.observe)

	session, err := src.Session(ctx, token)
	if err != nil && !errors.Is(err, service.ErrInvalidSession) {
		g.Close()
		return nil, err
	}

	g.mu.Lock()
	if session != nil && !g.pending[session.ID] && g.state == Unauthenticated {
		g.state = Authenticated
		g.session = session
	}
	g.pending = nil
	g.mu.Unlock()

	return g, nil
}

func (g *Gate) observe(event model.SessionEvent) {
	if event.Session == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.session == nil {
		if g.pending != nil && event.Type == model.SessionSignedOut {
			g.pending[event.Session.ID] = true
		}
		return
	}
	if g.session.ID != event.Session.ID {
		return
	}

	switch event.Type {
	case model.SessionSignedOut:
		g.setLocked(Unauthenticated, nil)
	case model.SessionTokenRefreshed:
		refreshed := *event.Session
		if refreshed.User == nil {
			refreshed.User = g.session.User
		}
		g.session = &refreshed
	}
}

// setLocked updates the state and announces real transitions only
func (g *Gate) setLocked(state State, session *model.Session) {
	changed := g.state != state
	g.state = state
	g.session = session

	if !changed || g.closed {
		return
	}
	select {
	case g.changes <- state:
	default:
	}
}

// SignIn authenticates the gate. On failure the state is left as it was.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	session, err := g.src.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.setLocked(Authenticated, session)
	g.mu.Unlock()

	return session, nil
}

// SignOut ends the gate's session. Without a session it only asks the
// source to sign out, which succeeds as a no-op.
func (g *Gate) SignOut(ctx context.Context) error {
	var sessionID string
	g.mu.Lock()
	if g.session != nil {
		sessionID = g.session.ID
	}
	g.mu.Unlock()

	// The source publishes signed_out synchronously, so g.mu must be free here
	err := g.src.SignOut(ctx, sessionID)
	if err != nil {
		return err
	}

	g.mu.Lock()
	g.setLocked(Unauthenticated, nil)
	g.mu.Unlock()

	return nil
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the current session, nil when Unauthenticated
func (g *Gate) Session() *model.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// User returns the signed-in user, nil when Unauthenticated
func (g *Gate) User() *model.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	return g.session.User
}

// Changes delivers state transitions. It is closed by Close.
func (g *Gate) Changes() <-chan State {
	return g.changes
}

// Close releases the session subscription. It is safe to call more than once.
func (g *Gate) Close() {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	g.closed = true
	close(g.changes)
	g.mu.Unlock()

	g.unsubscribe()
}
