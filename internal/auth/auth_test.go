package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/gallery/internal/model"
	"github.com/templui/gallery/internal/service"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	broker    *service.SessionBroker
	sessions  map[string]*model.Session
	signInErr error
	signUpErr error
	lookupErr error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		broker:   service.NewSessionBroker(),
		sessions: map[string]*model.Session{},
	}
}

func (f *fakeSource) add(id, email string) *model.Session {
	s := &model.Session{
		ID:     id,
		UserID: "user-" + id,
		Token:  "token-" + id,
		User:   &model.User{ID: "user-" + id, Email: email},
	}
	f.sessions[s.Token] = s
	return s
}

func (f *fakeSource) Session(ctx context.Context, token string) (*model.Session, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if token == "" {
		return nil, nil
	}
	s, ok := f.sessions[token]
	if !ok {
		return nil, service.ErrInvalidSession
	}
	return s, nil
}

func (f *fakeSource) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	s := f.add("signed-in", email)
	f.broker.Publish(model.SessionEvent{Type: model.SessionSignedIn, Session: s})
	return s, nil
}

func (f *fakeSource) SignOut(ctx context.Context, sessionID string) error {
	for token, s := range f.sessions {
		if s.ID == sessionID {
			delete(f.sessions, token)
			f.broker.Publish(model.SessionEvent{Type: model.SessionSignedOut, Session: s})
		}
	}
	return nil
}

func (f *fakeSource) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	return &model.User{ID: "new", Email: email}, nil
}

func (f *fakeSource) OnSessionChange(fn func(model.SessionEvent)) func() {
	return f.broker.Subscribe(fn)
}

func TestNewGate(t *testing.T) {
	src := newFakeSource()
	src.add("s1", "ada@example.com")

	tests := []struct {
		name  string
		token string
		want  State
	}{
		{"no token", "", Unauthenticated},
		{"unknown token", "bogus", Unauthenticated},
		{"valid token", "token-s1", Authenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, err := NewGate(context.Background(), src, tt.token)
			require.NoError(t, err)
			defer gate.Close()

			assert.Equal(t, tt.want, gate.State())
		})
	}

	assert.Zero(t, src.broker.Subscribers())
}

func TestNewGateLookupFailure(t *testing.T) {
	src := newFakeSource()
	src.lookupErr = errors.New("database is locked")

	gate, err := NewGate(context.Background(), src, "token-x")
	require.Error(t, err)
	assert.Nil(t, gate)
	assert.Zero(t, src.broker.Subscribers(), "failed gate releases its subscription")
}

// revokingSource publishes a sign-out for revoke after reading the session
// and before returning it.
type revokingSource struct {
	*fakeSource
	revoke string
}

func (r revokingSource) Session(ctx context.Context, token string) (*model.Session, error) {
	s, err := r.fakeSource.Session(ctx, token)
	if err != nil || s == nil {
		return s, err
	}
	r.broker.Publish(model.SessionEvent{Type: model.SessionSignedOut, Session: &model.Session{ID: r.revoke}})
	return s, nil
}

func TestNewGateSignedOutDuringLookup(t *testing.T) {
	tests := []struct {
		name   string
		revoke string
		want   State
	}{
		{"own session", "s1", Unauthenticated},
		{"other session", "s2", Authenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFakeSource()
			src.add("s1", "ada@example.com")

			gate, err := NewGate(context.Background(), revokingSource{src, tt.revoke}, "token-s1")
			require.NoError(t, err)
			defer gate.Close()

			assert.Equal(t, tt.want, gate.State())
			assert.Equal(t, tt.want == Authenticated, gate.Session() != nil)
		})
	}
}

func TestGateSignOutOwnAction(t *testing.T) {
	src := newFakeSource()
	src.add("s1", "ada@example.com")

	gate, err := NewGate(context.Background(), src, "token-s1")
	require.NoError(t, err)
	defer gate.Close()

	require.NoError(t, gate.SignOut(context.Background()))
	assert.Equal(t, Unauthenticated, gate.State())
	assert.Nil(t, gate.User())
	assert.Equal(t, Unauthenticated, <-gate.Changes())
	assert.Empty(t, gate.Changes(), "one transition, one notification")
}

func TestGateSignOutExternal(t *testing.T) {
	src := newFakeSource()
	session := src.add("s1", "ada@example.com")
	src.add("s2", "bob@example.com")

	gate, err := NewGate(context.Background(), src, "token-s1")
	require.NoError(t, err)
	defer gate.Close()

	// Another session signing out leaves this gate alone
	require.NoError(t, src.SignOut(context.Background(), "s2"))
	assert.Equal(t, Authenticated, gate.State())

	// Another tab signs out the same session
	require.NoError(t, src.SignOut(context.Background(), session.ID))
	assert.Equal(t, Unauthenticated, gate.State())
	assert.Equal(t, Unauthenticated, <-gate.Changes())
}

func TestGateTokenRefresh(t *testing.T) {
	src := newFakeSource()
	session := src.add("s1", "ada@example.com")

	gate, err := NewGate(context.Background(), src, "token-s1")
	require.NoError(t, err)
	defer gate.Close()

	refreshed := *session
	refreshed.Token = "token-s1-refreshed"
	refreshed.User = nil
	src.broker.Publish(model.SessionEvent{Type: model.SessionTokenRefreshed, Session: &refreshed})

	assert.Equal(t, Authenticated, gate.State())
	assert.Equal(t, "token-s1-refreshed", gate.Session().Token)
	assert.Equal(t, "ada@example.com", gate.User().Email)
	assert.Empty(t, gate.Changes())
}

func TestGateClose(t *testing.T) {
	src := newFakeSource()
	session := src.add("s1", "ada@example.com")

	gate, err := NewGate(context.Background(), src, "token-s1")
	require.NoError(t, err)
	assert.Equal(t, 1, src.broker.Subscribers())

	gate.Close()
	gate.Close()
	assert.Zero(t, src.broker.Subscribers())

	_, open := <-gate.Changes()
	assert.False(t, open)

	// Events after Close no longer reach the gate
	src.broker.Publish(model.SessionEvent{Type: model.SessionSignedOut, Session: session})
	assert.Equal(t, Authenticated, gate.State())
}

func TestFormSignInFailure(t *testing.T) {
	src := newFakeSource()
	src.signInErr = errors.New("Invalid credentials")

	gate, err := NewGate(context.Background(), src, "")
	require.NoError(t, err)
	defer gate.Close()

	form := NewForm(src, gate)
	_, err = form.SignIn(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)

	assert.Equal(t, "Invalid credentials", form.Status())
	assert.Equal(t, Unauthenticated, gate.State())
	assert.Empty(t, gate.Changes())
}

func TestFormActions(t *testing.T) {
	src := newFakeSource()

	gate, err := NewGate(context.Background(), src, "")
	require.NoError(t, err)
	defer gate.Close()

	form := NewForm(src, gate)

	require.NoError(t, form.SignUp(context.Background(), "ada@example.com", "correct horse"))
	assert.Equal(t, StatusSignedUp, form.Status())

	session, err := form.SignIn(context.Background(), "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, StatusSignedIn, form.Status())
	assert.Equal(t, Authenticated, gate.State())
	assert.Equal(t, session, gate.Session())

	require.NoError(t, form.SignOut(context.Background()))
	assert.Equal(t, StatusSignedOut, form.Status())
	assert.Equal(t, Unauthenticated, gate.State())

	src.signUpErr = service.ErrUserExists
	require.ErrorIs(t, form.SignUp(context.Background(), "ada@example.com", "correct horse"), service.ErrUserExists)
	assert.Equal(t, "user already registered", form.Status())
}
