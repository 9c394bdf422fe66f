package auth

import (
	"context"
	"sync"

	"github.com/templui/gallery/internal/model"
)

const (
	StatusSignedUp  = "Sign-up successful! Check your email."
	StatusSignedIn  = "Logged in!"
	StatusSignedOut = "Logged out."
)

type Registrar interface {
	SignUp(ctx context.Context, email, password string) (*model.User, error)
}

// Form backs the login form. Each action replaces Status with either its
// success message or the error message as returned.
type Form struct {
	svc  Registrar
	gate *Gate

	mu     sync.Mutex
	status string
}

func NewForm(svc Registrar, gate *Gate) *Form {
	return &Form{
		svc:  svc,
		gate: gate,
	}
}

func (f *Form) SignUp(ctx context.Context, email, password string) error {
	_, err := f.svc.SignUp(ctx, email, password)
	f.report(err, StatusSignedUp)
	return err
}

func (f *Form) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	session, err := f.gate.SignIn(ctx, email, password)
	f.report(err, StatusSignedIn)
	return session, err
}

func (f *Form) SignOut(ctx context.Context) error {
	err := f.gate.SignOut(ctx)
	f.report(err, StatusSignedOut)
	return err
}

func (f *Form) Status() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *Form) report(err error, success string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err != nil {
		f.status = err.Error()
		return
	}
	f.status = success
}
