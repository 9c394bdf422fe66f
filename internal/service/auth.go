package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/templui/gallery/internal/model"
	"github.com/templui/gallery/internal/repository"
	"github.com/templui/gallery/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const SessionCookieName = "auth_token"

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUserExists         = errors.New("user already registered")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrInvalidToken       = errors.New("invalid or expired confirmation link")
)

type AuthConfig struct {
	JWTSecret         string
	JWTExpiry         time.Duration
	RefreshWindow     time.Duration
	ConfirmEmail      bool
	ConfirmExpiry     time.Duration
	MinPasswordLength int
	IsProduction      bool
}

// AuthService owns users and sessions and announces every session change
// on its broker.
type AuthService struct {
	userRepository    repository.UserRepository
	sessionRepository repository.SessionRepository
	tokenRepository   repository.TokenRepository
	emailService      *EmailService
	broker            *SessionBroker
	cfg               AuthConfig
}

func NewAuthService(
	userRepository repository.UserRepository,
	sessionRepository repository.SessionRepository,
	tokenRepository repository.TokenRepository,
	emailService *EmailService,
	broker *SessionBroker,
	cfg AuthConfig,
) *AuthService {
	return &AuthService{
		userRepository:    userRepository,
		sessionRepository: sessionRepository,
		tokenRepository:   tokenRepository,
		emailService:      emailService,
		broker:            broker,
		cfg:               cfg,
	}
}

// SignUp registers a user. With email confirmation enabled the account
// cannot sign in until the emailed link is followed.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	email, err := validation.NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidEmail
	}

	err = validation.ValidatePassword(password, s.cfg.MinPasswordLength)
	if err != nil {
		return nil, err
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	if !s.cfg.ConfirmEmail {
		user.EmailConfirmedAt = &now
	}

	err = s.userRepository.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.cfg.ConfirmEmail {
		err = s.sendConfirmation(ctx, user)
		if err != nil {
			return nil, fmt.Errorf("error sending confirmation email: %w", err)
		}
	}

	slog.Info("user signed up", "user_id", user.ID, "email", user.Email, "confirm_email", s.cfg.ConfirmEmail)
	return user, nil
}

func (s *AuthService) sendConfirmation(ctx context.Context, user *model.User) error {
	err := s.tokenRepository.DeleteByUserAndType(ctx, user.ID, model.TokenTypeEmailConfirm)
	if err != nil {
		slog.Warn("failed to delete old confirmation tokens", "error", err, "user_id", user.ID)
	}

	value, err := s.GenerateToken()
	if err != nil {
		return err
	}

	err = s.tokenRepository.Create(ctx, &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeEmailConfirm,
		Token:     value,
		ExpiresAt: time.Now().UTC().Add(s.cfg.ConfirmExpiry),
	})
	if err != nil {
		return fmt.Errorf("failed to create token: %w", err)
	}

	return s.emailService.SendConfirmationEmail(ctx, user.Email, value)
}

// ConfirmEmail consumes a confirmation token and marks the address confirmed
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (*model.User, error) {
	t, err := s.tokenRepository.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if t.Type != model.TokenTypeEmailConfirm {
		return nil, ErrInvalidToken
	}

	err = s.userRepository.ConfirmEmail(ctx, t.UserID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to confirm email: %w", err)
	}

	user, err := s.userRepository.ByID(ctx, t.UserID)
	if err != nil {
		return nil, err
	}

	err = s.emailService.SendWelcomeEmail(ctx, user.Email)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
	}

	slog.Info("email confirmed", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// SignIn checks the credentials and starts a new session
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email, err := validation.NormalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepository.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	err = s.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}

	session := &model.Session{
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.JWTExpiry),
	}
	err = s.sessionRepository.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Token, err = s.GenerateJWT(session, user)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	user.PasswordHash = ""
	session.User = user

	slog.Info("user signed in", "user_id", user.ID, "session_id", session.ID)
	s.broker.Publish(model.SessionEvent{Type: model.SessionSignedIn, Session: session})
	return session, nil
}

// SignOut revokes the session. Signing out a missing or already revoked
// session succeeds without publishing anything.
func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, err := s.sessionRepository.Revoke(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	slog.Info("user signed out", "user_id", session.UserID, "session_id", session.ID)
	s.broker.Publish(model.SessionEvent{Type: model.SessionSignedOut, Session: session})
	return nil
}

// Session resolves a session token. An empty token yields no session and
// no error; anything unusable yields ErrInvalidSession.
func (s *AuthService) Session(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}

	claims, err := s.VerifyJWT(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	sessionID, _ := claims["sid"].(string)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	session, err := s.sessionRepository.Active(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	user, err := s.userRepository.ByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Never carry the hash past the service
	user.PasswordHash = ""
	session.User = user
	session.Token = token
	return session, nil
}

// NeedsRefresh reports whether the session is close enough to expiry to be extended
func (s *AuthService) NeedsRefresh(session *model.Session) bool {
	return session != nil && time.Until(session.ExpiresAt) < s.cfg.RefreshWindow
}

// Refresh extends the session and issues a new token for it
func (s *AuthService) Refresh(ctx context.Context, session *model.Session) (*model.Session, error) {
	expiresAt := time.Now().UTC().Add(s.cfg.JWTExpiry)

	err := s.sessionRepository.Extend(ctx, session.ID, expiresAt)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to extend session: %w", err)
	}

	refreshed := *session
	refreshed.ExpiresAt = expiresAt
	refreshed.Token, err = s.GenerateJWT(&refreshed, session.User)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}

	slog.Debug("session refreshed", "session_id", session.ID, "expires_at", expiresAt)
	s.broker.Publish(model.SessionEvent{Type: model.SessionTokenRefreshed, Session: &refreshed})
	return &refreshed, nil
}

// OnSessionChange subscribes fn to every session event
func (s *AuthService) OnSessionChange(fn func(model.SessionEvent)) (unsubscribe func()) {
	return s.broker.Subscribe(fn)
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

func (s *AuthService) GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func (s *AuthService) GenerateJWT(session *model.Session, user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sid":     session.ID,
		"user_id": session.UserID,
		"exp":     session.ExpiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}
	if user != nil {
		claims["email"] = user.Email
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *AuthService) VerifyJWT(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, session *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.Token,
		Expires:  session.ExpiresAt,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Expires:  time.Unix(0, 0),
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
}
