package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/gallery/internal/config"
	"github.com/templui/gallery/internal/db"
	"github.com/templui/gallery/internal/repository"
	"github.com/templui/gallery/internal/service"
	"github.com/templui/gallery/internal/storage"
)

// App holds every collaborator, constructed once and passed explicitly to
// the handlers.
type App struct {
	Cfg             *config.Config
	DB              *sqlx.DB
	Storage         storage.Storage
	ImageRepository repository.ImageRepository
	SessionBroker   *service.SessionBroker
	AuthService     *service.AuthService
	EmailService    *service.EmailService
	LegalService    *service.LegalService
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	objects, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	tokenRepository := repository.NewTokenRepository(database)
	imageRepository := repository.NewImageRepository(database)

	// Services
	broker := service.NewSessionBroker()
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		sessionRepository,
		tokenRepository,
		emailService,
		broker,
		service.AuthConfig{
			JWTSecret:         cfg.JWTSecret,
			JWTExpiry:         cfg.JWTExpiry,
			RefreshWindow:     cfg.SessionRefreshWindow,
			ConfirmEmail:      cfg.AuthConfirmEmail,
			ConfirmExpiry:     cfg.TokenEmailConfirmExpiry,
			MinPasswordLength: cfg.AuthMinPasswordLength,
			IsProduction:      cfg.IsProduction(),
		},
	)
	legalService := service.NewLegalService(cfg.ContentPath, cfg.IsDevelopment())

	return &App{
		Cfg:             cfg,
		DB:              database,
		Storage:         objects,
		ImageRepository: imageRepository,
		SessionBroker:   broker,
		AuthService:     authService,
		EmailService:    emailService,
		LegalService:    legalService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
