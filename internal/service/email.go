package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendConfirmationEmail(ctx context.Context, email, token string) error {
	confirmURL := fmt.Sprintf("%s/auth/confirm/%s", s.appURL, token)
	subject, body := confirmEmailTemplate(confirmURL, s.appName)
	return s.send(ctx, "email_confirm", email, subject, body, confirmURL)
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email string) error {
	galleryURL := s.appURL + "/"
	subject, body := welcomeEmailTemplate(galleryURL, s.appName)
	return s.send(ctx, "welcome", email, subject, body, galleryURL)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body, url string) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", to, "subject", subject, "url", url)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", to)
	}
	return err
}
