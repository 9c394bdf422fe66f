package service

import "fmt"

func confirmEmailTemplate(confirmURL, appName string) (string, string) {
	subject := fmt.Sprintf("Confirm your email for %s", appName)
	body := fmt.Sprintf(`Thanks for signing up! Confirm your email address to start uploading:
%s

This link expires in 24 hours and can only be used once.

If you didn't sign up, you can safely ignore this email.

Best,
The %s Team`, confirmURL, appName)

	return subject, body
}

func welcomeEmailTemplate(galleryURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Your email is confirmed and your account is active.

Sign in and share your first image: %s

Best,
The %s Team`, galleryURL, appName)

	return subject, body
}
