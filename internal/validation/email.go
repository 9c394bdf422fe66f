package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// RFC 5321 caps a forward path at 254 characters
const maxEmailLength = 254

var (
	ErrEmailRequired = errors.New("email address is required")
	ErrEmailTooLong  = errors.New("email address is too long")
	ErrEmailInvalid  = errors.New("invalid email address format")
)

// NormalizeEmail trims and lowercases raw and checks that what remains is a
// bare address. Display-name forms such as "Ada <ada@example.com>" are
// rejected, so the stored address is exactly what the user typed.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))

	switch {
	case email == "":
		return "", ErrEmailRequired
	case len(email) > maxEmailLength:
		return "", ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return "", ErrEmailInvalid
	}

	return email, nil
}
