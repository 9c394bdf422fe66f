package validation

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultMinPasswordLength follows the NIST recommendation
const DefaultMinPasswordLength = 12

// bcrypt ignores everything past 72 bytes
const maxPasswordBytes = 72

var (
	ErrPasswordTooLong = fmt.Errorf("password must not exceed %d bytes", maxPasswordBytes)
	ErrPasswordCommon  = errors.New("password is too common, please choose a stronger one")
)

var weakFragments = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "dragon", "master", "sunshine",
}

// ValidatePassword applies the sign-up password rules. A minLen of zero or
// less falls back to DefaultMinPasswordLength.
func ValidatePassword(password string, minLen int) error {
	if minLen <= 0 {
		minLen = DefaultMinPasswordLength
	}

	switch {
	case len(password) < minLen:
		return fmt.Errorf("password must be at least %d characters", minLen)
	case len(password) > maxPasswordBytes:
		return ErrPasswordTooLong
	}

	lower := strings.ToLower(password)
	for _, fragment := range weakFragments {
		if strings.Contains(lower, fragment) {
			return ErrPasswordCommon
		}
	}
	return nil
}
