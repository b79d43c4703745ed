package security

import (
	"fmt"
	"regexp"

	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
)

// usernamePattern restricts usernames to word characters so they are safe to
// echo back in logs and URLs.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// ValidateUsername checks the character class and length policy for usernames.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username must be 3-32 characters of letters, digits, or underscores")
	}
	return nil
}

// ValidatePassword enforces the configured minimum password length.
func ValidatePassword(password string, cfg config.PasswordConfig) error {
	minLength := cfg.MinLength
	if minLength <= 0 {
		minLength = 8
	}
	if len(password) < minLength {
		return fmt.Errorf("password must be at least %d characters", minLength)
	}
	return nil
}
