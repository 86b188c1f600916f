// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxUsernameLength = 64
	// bcrypt ignores input beyond 72 bytes and x/crypto rejects it outright.
	maxPasswordBytes = 72
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidatePassword checks that a password is present and hashable.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", maxPasswordBytes)
	}
	return nil
}

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}

	if len(username) > maxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", maxUsernameLength)
	}

	// Usernames appear in paths such as /user/<name>.
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, dots, underscores, and hyphens")
	}
	// "." and ".." collapse out of /user/<name> under path cleaning.
	if strings.Trim(username, ".") == "" {
		return fmt.Errorf("username must contain a letter, number, underscore, or hyphen")
	}

	return nil
}
