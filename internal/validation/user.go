// Package validation checks user-supplied identifiers and credentials before they reach storage.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	minPasswordLength = 12
	maxPasswordLength = 128
	maxEmailLength    = 254
	maxUsernameLength = 150
)

var (
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{1,148}[A-Za-z0-9]$`)
	emailRegex    = regexp.MustCompile(`^[^@\s]+@[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?)+$`)
)

// reservedUsernames collide with fixed top-level route segments.
var reservedUsernames = map[string]struct{}{
	"new":     {},
	"follow":  {},
	"group":   {},
	"auth":    {},
	"health":  {},
	"metrics": {},
	"swagger": {},
}

// ValidateUsername enforces length, character set and reserved names.
func ValidateUsername(username string) error {
	if len(username) > maxUsernameLength || !usernameRegex.MatchString(username) {
		return fmt.Errorf("username must be 3-%d characters of letters, digits, '.', '_' or '-' and start and end with a letter or digit", maxUsernameLength)
	}
	if _, reserved := reservedUsernames[strings.ToLower(username)]; reserved {
		return fmt.Errorf("username is reserved")
	}
	return nil
}

// ValidatePassword requires 12-128 characters with upper, lower, digit and special characters.
func ValidatePassword(password string) error {
	length := len([]rune(password))
	if length < minPasswordLength || length > maxPasswordLength {
		return fmt.Errorf("password must be between %d and %d characters", minPasswordLength, maxPasswordLength)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("password must contain upper and lower case letters, a digit and a special character")
	}
	return nil
}

// ValidateEmail accepts a bare address of at most 254 characters.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength || !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
