package validator

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameLength   = errors.New("username must be 3 to 50 characters")
	ErrInvalidEmail     = errors.New("email is invalid")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
)

// ValidateRegister returns the field that failed with its error.
func ValidateRegister(username, email, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "username", ErrUsernameRequired
	}
	if n := len([]rune(username)); n < minUsernameLen || n > maxUsernameLen {
		return "username", ErrUsernameLength
	}
	if !IsEmail(email) {
		return "email", ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return "password", ErrPasswordTooShort
	}
	return "", nil
}

// IsEmail accepts a bare address only, no display name.
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
