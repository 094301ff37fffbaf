package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for user and admin inputs.
const (
	maxNameLen    = 100
	maxEmailLen   = 320
	maxMessageLen = 5_000
	minPasswordLen = 8
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// validEmail reports whether s looks like an email address.
func validEmail(s string) bool {
	return s != "" && utf8.RuneCountInString(s) <= maxEmailLen && emailPattern.MatchString(s)
}

// validateUserFields checks user profile inputs and returns the first error
// found, or an empty string.
func validateUserFields(firstName, lastName, email string) string {
	if strings.TrimSpace(firstName) == "" {
		return "First name is required"
	}
	if utf8.RuneCountInString(firstName) > maxNameLen {
		return "First name is too long (max 100 characters)"
	}
	if strings.TrimSpace(lastName) == "" {
		return "Last name is required"
	}
	if utf8.RuneCountInString(lastName) > maxNameLen {
		return "Last name is too long (max 100 characters)"
	}
	if !validEmail(email) {
		return "A valid email address is required"
	}
	return ""
}

// validateCredentials checks admin signup inputs.
func validateCredentials(email, password string) string {
	if !validEmail(email) {
		return "A valid email address is required"
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters"
	}
	return ""
}

// validateMessage checks a user message body.
func validateMessage(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Message content is required"
	}
	if utf8.RuneCountInString(content) > maxMessageLen {
		return "Message is too long (max 5,000 characters)"
	}
	return ""
}
