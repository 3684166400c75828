// Package validator provides input validation and sanitization for voicemail
// intake over HTTP and SMTP.
package validator

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/welldanyogia/webrana-voicemail-backend/internal/models"
)

// Validation errors
var (
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidDomain   = errors.New("invalid domain format")
	ErrInvalidDateTime = errors.New("invalid date/time")
	ErrInputTooLong    = errors.New("input exceeds maximum length")
	ErrEmptyInput      = errors.New("input cannot be empty")
)

// Field length limits
const (
	MaxNameLength    = 100
	MaxPhoneLength   = 32
	MaxMessageLength = 5000
)

// Domain regex: allows lowercase alphanumeric, hyphens, and dots
// Must start and end with alphanumeric, labels max 63 chars
var domainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?(\.[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?)*$`)

// Accepted date/time layouts, tried in order. Layouts without a zone are read as UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// FieldError names the input field that failed validation
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidateEmail validates email address format according to RFC 5322.
// Returns nil if valid, or an appropriate error.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	if email == "" {
		return ErrEmptyInput
	}

	// RFC 5321 specifies max email length of 254 characters
	if utf8.RuneCountInString(email) > 254 {
		return ErrInputTooLong
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmail
	}

	return nil
}

// ValidateDomain validates domain name format against DNS standards.
// Returns nil if valid, or an appropriate error.
func ValidateDomain(domain string) error {
	domain = strings.TrimSpace(strings.ToLower(domain))

	if domain == "" {
		return ErrEmptyInput
	}

	// RFC 1035 specifies max domain length of 253 characters
	if len(domain) > 253 {
		return ErrInputTooLong
	}

	if !domainRegex.MatchString(domain) {
		return ErrInvalidDomain
	}

	return nil
}

// ParseDateTime accepts RFC 3339 timestamps and the HTML datetime-local
// forms 2006-01-02T15:04 and 2006-01-02T15:04:05.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyInput
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDateTime
}

// ValidateVoicemailInput sanitizes every text field and checks that all
// required fields are present. The sanitized input is returned.
func ValidateVoicemailInput(input models.VoicemailInput) (models.VoicemailInput, error) {
	input.FromName = SanitizeString(input.FromName, 0)
	input.ToName = SanitizeString(input.ToName, 0)
	input.PhoneNumber = SanitizeString(input.PhoneNumber, 0)
	input.MessageContent = SanitizeMultiline(input.MessageContent, 0)
	input.TakenBy = SanitizeString(input.TakenBy, 0)

	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"from_name", input.FromName, MaxNameLength},
		{"to_name", input.ToName, MaxNameLength},
		{"phone_number", input.PhoneNumber, MaxPhoneLength},
		{"message_content", input.MessageContent, MaxMessageLength},
		{"taken_by", input.TakenBy, MaxNameLength},
	}
	for _, f := range fields {
		if f.value == "" {
			return input, &FieldError{Field: f.name, Err: ErrEmptyInput}
		}
		if utf8.RuneCountInString(f.value) > f.max {
			return input, &FieldError{Field: f.name, Err: ErrInputTooLong}
		}
	}

	if input.DateTime.IsZero() {
		return input, &FieldError{Field: "date_time", Err: ErrEmptyInput}
	}
	input.DateTime = input.DateTime.UTC()

	return input, nil
}

// SanitizeString removes potentially dangerous characters and enforces length limits.
// Removes control characters and trims whitespace.
func SanitizeString(input string, maxLength int) string {
	// Remove control characters (ASCII 0-31 and 127)
	input = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	return truncate(strings.TrimSpace(input), maxLength)
}

// SanitizeMultiline is SanitizeString for free text; it keeps newlines and tabs.
func SanitizeMultiline(input string, maxLength int) string {
	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, input)

	return truncate(strings.TrimSpace(input), maxLength)
}

func truncate(input string, maxLength int) string {
	if maxLength > 0 && utf8.RuneCountInString(input) > maxLength {
		runes := []rune(input)
		input = string(runes[:maxLength])
	}
	return input
}
