// Package validate holds the field-format checks applied on every create and
// update path. Each check maps a raw string to (ok, message); callers collect
// every failing message before responding instead of failing fast.
package validate

import (
	"regexp"
	"strings"
	"time"
)

const (
	// MaxAmountCents caps a single claim at $1,000,000.
	MaxAmountCents int64 = 1_000_000_00

	maxEmailLength    = 120
	minPasswordLength = 8
	maxPasswordLength = 128
)

var (
	claimNumberRe = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)
	identifierRe  = regexp.MustCompile(`^[A-Za-z0-9]{3,50}$`)
	usernameRe    = regexp.MustCompile(`^[A-Za-z0-9_]{3,80}$`)
	emailRe       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ClaimNumber checks the claim business key format.
func ClaimNumber(s string) (bool, string) {
	if s == "" {
		return false, "Claim number is required"
	}
	if !claimNumberRe.MatchString(s) {
		return false, "Claim number must be 3-50 characters, alphanumeric, hyphens, or underscores only"
	}
	return true, ""
}

// PatientID checks the patient identifier format.
func PatientID(s string) (bool, string) {
	if s == "" {
		return false, "Patient ID is required"
	}
	if !identifierRe.MatchString(s) {
		return false, "Patient ID must be 3-50 alphanumeric characters"
	}
	return true, ""
}

// ProviderID checks the provider identifier format.
func ProviderID(s string) (bool, string) {
	if s == "" {
		return false, "Provider ID is required"
	}
	if !identifierRe.MatchString(s) {
		return false, "Provider ID must be 3-50 alphanumeric characters"
	}
	return true, ""
}

// Amount checks that s parses as a non-negative decimal amount of at most
// $1,000,000. Use ParseCents for the parsed value.
func Amount(s string) (bool, string) {
	cents, err := ParseCents(s)
	if err != nil {
		return false, "Invalid amount format"
	}
	if cents < 0 {
		return false, "Amount cannot be negative"
	}
	if cents > MaxAmountCents {
		return false, "Amount cannot exceed $1,000,000"
	}
	return true, ""
}

// ServiceDate checks that s is a YYYY-MM-DD calendar date no later than now.
func ServiceDate(s string, now time.Time) (bool, string) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return false, "Service date must be a valid date in YYYY-MM-DD format"
	}
	if d.After(now) {
		return false, "Service date cannot be in the future"
	}
	return true, ""
}

// Username checks the account name format.
func Username(s string) (bool, string) {
	if s == "" {
		return false, "Username is required"
	}
	if !usernameRe.MatchString(s) {
		return false, "Username must be 3-80 characters, alphanumeric and underscores only"
	}
	return true, ""
}

// Email checks address shape and length.
func Email(s string) (bool, string) {
	if s == "" {
		return false, "Email is required"
	}
	if len(s) > maxEmailLength {
		return false, "Email too long (max 120 characters)"
	}
	if !emailRe.MatchString(s) {
		return false, "Invalid email format"
	}
	return true, ""
}

// Password enforces length 8-128 with at least one uppercase, lowercase,
// digit and symbol.
func Password(s string) (bool, string) {
	if s == "" {
		return false, "Password is required"
	}
	if len(s) < minPasswordLength {
		return false, "Password must be at least 8 characters long"
	}
	if len(s) > maxPasswordLength {
		return false, "Password too long (max 128 characters)"
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	if !upper {
		return false, "Password must contain at least one uppercase letter"
	}
	if !lower {
		return false, "Password must contain at least one lowercase letter"
	}
	if !digit {
		return false, "Password must contain at least one digit"
	}
	if !symbol {
		return false, "Password must contain at least one special character"
	}
	return true, ""
}

// FieldErrors aggregates human-readable validation messages for one request.
type FieldErrors []string

func (e FieldErrors) Error() string {
	return strings.Join(e, "; ")
}
