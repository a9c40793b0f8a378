// Package password evaluates candidate passwords against the portal policy.
// The same rule set runs in the web client for interactive feedback; this
// server-side copy is the authoritative check.
package password

import (
	"errors"
	"strings"
	"unicode"
)

// Symbols is the fixed set of accepted special characters.
const Symbols = "!@#$%^&*"

const minLength = 8

var (
	ErrTooShort         = errors.New("password must be at least 8 characters long")
	ErrMissingUppercase = errors.New("password must contain an uppercase letter")
	ErrMissingLowercase = errors.New("password must contain a lowercase letter")
	ErrMissingDigit     = errors.New("password must contain a digit")
	ErrMissingSymbol    = errors.New("password must contain one of !@#$%^&*")
	ErrMismatch         = errors.New("passwords do not match")
)

// Validate checks candidate and confirmation against the policy. Rules are
// evaluated in a fixed order (length, uppercase, lowercase, digit, symbol,
// match) and only the first violated rule is reported, matching the
// per-keystroke feedback loop in the client.
func Validate(candidate, confirmation string) error {
	if len(candidate) < minLength {
		return ErrTooShort
	}
	if !containsFunc(candidate, unicode.IsUpper) {
		return ErrMissingUppercase
	}
	if !containsFunc(candidate, unicode.IsLower) {
		return ErrMissingLowercase
	}
	if !containsFunc(candidate, unicode.IsDigit) {
		return ErrMissingDigit
	}
	if !strings.ContainsAny(candidate, Symbols) {
		return ErrMissingSymbol
	}
	if candidate != confirmation {
		return ErrMismatch
	}
	return nil
}

// IsViolation reports whether err is a policy rule failure as opposed to an
// infrastructure error.
func IsViolation(err error) bool {
	switch {
	case errors.Is(err, ErrTooShort),
		errors.Is(err, ErrMissingUppercase),
		errors.Is(err, ErrMissingLowercase),
		errors.Is(err, ErrMissingDigit),
		errors.Is(err, ErrMissingSymbol),
		errors.Is(err, ErrMismatch):
		return true
	}
	return false
}

func containsFunc(s string, fn func(rune) bool) bool {
	for _, r := range s {
		if fn(r) {
			return true
		}
	}
	return false
}
