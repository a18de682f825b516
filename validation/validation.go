package validation

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error lets a non-empty Violations travel as an error value.
func (v Violations) Error() string {
	fields := make([]string, 0, len(v))
	for f, code := range v {
		fields = append(fields, f+": "+code)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func MinLength(field, value string, minLen int, v Violations) {
	if utf8.RuneCountInString(value) < minLen {
		v[field] = "too_short"
	}
}

// MaxBytes bounds the encoded size of value, for inputs like bcrypt
// passwords that are limited in bytes rather than characters.
func MaxBytes(field, value string, maxBytes int, v Violations) {
	if len(value) > maxBytes {
		v[field] = "too_long"
	}
}

// Email records a violation for a present but malformed address.
// Pair with Required when the field is mandatory.
func Email(field, value string, v Violations) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(value, "@") {
		v[field] = "invalid_email"
	}
}

func NonNegativeDecimal(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v[field] = "must_not_be_negative"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v[field] = "invalid_choice"
}
