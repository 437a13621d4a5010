package validation

import (
	"fmt"
	"unicode"

	"github.com/shopspring/decimal"

	apperrors "quickloan/internal/errors"
)

// Validator collects per-field messages for hand-written business checks.
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError keeps the first message recorded for a field.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Err converts the collected messages into a validation DomainError.
func (v *Validator) Err() error {
	if v.Valid() {
		return nil
	}
	return apperrors.ValidationFields(v.Errors)
}

// MinLength checks if a string has at least n characters
func (v *Validator) MinLength(field string, value string, n int) {
	v.Check(len(value) >= n, field, fmt.Sprintf("must be at least %d characters long", n))
}

// MaxLength checks if a string has at most n characters
func (v *Validator) MaxLength(field string, value string, n int) {
	v.Check(len(value) <= n, field, fmt.Sprintf("must not be more than %d characters long", n))
}

// IntRange checks min <= value <= max.
func (v *Validator) IntRange(field string, value, min, max int, message string) {
	v.Check(value >= min && value <= max, field, message)
}

// AmountRange checks min <= value <= max, both inclusive.
func (v *Validator) AmountRange(field string, value, min, max decimal.Decimal, message string) {
	v.Check(value.GreaterThanOrEqual(min) && value.LessThanOrEqual(max), field, message)
}

// Struct runs the tag validation on s and merges its field messages.
func (v *Validator) Struct(s interface{}) {
	de, ok := apperrors.As(Struct(s))
	if !ok {
		return
	}
	if len(de.Fields) == 0 {
		v.AddError("input", de.Message)
	}
	for field, msg := range de.Fields {
		v.AddError(field, msg)
	}
}

// Password validates password strength
func (v *Validator) Password(field, password string) {
	v.MinLength(field, password, MinPasswordLength)
	v.MaxLength(field, password, MaxPasswordLength)

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	v.Check(hasLetter, field, "must contain at least one letter")
	v.Check(hasNumber, field, "must contain at least one number")
}
