// Package validator implements a simple map-based validator for request data.
// Checks accumulate field-level error messages; the first message recorded for
// a field wins.
package validator

import "regexp"

var (
	// EmailRX is the regular expression recommended by the W3C and Web Hypertext
	// Application Technology Working Group for validating email addresses.
	EmailRX = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+\\/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

	// SlugRX restricts category and genre slugs to letters, digits, hyphens
	// and underscores.
	SlugRX = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

	// UsernameRX restricts usernames to letters, digits and the . @ + - _
	// punctuation set.
	UsernameRX = regexp.MustCompile(`^[a-zA-Z0-9.@+_-]+$`)
)

// Validator holds a map of validation error messages keyed by field name.
type Validator struct {
	Errors map[string]string
}

// New creates a new Validator instance with an empty errors map.
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid returns true if the errors map is empty.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error message to the map, so long as no entry already
// exists for the given field.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error message to the map only if a validation check is not ok.
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Matches returns true if a string value matches a specific regexp pattern.
func Matches(value string, rx *regexp.Regexp) bool {
	return rx.MatchString(value)
}

// PermittedValue returns true if a value is in a list of permitted values.
func PermittedValue[T comparable](value T, permittedValues ...T) bool {
	for i := range permittedValues {
		if value == permittedValues[i] {
			return true
		}
	}
	return false
}

// Unique returns true if all values in a slice are unique.
func Unique[T comparable](values []T) bool {
	uniqueValues := make(map[T]bool)
	for _, value := range values {
		uniqueValues[value] = true
	}
	return len(values) == len(uniqueValues)
}
