package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrFailedValidation   = errors.New("failed validation")
	ErrRecordNotFound     = errors.New("record not found")
	ErrEditConflict       = errors.New("edit conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAccessToken = errors.New("invalid access token")
	ErrNotPermitted       = errors.New("not permitted")
)

// validationError carries the full field-to-message map of a failed
// validation so the transport layer can render it verbatim.
type validationError struct {
	Fields map[string]string
}

func (e validationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%q %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrFailedValidation) match any validation error.
func (e validationError) Is(target error) bool {
	return target == ErrFailedValidation
}

// failedValidation wraps a validator error map in a validationError.
func (s *service) failedValidation(errorMap map[string]string) error {
	return validationError{Fields: errorMap}
}

// FieldErrors extracts the field map from a validation error. It returns
// false if err does not carry one.
func FieldErrors(err error) (map[string]string, bool) {
	var vErr validationError
	if errors.As(err, &vErr) {
		return vErr.Fields, true
	}
	return nil, false
}
