package repository

import "errors"

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrEditConflict      = errors.New("edit conflict")
	ErrDuplicateRecord   = errors.New("duplicate record")
	ErrDuplicateUsername = errors.New("duplicate username")
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateReview   = errors.New("duplicate review")
)
