package errors

import "errors"

var (
	ErrNotFound = errors.New("patient not found")

	ErrInvalidID = errors.New("invalid patient ID format")

	ErrDuplicateProfile = errors.New("patient profile already exists for user")
)
