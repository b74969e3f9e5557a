package errors

import "errors"

var (
	ErrTokenNotFound = errors.New("refresh token not found")
)
