package auth

import "errors"

var (
	ErrMethodNotSupported = errors.New("auth method not supported")
	ErrFailed             = errors.New("auth failed")
)
