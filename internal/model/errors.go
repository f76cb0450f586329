package model

import "errors"

// Store and token failures. Stores return these unwrapped or wrapped with %w;
// handler.writeError classifies them with errors.Is.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
