package domain

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSecretNotFound   = errors.New("secret not found")
	ErrNotAuthenticated = errors.New("not authenticated")
)
