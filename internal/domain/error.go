package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Activation code outcomes. Expected business results, not storage faults.
	ErrCodeNotFound      = errors.New("activation code not found")
	ErrCodeAlreadyUsed   = errors.New("activation code already used")
	ErrCodeExpired       = errors.New("activation code expired")
	ErrCodeAlreadyExists = errors.New("activation code already exists")
	ErrInvalidTier       = errors.New("invalid code tier")
	ErrCodeTooShort      = errors.New("activation code too short")

	// Account outcomes.
	ErrUsernameTooShort   = errors.New("username too short")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
