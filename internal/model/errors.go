package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Table/view related errors
	ErrEntityNotFound = errors.New("entity type not found")
	ErrViewNotFound   = errors.New("view not found")
	ErrViewImmutable  = errors.New("built-in views cannot be modified")
	ErrNotViewOwner   = errors.New("view is owned by another user")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
