// Package common defines shared constants and sentinel errors used across
// client and server layers of AI Daily. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrInternal        = errors.New("internal error")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnauthenticated = errors.New("not logged in")
	ErrUnavailable     = errors.New("server unavailable")

	// Record-level sync rejections. These never abort a batch; the record is
	// skipped and counted as rejected.
	ErrForeignOwner    = errors.New("record belongs to another user")
	ErrMissingNewsItem = errors.New("referenced news item does not exist")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
