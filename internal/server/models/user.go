// Package models defines server-side storage types.
package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}
