// Package models defines the four syncable record kinds shared by the client
// store, the server store, and the wire protocol.
//
// Every record carries a user id, an updated_at timestamp, and (except for
// settings) a deleted flag. updated_at is set to the current time on every
// mutation and is the sole ordering signal for conflict resolution. Deletion
// is always a soft delete: rows persist as tombstones so other devices can
// observe the deletion.
package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsItem is a saved article. IDs are random UUIDs minted on the device
// that creates the record, so two offline devices can never collide.
type NewsItem struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Summary    string    `json:"summary"`
	ContentRaw string    `json:"content_raw"`
	Source     string    `json:"source"`
	Published  time.Time `json:"date"`
	Starred    bool      `json:"starred"`
	UserID     string    `json:"user_id"`
	UpdatedAt  time.Time `json:"updated_at"`
	Deleted    bool      `json:"deleted"`
}

// Concept is a term extracted from a news item.
type Concept struct {
	ID         string    `json:"id"`
	NewsID     string    `json:"news_id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	UserID     string    `json:"user_id"`
	UpdatedAt  time.Time `json:"updated_at"`
	Deleted    bool      `json:"deleted"`
}

// Phrase is a saved snippet of text from a news item, with an optional note.
type Phrase struct {
	ID        string    `json:"id"`
	NewsID    string    `json:"news_id"`
	Text      string    `json:"text"`
	Note      string    `json:"note"`
	UserID    string    `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
	Deleted   bool      `json:"deleted"`
}

// Setting is a synced key/value preference. Identity is (user_id, key) and
// settings are never deleted, only overwritten.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UserID    string    `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewID mints a globally unique record identifier.
func NewID() string {
	return uuid.NewString()
}
