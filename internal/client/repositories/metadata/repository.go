// Package metadata stores non-synced, per-installation key/value state:
// the auth token, the logged-in user id, and the last_sync_time watermark.
// Nothing in this table ever leaves the device.
package metadata

import "context"

// Well-known metadata keys.
const (
	KeyAuthToken    = "auth_token"
	KeyUserID       = "user_id"
	KeyLastSyncTime = "last_sync_time"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
