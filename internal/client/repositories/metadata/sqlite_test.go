package metadata

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
    key TEXT PRIMARY KEY,
    value BLOB
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyAuthToken, []byte("token")))

	v, err := r.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Equal(t, []byte("token"), v)
}

func TestGet_Absent_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), KeyLastSyncTime)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSet_Overwrites(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyUserID, []byte("u1")))
	require.NoError(t, r.Set(ctx, KeyUserID, []byte("u2")))

	v, err := r.Get(ctx, KeyUserID)
	require.NoError(t, err)
	assert.Equal(t, []byte("u2"), v)
}

func TestDeleteAndClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, KeyAuthToken, []byte("token")))
	require.NoError(t, r.Set(ctx, KeyUserID, []byte("u1")))

	require.NoError(t, r.Delete(ctx, KeyAuthToken))
	v, err := r.Get(ctx, KeyAuthToken)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Clear(ctx))
	v, err = r.Get(ctx, KeyUserID)
	require.NoError(t, err)
	assert.Nil(t, v)
}
