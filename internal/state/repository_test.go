package state

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE kv_state (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at INTEGER NOT NULL);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	return db
}

func TestGet_Missing(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	var cookie string
	found, err := repo.Get("zentao-cookie:bob", &cookie)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, cookie)
}

func TestSetGet_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)

	require.NoError(t, repo.Set("zentao-cookie:bob", "zentaosid=abc; lang=zh-cn"))

	var cookie string
	found, err := repo.Get("zentao-cookie:bob", &cookie)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "zentaosid=abc; lang=zh-cn", cookie)

	holidays := []string{"2024-10-01", "2024-10-02"}
	require.NoError(t, repo.Set("holiday:2024", holidays))

	var loaded []string
	found, err = repo.Get("holiday:2024", &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, holidays, loaded)
}

func TestSet_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	repo.now = func() time.Time { return time.Unix(100, 0) }
	require.NoError(t, repo.Set("k", "first"))
	repo.now = func() time.Time { return time.Unix(200, 0) }
	require.NoError(t, repo.Set("k", ""))

	var value string
	found, err := repo.Get("k", &value)
	require.NoError(t, err)
	assert.True(t, found, "an empty value is still present")
	assert.Empty(t, value)

	var updatedAt int64
	require.NoError(t, db.QueryRow("SELECT updated_at FROM kv_state WHERE key = 'k'").Scan(&updatedAt))
	assert.Equal(t, int64(200), updatedAt)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	require.NoError(t, repo.Set("k", "v"))
	require.NoError(t, repo.Delete("k"))
	require.NoError(t, repo.Delete("k"), "deleting a missing key is fine")

	var value string
	found, err := repo.Get("k", &value)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKeysAndDeleteWhere(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	for _, key := range []string{"holiday:2023", "holiday:2024", "holiday_x", "zentao-cookie:bob"} {
		require.NoError(t, repo.Set(key, []string{}))
	}

	keys, err := repo.Keys("holiday:")
	require.NoError(t, err)
	assert.Equal(t, []string{"holiday:2023", "holiday:2024"}, keys)

	deleted, err := repo.DeleteWhere("holiday:", func(key string) bool {
		return strings.HasSuffix(key, "2024")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	keys, err = repo.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{"holiday:2024", "holiday_x", "zentao-cookie:bob"}, keys)
}

func TestGet_DecodeError(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Exec("INSERT INTO kv_state (key, value, updated_at) VALUES ('bad', x'c1', 0)")
	require.NoError(t, err)

	repo := NewRepository(db)
	var value string
	_, err = repo.Get("bad", &value)
	assert.Error(t, err)
}
