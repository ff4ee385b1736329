// Package state provides the persisted key/value store used for holiday lists and session cookies.
// Values are msgpack-encoded blobs keyed by "<namespace>:<id>".
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Repository provides key/value operations over the kv_state table.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a new state repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Get decodes the value stored under key into dest.
// Returns false, nil if the key doesn't exist.
func (r *Repository) Get(key string, dest any) (bool, error) {
	var data []byte
	err := r.db.QueryRow("SELECT value FROM kv_state WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get state %s: %w", key, err)
	}

	if err := msgpack.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode state %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key, replacing any previous value.
func (r *Repository) Set(key string, value any) error {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode state %s: %w", key, err)
	}

	_, err = r.db.Exec(`
		INSERT INTO kv_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, data, r.now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set state %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *Repository) Delete(key string) error {
	if _, err := r.db.Exec("DELETE FROM kv_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete state %s: %w", key, err)
	}
	return nil
}

// Keys returns every key starting with prefix, sorted.
func (r *Repository) Keys(prefix string) ([]string, error) {
	rows, err := r.db.Query(
		"SELECT key FROM kv_state WHERE key LIKE ? ESCAPE '\\' ORDER BY key",
		escapeLike(prefix)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list state keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan state key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// DeleteWhere removes every key with the prefix for which keep returns false.
// Returns the number of deleted keys.
func (r *Repository) DeleteWhere(prefix string, keep func(key string) bool) (int, error) {
	keys, err := r.Keys(prefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		if keep(key) {
			continue
		}
		if err := r.Delete(key); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
