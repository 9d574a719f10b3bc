package storage

import (
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	db, err := NewSQLite(filepath.Join(t.TempDir(), "nested", "tokenctl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Storage{
		"memory": NewMemory(),
		"sqlite": db,
	}
}

func TestStorageRoundTrip(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(KeyTheme)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, st.Set(KeyTheme, "dark"))
			require.NoError(t, st.Set(KeyTheme, "light"))

			v, err := st.Get(KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, "light", v)
		})
	}
}

func TestStorageCredentials(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, _, ok := Credentials(st)
			assert.False(t, ok)

			require.NoError(t, st.Set(KeyAPIKey, "key"))
			_, _, ok = Credentials(st)
			assert.False(t, ok, "a key without address is not signed in")

			require.NoError(t, st.Set(KeyServerAddress, "http://srv"))
			key, address, ok := Credentials(st)
			require.True(t, ok)
			assert.Equal(t, "key", key)
			assert.Equal(t, "http://srv", address)

			require.NoError(t, st.Remove(KeyAPIKey, KeyServerAddress, "missing"))
			_, _, ok = Credentials(st)
			assert.False(t, ok)
		})
	}
}

func TestStorageConcurrentWrites(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, st.Set(KeyTheme, "dark"))
				}()
			}
			wg.Wait()

			v, err := st.Get(KeyTheme)
			require.NoError(t, err)
			assert.Equal(t, "dark", v)
		})
	}
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokenctl.db")

	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(KeyAPIKey, "key"))
	require.NoError(t, first.Close())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	v, err := second.Get(KeyAPIKey)
	require.NoError(t, err)
	assert.Equal(t, "key", v)
}

func TestSQLiteMigratesLegacyTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	raw, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE client_storage (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO client_storage (key, value) VALUES ('theme', 'Dark')`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	st, err := NewSQLite(path)
	require.NoError(t, err)
	defer st.Close()

	v, err := st.Get(KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
}

func TestMemoryCountsWrites(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set("a", "1"))
	require.NoError(t, m.Remove("a"))
	assert.Equal(t, 2, m.Writes())
}
