package badger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "db")
	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := OpenBackend(file, false)
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestBackend_WithTx(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	err = backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte("k"), []byte("v")); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	require.NoError(t, err)

	err = backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte("k"))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, "v", string(val))
			return nil
		})
	}, false)
	require.NoError(t, err)
}

func TestOpenBackend_SchemaStamp(t *testing.T) {
	dir := t.TempDir()
	backend, err := OpenBackend(dir, false, WithSyncWrites(true))
	require.NoError(t, err)

	err = backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(schemaKey))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			assert.Equal(t, schemaVersion, string(val))
			return nil
		})
	}, false)
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	reopened, err := OpenBackend(dir, false)
	require.NoError(t, err, "a stamped database reopens")
	require.NoError(t, reopened.Close())
}

func TestOpenBackend_ForeignDatabase(t *testing.T) {
	writeRaw := func(t *testing.T, dir, key, value string) {
		t.Helper()
		db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
		require.NoError(t, err)
		require.NoError(t, db.Update(func(tx *badger.Txn) error {
			return tx.Set([]byte(key), []byte(value))
		}))
		require.NoError(t, db.Close())
	}

	t.Run("no stamp", func(t *testing.T) {
		dir := t.TempDir()
		writeRaw(t, dir, "chatrec:1", "x")

		_, err := OpenBackend(dir, false)
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})

	t.Run("other stamp", func(t *testing.T) {
		dir := t.TempDir()
		writeRaw(t, dir, schemaKey, "kindred-articles/0")

		_, err := OpenBackend(dir, false)
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
}
