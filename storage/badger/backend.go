package badger

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

const (
	// schemaKey holds the layout version of the article keys.
	schemaKey     = "meta:schema"
	schemaVersion = "kindred-articles/1"
)

var (
	// ErrSchemaMismatch is returned when a database was written with a
	// different key layout, or by something else entirely.
	ErrSchemaMismatch = errors.New("database holds a different schema")

	// ErrNotADirectory is returned when the database path is a file.
	ErrNotADirectory = errors.New("database path is not a directory")
)

// Backend wraps a BadgerDB instance holding articles and their indices.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// BackendOption configures OpenBackend.
type BackendOption func(*backendConfig)

type backendConfig struct {
	logger     *slog.Logger
	syncWrites bool
}

// WithBackendLogger routes badger's own log lines to logger.
// Default is slog.Default().
func WithBackendLogger(logger *slog.Logger) BackendOption {
	return func(c *backendConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSyncWrites makes every write transaction fsync before it returns.
func WithSyncWrites(sync bool) BackendOption {
	return func(c *backendConfig) {
		c.syncWrites = sync
	}
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens an article database at filePath, creating the directory
// if needed. With inMemory set the path is ignored.
//
// A new database is stamped with the article schema. An existing one must
// carry the same stamp, so a directory written by another program is refused
// with ErrSchemaMismatch rather than searched.
func OpenBackend(filePath string, inMemory bool, opts ...BackendOption) (*Backend, error) {
	cfg := backendConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	logger := cfg.logger.With("component", "badger")

	var bopts badger.Options
	if inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := ensureDir(filePath); err != nil {
			return nil, err
		}
		bopts = badger.DefaultOptions(filePath).WithSyncWrites(cfg.syncWrites)
	}
	bopts.Logger = &badgerLoggerAdapter{logger: logger}
	bopts.Compression = options.None

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, err
	}

	b := &Backend{db: db, logger: logger}
	if err := b.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func ensureDir(filePath string) error {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return os.MkdirAll(filePath, 0755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotADirectory, filePath)
	}
	return nil
}

// ensureSchema stamps an empty database and checks the stamp of any other.
func (b *Backend) ensureSchema() error {
	return b.db.Update(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(schemaKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			if !isEmpty(tx) {
				return fmt.Errorf("%w: no schema stamp", ErrSchemaMismatch)
			}
			b.logger.Debug("stamping new database", "schema", schemaVersion)
			return tx.Set([]byte(schemaKey), []byte(schemaVersion))
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if string(val) != schemaVersion {
				return fmt.Errorf("%w: found %q, want %q", ErrSchemaMismatch, val, schemaVersion)
			}
			return nil
		})
	})
}

func isEmpty(tx *badger.Txn) bool {
	iter := tx.NewIterator(badger.IteratorOptions{PrefetchValues: false})
	defer iter.Close()
	iter.Rewind()
	return !iter.Valid()
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// dropPrefixes deletes every key under the given prefixes. The schema stamp
// is never among them.
func (b *Backend) dropPrefixes(prefixes ...string) error {
	keys := make([][]byte, len(prefixes))
	for i, p := range prefixes {
		keys[i] = []byte(p)
	}
	return b.db.DropPrefix(keys...)
}
