// Package db persists relay requests and spent relay nonces in SQLite
// through GORM.
package db

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/motus-labs/motus-name-service/relayer/store"
)

const (
	// InMemoryDSN opens a database that lives as long as its connection.
	InMemoryDSN = ":memory:"

	dirPermissions = 0o750

	// WAL lets the reconciler and the cleaner read while Submit writes.
	fileDSNParams = "?_journal_mode=WAL&_busy_timeout=5000&mode=rwc"
)

// relaySchema is migrated on every open; the relayer never runs against a
// schema it did not create.
var relaySchema = []any{
	&store.RelayRequest{},
	&store.RelayNonce{},
}

// DB is the relayer's request and nonce store.
type DB struct {
	client   *gorm.DB
	inMemory bool
}

// Open opens (or creates) the relay database file dir/filename.
func Open(dir, filename string) (*DB, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to create database directory %s", dir)
	}
	return open(filepath.Join(dir, filename)+fileDSNParams, false)
}

// OpenInMemory opens an ephemeral relay database, used by tests and the
// devnet relayer.
func OpenInMemory() (*DB, error) {
	return open(InMemoryDSN, true)
}

func open(dsn string, inMemory bool) (*DB, error) {
	client, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// unique index violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open relay database")
	}
	if err := client.AutoMigrate(relaySchema...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate relay schema")
	}

	sqlDB, err := client.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}
	// One connection serialises nonce reservations, and an in-memory
	// database only exists on the connection that created it.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return &DB{client: client, inMemory: inMemory}, nil
}

// Client exposes the GORM handle for ad hoc queries.
func (d *DB) Client() *gorm.DB {
	return d.client
}

// Ping reports whether the database still answers. The relayer reports
// itself unhealthy when it cannot record requests.
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.client.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "relay database unreachable")
	}
	return nil
}

// Checkpoint truncates the write-ahead log so it does not grow without
// bound. In-memory databases have no log.
func (d *DB) Checkpoint() error {
	if d.inMemory {
		return nil
	}
	if err := d.client.Exec("PRAGMA wal_checkpoint(TRUNCATE)").Error; err != nil {
		return errors.Wrap(err, "failed to checkpoint WAL")
	}
	return nil
}

// inTx runs fn in a single transaction, rolling back when it fails.
func (d *DB) inTx(fn func(tx *gorm.DB) error) error {
	return d.client.Transaction(fn)
}

// Close closes the underlying connection. Closing twice is harmless.
func (d *DB) Close() error {
	sqlDB, err := d.client.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrap(err, "failed to close relay database")
	}
	return nil
}
