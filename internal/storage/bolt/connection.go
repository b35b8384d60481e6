package bolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/config"
	bbolt "go.etcd.io/bbolt"
)

// kvBucket holds every key written through KVStorage.
var kvBucket = []byte("kv")

// BoltDB manages the bbolt database file.
type BoltDB struct {
	db     *bbolt.DB
	logger *common.Logger
	config *config.BoltConfig
}

// NewBoltDB opens (or creates) the database file at cfg.Path.
func NewBoltDB(logger *common.Logger, cfg *config.BoltConfig) (*BoltDB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logger.Debug().Str("path", cfg.Path).Msg("opening bolt database")

	db, err := bbolt.Open(cfg.Path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(kvBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv bucket: %w", err)
	}

	logger.Debug().Str("path", cfg.Path).Msg("bolt database initialized")

	return &BoltDB{
		db:     db,
		logger: logger,
		config: cfg,
	}, nil
}

// DB returns the underlying bbolt handle.
func (b *BoltDB) DB() *bbolt.DB {
	return b.db
}

// Close closes the database file.
func (b *BoltDB) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
