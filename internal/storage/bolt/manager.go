package bolt

import (
	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/config"
	"github.com/bobmcallan/openvault-portal/internal/interfaces"
)

// Manager implements the StorageManager interface for bbolt.
type Manager struct {
	db     *BoltDB
	kv     interfaces.KeyValueStorage
	logger *common.Logger
}

// NewManager creates a new bolt storage manager.
func NewManager(logger *common.Logger, cfg *config.BoltConfig) (interfaces.StorageManager, error) {
	db, err := NewBoltDB(logger, cfg)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		kv:     NewKVStorage(db, logger),
		logger: logger,
	}

	logger.Debug().Msg("bolt storage manager initialized")

	return manager, nil
}

// KeyValueStorage returns the KeyValue storage interface.
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
