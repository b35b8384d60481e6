package storage

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/config"
	"github.com/bobmcallan/openvault-portal/internal/interfaces"
	"github.com/bobmcallan/openvault-portal/internal/storage/bolt"
	"github.com/bobmcallan/openvault-portal/internal/storage/memory"
	"github.com/bobmcallan/openvault-portal/internal/storage/redis"
)

// NewStorageManager creates a new storage manager based on storage.backend.
func NewStorageManager(logger *common.Logger, cfg *config.Config) (interfaces.StorageManager, error) {
	switch strings.ToLower(cfg.Storage.Backend) {
	case "bolt", "":
		return bolt.NewManager(logger, &cfg.Storage.Bolt)
	case "redis":
		return redis.NewManager(logger, &cfg.Storage.Redis)
	case "memory":
		logger.Warn().Msg("memory storage backend: the session will not survive a restart")
		return memory.NewManager(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
