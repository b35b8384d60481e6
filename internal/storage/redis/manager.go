package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/config"
	"github.com/bobmcallan/openvault-portal/internal/interfaces"
	goredis "github.com/redis/go-redis/v9"
)

// Manager implements the StorageManager interface for Redis.
type Manager struct {
	client *goredis.Client
	kv     interfaces.KeyValueStorage
	logger *common.Logger
}

// NewManager connects to Redis and verifies the connection with PING.
func NewManager(logger *common.Logger, cfg *config.RedisConfig) (interfaces.StorageManager, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Debug().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("redis storage manager initialized")

	return &Manager{
		client: client,
		kv:     NewKVStorage(client, cfg.Prefix, logger),
		logger: logger,
	}, nil
}

// KeyValueStorage returns the KeyValue storage interface.
func (m *Manager) KeyValueStorage() interfaces.KeyValueStorage {
	return m.kv
}

// Close closes the Redis client.
func (m *Manager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}
