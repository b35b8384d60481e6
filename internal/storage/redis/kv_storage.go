package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/interfaces"
	goredis "github.com/redis/go-redis/v9"
)

// KVStorage implements interfaces.KeyValueStorage on Redis strings.
// Every key is namespaced with prefix.
type KVStorage struct {
	client *goredis.Client
	prefix string
	logger *common.Logger
}

// NewKVStorage creates a Redis-backed key-value storage.
func NewKVStorage(client *goredis.Client, prefix string, logger *common.Logger) *KVStorage {
	return &KVStorage{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

// Get retrieves a value by key.
func (s *KVStorage) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", fmt.Errorf("%w: %s", interfaces.ErrNotFound, key)
		}
		return "", fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return val, nil
}

// Set stores a key-value pair without expiry.
func (s *KVStorage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", key, err)
	}
	return nil
}

// Delete removes a key-value pair. Deleting a missing key is not an error.
func (s *KVStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// GetAll retrieves all key-value pairs under the prefix.
func (s *KVStorage) GetAll(ctx context.Context) (map[string]string, error) {
	result := make(map[string]string)
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		val, err := s.client.Get(ctx, fullKey).Result()
		if errors.Is(err, goredis.Nil) {
			// removed between SCAN and GET
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get key %s: %w", fullKey, err)
		}
		result[strings.TrimPrefix(fullKey, s.prefix)] = val
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan keys: %w", err)
	}
	return result, nil
}
