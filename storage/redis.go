package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// DefaultRedisPrefix namespaces record keys when the URI sets no prefix.
const DefaultRedisPrefix = "land-registry"

// RedisStore implements a metadata store on a Redis server.
// Records are stored as JSON strings under <prefix>:record:<hex id>.
type RedisStore struct {
	client      *redis.Client
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewRedisStore creates a store from a redis:// URL.
func NewRedisStore(redisURL, prefix string, log *slog.Logger) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	return NewRedisStoreFromClient(redis.NewClient(opts), prefix, redisURL, log), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, prefix, locationURI string, log *slog.Logger) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	return &RedisStore{
		client:      client,
		prefix:      prefix,
		log:         log,
		locationURI: locationURI,
	}
}

// Get implements interfaces.MetadataStore.
func (s *RedisStore) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	start := time.Now()
	key := s.key(id)

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return interfaces.CertificateRecord{}, interfaces.ErrRecordNotFound
	}
	if err != nil {
		s.log.Error("Failed to get record from redis",
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return interfaces.CertificateRecord{}, fmt.Errorf("redis get: %w", err)
	}

	return decodeRecord(data)
}

// Put implements interfaces.MetadataStore.
func (s *RedisStore) Put(ctx context.Context, record interfaces.CertificateRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	key := s.key(record.ID)
	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	s.log.Debug("Stored record in redis",
		slog.String("key", key),
		slog.String("certificateID", record.ID.String()))

	return nil
}

// Delete implements interfaces.MetadataStore.
func (s *RedisStore) Delete(ctx context.Context, id interfaces.CertificateID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Available pings the server.
func (s *RedisStore) Available(ctx context.Context) bool {
	if err := s.client.Ping(ctx).Err(); err != nil {
		s.log.Warn("Redis store unavailable", "err", err)
		return false
	}
	return true
}

// Name implements interfaces.MetadataStore.
func (s *RedisStore) Name() string {
	return fmt.Sprintf("redis-%s", s.prefix)
}

// LocationURI implements interfaces.MetadataStore.
func (s *RedisStore) LocationURI() string {
	return s.locationURI
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(id interfaces.CertificateID) string {
	return s.prefix + ":record:" + recordKey(id)
}
