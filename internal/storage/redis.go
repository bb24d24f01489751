package storage

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/felixgeelhaar/stockroom/internal/errors"
)

// DefaultRedisPrefix namespaces keys written to a shared redis.
const DefaultRedisPrefix = "stockroom:"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string

	// Client overrides Addr/Password/DB when set.
	Client *redis.Client
}

// RedisStore implements Store on a redis server, for shared terminals
// where several hosts use one login.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to redis and verifies the connection with PING.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	client := opts.Client
	if client == nil {
		if opts.Addr == "" {
			return nil, errors.New(errors.ErrCodeStoreBackend, "redis backend requires an address").
				WithSuggestion("Set storage.redis.addr or STOCKROOM_STORAGE_REDIS_ADDR")
		}
		client = redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreBackend, "failed to connect to redis", err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

// Get returns the value stored under key.
func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(errors.ErrCodeStoreReadFailed, "redis get failed", err)
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return errors.NewStoreWriteError(key, err)
	}
	return nil
}

// Remove deletes key.
func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return errors.NewStoreWriteError(key, err)
	}
	return nil
}

// Close releases the redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
