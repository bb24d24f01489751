// Package storage provides the durable key-value slot that survives between
// stockroom invocations. The application writes a single key, TokenKey,
// holding the raw API credential.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// TokenKey is the key holding the raw credential string.
const TokenKey = "token"

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Store defines durable key-value persistence.
//
// Get reports ok=false for an absent key rather than an error.
// Remove on an absent key is a no-op.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Path is the JSON file used by the file backend.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open returns the Store described by opts.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		path := opts.Path
		if path == "" {
			path = DefaultPath()
		}
		return NewFileStore(path)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendRedis:
		return NewRedisStore(RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend: %q (supported: file, memory, redis)", opts.Backend)
	}
}

// DefaultPath returns ~/.stockroom/storage.json, or a path relative to the
// working directory when the home directory cannot be resolved.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".stockroom", "storage.json")
	}
	return filepath.Join(home, ".stockroom", "storage.json")
}
