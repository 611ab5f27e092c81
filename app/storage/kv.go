// Package storage is the durable key-value layer the task list persists to.
//
// The application writes a single key, TasksKey, whose value is the JSON array
// of every task. Backends only move opaque bytes; encoding lives in services.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"tasklist/app/config"
	"tasklist/app/logging"
)

// TasksKey is the key the full task collection is stored under.
const TasksKey = "tasks"

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrInvalidKey     = errors.New("invalid storage key")
)

// KV is a minimal durable key-value store.
type KV interface {
	// Get returns the value at key. ok is false when nothing is stored there.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Close(ctx context.Context) error
}

// Open builds the backend named by cfg.Storage.Backend.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (KV, error) {
	logging.Info(logger, "storage_open", map[string]any{"backend": cfg.Storage.Backend})

	switch cfg.Storage.Backend {
	case "", "file":
		return NewFileKV(cfg.Storage.DataDir)
	case "memory":
		return NewMemoryKV(), nil
	case "neo4j":
		driver, err := config.InitNeo4j(cfg.Neo4j)
		if err != nil {
			return nil, fmt.Errorf("neo4j driver: %w", err)
		}
		return NewNeo4jKV(ctx, driver)
	case "mysql":
		return OpenMySQLKV(ctx, cfg.MySQL.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Storage.Backend)
	}
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
