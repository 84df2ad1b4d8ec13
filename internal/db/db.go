// Package db opens the configured storage backend and holds the process-wide
// Store built on it.
package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"knife/internal/config"
	"knife/internal/driver"
	_ "knife/internal/driver/document"
	_ "knife/internal/driver/relational"
	applog "knife/internal/log"
	"knife/internal/store"
)

var (
	mu      sync.RWMutex
	current *store.Store
	backend driver.Driver
)

// Initialize opens the backend named by cfg.Backend at cfg.URL. Relational
// backends receive the pool limits; the others ignore them.
func Initialize(ctx context.Context, cfg config.DatabaseConfig) (driver.Driver, string, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, "", fmt.Errorf("database URL must not be empty")
	}

	kind, err := driver.Resolve(firstNonEmpty(cfg.Backend, "sqlite"))
	if err != nil {
		return nil, "", err
	}

	d, err := driver.Open(ctx, kind, cfg.URL,
		driver.WithPool(cfg.MaxIdleConns, cfg.MaxOpenConns, cfg.ConnMaxLifetime, cfg.ConnMaxIdleTime))
	if err != nil {
		return nil, "", err
	}
	return d, kind, nil
}

// Configure opens the backend, wraps it with metrics when given and installs
// the resulting Store as the global one.
func Configure(ctx context.Context, cfg config.DatabaseConfig, metrics *driver.Metrics) (*store.Store, error) {
	d, kind, err := Initialize(ctx, cfg)
	if err != nil {
		return nil, err
	}

	s := Use(driver.Instrument(d, kind, metrics))
	applog.Info(ctx, "database configured", "backend", kind)
	return s, nil
}

// MustConfigure is Configure that panics on error.
func MustConfigure(ctx context.Context, cfg config.DatabaseConfig, metrics *driver.Metrics) *store.Store {
	s, err := Configure(ctx, cfg, metrics)
	if err != nil {
		panic(err)
	}
	return s
}

// Use installs a Store over d, closing the previous backend if any.
func Use(d driver.Driver) *store.Store {
	s := store.New(d)

	mu.Lock()
	previous := backend
	current, backend = s, d
	mu.Unlock()

	if previous != nil && previous != d {
		if err := closeDriver(previous); err != nil {
			applog.Error(context.Background(), "close previous database", "error", err)
		}
	}
	return s
}

// Get returns the global Store, nil before Configure or Use.
func Get() *store.Store {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Close releases the global backend.
func Close() error {
	mu.Lock()
	d := backend
	current, backend = nil, nil
	mu.Unlock()

	if d == nil {
		return nil
	}
	return closeDriver(d)
}

func closeDriver(d driver.Driver) error {
	c, ok := d.(io.Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
