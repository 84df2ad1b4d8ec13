package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"knife/internal/config"
	"knife/internal/driver"
)

func TestInitializeRequiresURL(t *testing.T) {
	t.Parallel()

	d, _, err := Initialize(context.Background(), config.DatabaseConfig{URL: ""})
	if err == nil {
		t.Fatal("expected error when database URL is empty")
	}
	if d != nil {
		t.Fatal("expected returned driver to be nil on error")
	}
}

func TestInitializeRejectsUnknownBackend(t *testing.T) {
	t.Parallel()

	_, _, err := Initialize(context.Background(), config.DatabaseConfig{Backend: "oracle", URL: "x"})
	if !errors.Is(err, driver.ErrUnknownBackend) {
		t.Fatalf("Initialize() error = %v, want ErrUnknownBackend", err)
	}
}

func TestInitializeResolvesAliases(t *testing.T) {
	t.Parallel()

	d, kind, err := Initialize(context.Background(), config.DatabaseConfig{Backend: "badger", URL: ":memory:"})
	if err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { _ = closeDriver(d) })
	if kind != "document" {
		t.Fatalf("kind = %q, want document", kind)
	}
}

func TestConfigureInstallsGlobalStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "knife.db")

	metrics, err := driver.NewMetrics(nil)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	s, err := Configure(ctx, config.DatabaseConfig{Backend: "sqlite3", URL: path}, metrics)
	if err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	if Get() != s {
		t.Fatal("expected Get to return the configured store")
	}
	if _, err := s.CreateRecipe(ctx, map[string]any{"name": "Horchata"}); err != nil {
		t.Fatalf("CreateRecipe() error = %v", err)
	}

	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if Get() != nil {
		t.Fatal("expected Get to return nil after Close")
	}
}

func TestConfigurePropagatesInitializationError(t *testing.T) {
	t.Parallel()

	if _, err := Configure(context.Background(), config.DatabaseConfig{}, nil); err == nil {
		t.Fatal("expected configuration error when initialize fails")
	}
}

func TestMustConfigurePanicsOnError(t *testing.T) {
	t.Parallel()

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when configuration fails")
		}
	}()

	MustConfigure(context.Background(), config.DatabaseConfig{}, nil)
}
