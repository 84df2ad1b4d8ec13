package driver

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Factory opens a backend from a data source name. The meaning of dsn is
// backend specific: a file path, a connection URL or a directory.
type Factory func(ctx context.Context, dsn string, opts Options) (Driver, error)

// Options carries backend tuning. Backends ignore what does not apply.
type Options struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// Option adjusts Options.
type Option func(*Options)

// WithPool sets connection pool limits. Zero values keep the backend default.
func WithPool(maxIdle, maxOpen int, maxLifetime, maxIdleTime time.Duration) Option {
	return func(o *Options) {
		o.MaxIdleConns = maxIdle
		o.MaxOpenConns = maxOpen
		o.ConnMaxLifetime = maxLifetime
		o.ConnMaxIdleTime = maxIdleTime
	}
}

var (
	registryMu sync.RWMutex
	factories  = map[string]Factory{}
	aliases    = map[string]string{}
)

// Register makes a backend available under kind and any aliases. It panics
// on a duplicate name, like database/sql.Register.
func Register(kind string, factory Factory, alias ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if factory == nil {
		panic("driver: Register factory is nil")
	}
	kind = normalize(kind)
	if _, dup := factories[kind]; dup {
		panic("driver: Register called twice for " + kind)
	}
	factories[kind] = factory
	for _, a := range alias {
		aliases[normalize(a)] = kind
	}
}

// Open resolves kind (or one of its aliases) and opens the backend.
func Open(ctx context.Context, kind, dsn string, opts ...Option) (Driver, error) {
	name, factory, err := lookup(kind)
	if err != nil {
		return nil, err
	}
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	d, err := factory(ctx, dsn, o)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", name, err)
	}
	return d, nil
}

// Resolve returns the canonical kind for a name or alias.
func Resolve(kind string) (string, error) {
	name, _, err := lookup(kind)
	return name, err
}

// Kinds lists the registered backend kinds.
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookup(kind string) (string, Factory, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	name := normalize(kind)
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	factory, ok := factories[name]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownBackend, kind)
	}
	return name, factory, nil
}

func normalize(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}
