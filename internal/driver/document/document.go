// Package document implements driver.Driver on an embedded badger store.
// Each record is a bson document kept under "<collection>/<uuid v7>", so a
// prefix scan returns a collection in insertion order.
package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"knife/internal/driver"
	"knife/internal/filter"
	applog "knife/internal/log"
	"knife/internal/schema"
)

const backend = "document"

func init() {
	driver.Register(backend, func(ctx context.Context, dsn string, _ driver.Options) (driver.Driver, error) {
		return Open(ctx, dsn)
	}, "json", "badger")
}

// Config controls how the badger store is opened.
type Config struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string
	// InMemory keeps everything in RAM. Used by tests and the mock dataset.
	InMemory bool
	// SyncWrites fsyncs every commit.
	SyncWrites bool
	// Logger receives badger's internal log lines. Nil silences them.
	Logger *slog.Logger
}

// DB is a document backend.
type DB struct {
	badger *badger.DB
}

// badgerLogger adapts slog.Logger to badger.Logger.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

// Open opens the store at path. An empty path or ":memory:" selects an
// in-memory store.
func Open(_ context.Context, path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" || path == ":memory:" {
		return OpenConfig(Config{InMemory: true, Logger: applog.Logger()})
	}
	return OpenConfig(Config{Path: path, SyncWrites: true, Logger: applog.Logger()})
}

// OpenConfig opens the store described by cfg.
func OpenConfig(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for a persistent document store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create document store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &DB{badger: db}, nil
}

// Close flushes and closes the store.
func (d *DB) Close() error {
	return d.badger.Close()
}

// Read implements driver.Driver.
func (d *DB) Read(ctx context.Context, src schema.Source, q driver.Query) ([]schema.Record, error) {
	if err := filter.Validate(src, q.Filters); err != nil {
		return nil, err
	}
	columns, err := filter.Projection(src, q.Columns)
	if err != nil {
		return nil, err
	}
	match := filter.Compile(q.Filters, q.Mode)

	var records []schema.Record
	err = d.badger.View(func(txn *badger.Txn) error {
		if j, ok := src.(schema.Join); ok {
			joined, err := join(txn, j, match)
			if err != nil {
				return err
			}
			for _, rec := range joined {
				records = append(records, rec.Project(columns))
			}
			return nil
		}

		docs, err := scan(txn, src.Models()[0])
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if match(doc.record) {
				records = append(records, doc.record.Project(columns))
			}
		}
		return nil
	})
	if err != nil {
		return nil, driver.Wrap(backend, "read", err)
	}

	applog.Debug(ctx, "driver read", "backend", backend, "source", src, "rows", len(records))
	return records, nil
}

// Write implements driver.Driver.
func (d *DB) Write(ctx context.Context, m *schema.Model, rec schema.Record, filters ...schema.Filter) error {
	if len(filters) == 0 {
		return d.insert(ctx, m, rec)
	}
	return d.update(ctx, m, rec, filters)
}

func (d *DB) insert(ctx context.Context, m *schema.Model, rec schema.Record) error {
	prepared, err := driver.Prepare(m, rec)
	if err != nil {
		return err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return driver.Wrap(backend, "insert", err)
	}
	value, err := encode(m, prepared)
	if err != nil {
		return driver.Wrap(backend, "insert", err)
	}

	err = d.badger.Update(func(txn *badger.Txn) error {
		return txn.Set(key(m, id.String()), value)
	})
	if err != nil {
		return driver.Wrap(backend, "insert", err)
	}
	applog.Debug(ctx, "driver insert", "backend", backend, "collection", m.Table)
	return nil
}

func (d *DB) update(ctx context.Context, m *schema.Model, rec schema.Record, filters []schema.Filter) error {
	if err := filter.CheckRecord(m, rec); err != nil {
		return err
	}
	if err := filter.Validate(m, filters); err != nil {
		return err
	}
	if len(rec) == 0 {
		return fmt.Errorf("%w: %s", driver.ErrEmptyRecord, m)
	}
	if len(filter.Effective(filters)) == 0 {
		return filter.ErrEmptyFilter
	}

	changes := make(schema.Record, len(rec))
	for f, v := range rec {
		coerced, err := f.Coerce(v)
		if err != nil {
			return err
		}
		changes[f] = coerced
	}
	match := filter.Compile(filters, filter.Exact)

	updated := 0
	err := d.badger.Update(func(txn *badger.Txn) error {
		docs, err := scan(txn, m)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if !match(doc.record) {
				continue
			}
			for f, v := range changes {
				doc.record[f] = v
			}
			value, err := encode(m, doc.record)
			if err != nil {
				return err
			}
			if err := txn.Set(doc.key, value); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return driver.Wrap(backend, "update", err)
	}
	applog.Debug(ctx, "driver update", "backend", backend, "collection", m.Table, "rows", updated)
	return nil
}

// Erase implements driver.Driver.
func (d *DB) Erase(ctx context.Context, m *schema.Model, filters ...schema.Filter) error {
	if err := filter.Validate(m, filters); err != nil {
		return err
	}
	if len(filter.Effective(filters)) == 0 {
		return filter.ErrEmptyFilter
	}
	match := filter.Compile(filters, filter.Exact)

	erased := 0
	err := d.badger.Update(func(txn *badger.Txn) error {
		docs, err := scan(txn, m)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			if !match(doc.record) {
				continue
			}
			if err := txn.Delete(doc.key); err != nil {
				return err
			}
			erased++
		}
		return nil
	})
	if err != nil {
		return driver.Wrap(backend, "erase", err)
	}
	applog.Debug(ctx, "driver erase", "backend", backend, "collection", m.Table, "rows", erased)
	return nil
}

type document struct {
	key    []byte
	record schema.Record
}

func prefix(m *schema.Model) []byte {
	return []byte(m.Table + "/")
}

func key(m *schema.Model, id string) []byte {
	return append(prefix(m), id...)
}

// scan decodes every document of the collection. The iterator is closed
// before returning so callers may write inside the same transaction.
func scan(txn *badger.Txn, m *schema.Model) ([]document, error) {
	p := prefix(m)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = p
	it := txn.NewIterator(opts)
	defer it.Close()

	var docs []document
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		item := it.Item()
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return nil, err
		}
		rec, err := decode(m, raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", item.Key(), err)
		}
		docs = append(docs, document{key: bytes.Clone(item.Key()), record: rec})
	}
	return docs, nil
}

func encode(m *schema.Model, rec schema.Record) ([]byte, error) {
	return bson.Marshal(bson.M(rec.Project(m.Fields()).Named()))
}

// decode returns a record holding every field of m. Fields missing from the
// document are nil, matching a NULL column.
func decode(m *schema.Model, raw []byte) (schema.Record, error) {
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	rec := make(schema.Record, len(m.Fields()))
	for _, f := range m.Fields() {
		v, err := f.Coerce(doc[f.Name])
		if err != nil {
			return nil, err
		}
		rec[f] = v
	}
	return rec, nil
}
