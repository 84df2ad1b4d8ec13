// Package relational implements driver.Driver on SQL engines through gorm.
// SQLite and PostgreSQL share one implementation and differ only in the
// gorm dialector and the schema.Dialect used for DDL.
package relational

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"knife/internal/driver"
	"knife/internal/filter"
	applog "knife/internal/log"
	"knife/internal/schema"
)

// DB is a relational backend.
type DB struct {
	gorm    *gorm.DB
	dialect schema.Dialect
	backend string
}

// sqliteDriver is go-sqlite3 with LOWER replaced by a Unicode-aware version.
const sqliteDriver = "sqlite3_unicode"

func init() {
	sql.Register(sqliteDriver, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("lower", lower, true)
		},
	})

	driver.Register("sqlite", func(ctx context.Context, dsn string, _ driver.Options) (driver.Driver, error) {
		return OpenSQLite(ctx, dsn)
	}, "sqlite3")
	driver.Register("pgsql", func(ctx context.Context, dsn string, opts driver.Options) (driver.Driver, error) {
		return OpenPostgres(ctx, dsn, opts)
	}, "postgres", "postgresql")
}

// lower folds text values. NULL and non-text values pass through unchanged,
// matching the builtin.
func lower(v any) any {
	if s, ok := v.(string); ok {
		return strings.ToLower(s)
	}
	if b, ok := v.([]byte); ok && b == nil {
		return nil
	}
	return v
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

// OpenSQLite opens (or creates) the database file at path and migrates the
// schema. SQLite serializes writers, so the pool is pinned to one
// connection; this also keeps "file:...?mode=memory" databases alive.
func OpenSQLite(ctx context.Context, path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path must not be empty")
	}

	g, err := gorm.Open(sqlite.New(sqlite.Config{DriverName: sqliteDriver, DSN: path}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return open(ctx, g, schema.SQLite, "sqlite")
}

// OpenPostgres connects to the server at dsn, applies the pool limits and
// migrates the schema.
func OpenPostgres(ctx context.Context, dsn string, opts driver.Options) (*DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("postgres DSN must not be empty")
	}

	g, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := g.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}

	return open(ctx, g, schema.Postgres, "pgsql")
}

func open(ctx context.Context, g *gorm.DB, dialect schema.Dialect, backend string) (*DB, error) {
	d := &DB{gorm: g, dialect: dialect, backend: backend}
	if err := d.Migrate(ctx); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// Migrate creates every table in schema.Models that does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	return d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range schema.Models {
			ddl, err := m.DDL(d.dialect)
			if err != nil {
				return err
			}
			if err := tx.Exec(ddl).Error; err != nil {
				return driver.Wrap(d.backend, "migrate "+m.Table, err)
			}
		}
		return nil
	})
}

// Backend names the engine, "sqlite" or "pgsql".
func (d *DB) Backend() string {
	return d.backend
}

// Close releases the connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
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
	pred, err := filter.SQL(q.Filters, q.Mode)
	if err != nil {
		return nil, err
	}

	statement := selectStatement(src, columns, pred)

	var records []schema.Record
	err = d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := raw(tx, statement, pred.Params).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			values := make([]any, len(columns))
			targets := make([]any, len(columns))
			for i := range values {
				targets[i] = &values[i]
			}
			if err := rows.Scan(targets...); err != nil {
				return err
			}

			rec := make(schema.Record, len(columns))
			for i, f := range columns {
				v, err := f.Coerce(values[i])
				if err != nil {
					return err
				}
				rec[f] = v
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, driver.Wrap(d.backend, "read", err)
	}

	applog.Debug(ctx, "driver read", "backend", d.backend, "source", src, "rows", len(records))
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

	var (
		names        []string
		placeholders []string
		params       = make(map[string]any, len(prepared))
	)
	for _, f := range m.Fields() {
		v, ok := prepared[f]
		if !ok {
			continue
		}
		names = append(names, schema.Quote(f.Name))
		placeholders = append(placeholders, "@"+setParam(f))
		params[setParam(f)] = v
	}
	statement := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		schema.Quote(m.Table), strings.Join(names, ", "), strings.Join(placeholders, ", "))

	if err := d.exec(ctx, statement, params); err != nil {
		return driver.Wrap(d.backend, "insert", err)
	}
	applog.Debug(ctx, "driver insert", "backend", d.backend, "table", m.Table)
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
	pred, err := filter.SQL(filters, filter.Exact)
	if err != nil {
		return err
	}
	if pred.Empty() {
		return filter.ErrEmptyFilter
	}

	params := make(map[string]any, len(rec)+len(pred.Params))
	for k, v := range pred.Params {
		params[k] = v
	}
	assignments := make([]string, 0, len(rec))
	for _, f := range m.Fields() {
		v, ok := rec[f]
		if !ok {
			continue
		}
		coerced, err := f.Coerce(v)
		if err != nil {
			return err
		}
		assignments = append(assignments, schema.Quote(f.Name)+" = @"+setParam(f))
		params[setParam(f)] = coerced
	}
	statement := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		schema.Quote(m.Table), strings.Join(assignments, ", "), pred.Clause)

	if err := d.exec(ctx, statement, params); err != nil {
		return driver.Wrap(d.backend, "update", err)
	}
	applog.Debug(ctx, "driver update", "backend", d.backend, "table", m.Table)
	return nil
}

// Erase implements driver.Driver.
func (d *DB) Erase(ctx context.Context, m *schema.Model, filters ...schema.Filter) error {
	if err := filter.Validate(m, filters); err != nil {
		return err
	}
	pred, err := filter.SQL(filters, filter.Exact)
	if err != nil {
		return err
	}
	if pred.Empty() {
		return filter.ErrEmptyFilter
	}

	statement := fmt.Sprintf("DELETE FROM %s WHERE %s", schema.Quote(m.Table), pred.Clause)
	if err := d.exec(ctx, statement, pred.Params); err != nil {
		return driver.Wrap(d.backend, "erase", err)
	}
	applog.Debug(ctx, "driver erase", "backend", d.backend, "table", m.Table)
	return nil
}

func (d *DB) exec(ctx context.Context, statement string, params map[string]any) error {
	return d.gorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(params) == 0 {
			return tx.Exec(statement).Error
		}
		return tx.Exec(statement, params).Error
	})
}

func raw(tx *gorm.DB, statement string, params map[string]any) *gorm.DB {
	if len(params) == 0 {
		return tx.Raw(statement)
	}
	return tx.Raw(statement, params)
}

// setParam names the placeholder of an assigned value. The prefix keeps it
// apart from filter placeholders on the same column.
func setParam(f *schema.Field) string {
	return "set__" + f.Name
}

func selectStatement(src schema.Source, columns []*schema.Field, pred filter.Predicate) string {
	selected := make([]string, 0, len(columns))
	for _, f := range columns {
		selected = append(selected, column(f)+" AS "+schema.Quote(f.Alias()))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selected, ", "))
	b.WriteString(" FROM ")

	switch s := src.(type) {
	case schema.Join:
		fmt.Fprintf(&b, "%s JOIN %s ON %s = %s",
			schema.Quote(s.Left.Table), schema.Quote(s.Right.Table), column(s.LeftField), column(s.RightField))
	default:
		b.WriteString(schema.Quote(src.Models()[0].Table))
	}

	if !pred.Empty() {
		b.WriteString(" WHERE ")
		b.WriteString(pred.Clause)
	}
	return b.String()
}

func column(f *schema.Field) string {
	return schema.Quote(f.Model().Table) + "." + schema.Quote(f.Name)
}
