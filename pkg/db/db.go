// Package db is the relational persistence layer: books, words and their
// links for ingestion, plus decks, cards and review logs for the SRS. The
// same schema runs on SQLite (default) and PostgreSQL.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrationsFS embed.FS

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Error wraps a failed persistence call with the operation name.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return "db: " + e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotFound
	}
	return &Error{Op: op, Err: err}
}

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options tunes a connection opened with Open.
type Options struct {
	MaxOpenConns     int
	StatementTimeout time.Duration
	Logger           logrus.FieldLogger
}

// Store is the persistence adapter. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
	log    logrus.FieldLogger
}

// Open connects to the database. SQLite connections get foreign keys and
// WAL enabled; PostgreSQL sessions get a statement timeout.
func Open(ctx context.Context, driver, dsn string, opts Options) (*Store, error) {
	var (
		conn *sql.DB
		err  error
	)
	switch driver {
	case DriverSQLite:
		conn, err = sql.Open(driver, sqliteDSN(dsn))
	case DriverPostgres:
		var cfg *pgx.ConnConfig
		cfg, err = pgx.ParseConfig(dsn)
		if err != nil {
			return nil, wrap("parse dsn", err)
		}
		if opts.StatementTimeout > 0 {
			cfg.RuntimeParams["statement_timeout"] = strconv.FormatInt(opts.StatementTimeout.Milliseconds(), 10)
		}
		conn = stdlib.OpenDB(*cfg)
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}
	if err != nil {
		return nil, wrap("open", err)
	}

	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, wrap("ping", err)
	}
	return New(conn, driver, opts.Logger), nil
}

// sqliteDSN appends the connection parameters every SQLite connection needs.
func sqliteDSN(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000"
}

// New wraps an already opened connection.
func New(conn *sql.DB, driver string, logger logrus.FieldLogger) *Store {
	if logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		logger = l
	}
	var format sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	return &Store{
		db:     conn,
		driver: driver,
		sb:     sq.StatementBuilder.PlaceholderFormat(format),
		log:    logger,
	}
}

// DB exposes the underlying connection pool.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Migrate applies all pending schema migrations for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	dialect, dir := goose.DialectSQLite3, "migrations/sqlite"
	if s.driver == DriverPostgres {
		dialect, dir = goose.DialectPostgres, "migrations/postgres"
	}
	sub, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return wrap("migrate", err)
	}
	provider, err := goose.NewProvider(dialect, s.db, sub)
	if err != nil {
		return wrap("migrate", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return wrap("migrate", err)
	}
	for _, r := range results {
		s.log.WithField("version", r.Source.Version).Info("applied migration")
	}
	return nil
}

// rebind rewrites '?' placeholders for the store's dialect.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	q, err := sq.Dollar.ReplacePlaceholders(query)
	if err != nil {
		return query
	}
	return q
}

// withTx runs fn in a transaction, rolling back when fn fails.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		var dbErr *Error
		if errors.As(err, &dbErr) {
			return err
		}
		return wrap(op, err)
	}
	if err := tx.Commit(); err != nil {
		return wrap(op, err)
	}
	return nil
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed") || strings.Contains(s, "23505")
}
