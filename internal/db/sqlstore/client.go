package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/starbot-tg/starbot/internal/db"
	"github.com/starbot-tg/starbot/internal/infra"
	"github.com/starbot-tg/starbot/resources"
)

const (
	DialectSQLite   = "sqlite3"
	DialectPostgres = "postgres"

	defaultDBName = "starbot.db"
	dayLayout     = "2006-01-02"
)

var _ db.Client = (*Client)(nil)

// Client implements db.Client on top of sqlx for both sqlite and postgres.
// Queries are written with ? placeholders and rebound per dialect.
type Client struct {
	db              *sqlx.DB
	dialect         string
	defaultLanguage string
	mutex           sync.RWMutex
	now             func() time.Time
}

type Options struct {
	DatabaseURL     string
	WorkDir         string
	DefaultLanguage string
}

// Open picks postgres for postgres:// URLs and sqlite for anything else (a file path or empty).
func Open(ctx context.Context, opts Options) (*Client, error) {
	var (
		client *Client
		err    error
	)
	url := strings.TrimSpace(opts.DatabaseURL)
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		client, err = NewPostgresClient(ctx, url)
	default:
		path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "file:")
		if path == "" {
			path = filepath.Join(opts.WorkDir, defaultDBName)
		}
		dir, name := filepath.Split(path)
		if dir == "" {
			dir = opts.WorkDir
		}
		client, err = NewSQLiteClient(ctx, dir, name)
	}
	if err != nil {
		return nil, err
	}
	if opts.DefaultLanguage != "" {
		client.defaultLanguage = opts.DefaultLanguage
	}
	return client, nil
}

func NewSQLiteClient(ctx context.Context, dir, name string) (*Client, error) {
	dir, err := infra.EnsureWorkDir(dir)
	if err != nil {
		return nil, err
	}
	dsn := "file:" + filepath.Join(dir, name) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_time_format=sqlite&_txlock=immediate"
	dbx, err := sqlx.ConnectContext(ctx, "sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	dbx.SetMaxOpenConns(8)

	return newClient(ctx, dbx, DialectSQLite)
}

func NewPostgresClient(ctx context.Context, dsn string) (*Client, error) {
	dbx, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	dbx.SetMaxOpenConns(10)
	dbx.SetConnMaxIdleTime(5 * time.Minute)

	return newClient(ctx, dbx, DialectPostgres)
}

func newClient(ctx context.Context, dbx *sqlx.DB, dialect string) (*Client, error) {
	client := &Client{
		db:              dbx,
		dialect:         dialect,
		defaultLanguage: db.DefaultLanguage,
		now:             time.Now,
	}
	if _, err := client.Migrate(ctx); err != nil {
		_ = dbx.Close()
		return nil, err
	}
	return client, nil
}

// Migrate applies pending embedded migrations for the client's dialect.
func (c *Client) Migrate(ctx context.Context) (int, error) {
	root := "migrations/sqlite"
	if c.dialect == DialectPostgres {
		root = "migrations/postgres"
	}
	source := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: resources.FS,
		Root:       root,
	}
	if _, _, err := migrate.PlanMigration(c.db.DB, c.dialect, source, migrate.Up, 0); err != nil {
		return 0, errors.Wrap(err, "plan migrations")
	}
	n, err := migrate.Exec(c.db.DB, c.dialect, source, migrate.Up)
	if err != nil {
		return 0, errors.Wrap(err, "apply migrations")
	}
	if n > 0 {
		c.getLogEntry().WithField("count", n).Info("applied migrations")
	}
	return n, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Dialect() string {
	return c.dialect
}

// lock serializes writers on sqlite; postgres handles concurrent writers itself.
func (c *Client) lock() func() {
	if c.dialect != DialectSQLite {
		return func() {}
	}
	c.mutex.Lock()
	return c.mutex.Unlock
}

func (c *Client) rlock() func() {
	if c.dialect != DialectSQLite {
		return func() {}
	}
	c.mutex.RLock()
	return c.mutex.RUnlock
}

func (c *Client) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	unlock := c.lock()
	defer unlock()

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			c.getLogEntry().WithField("error", rbErr.Error()).Warn("rollback failed")
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "commit tx")
}

func (c *Client) exec(ctx context.Context, query string, args ...any) (int64, error) {
	unlock := c.lock()
	defer unlock()
	res, err := c.db.ExecContext(ctx, c.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *Client) get(ctx context.Context, dest any, query string, args ...any) error {
	unlock := c.rlock()
	defer unlock()
	return c.db.GetContext(ctx, dest, c.db.Rebind(query), args...)
}

func (c *Client) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	unlock := c.rlock()
	defer unlock()
	return c.db.SelectContext(ctx, dest, c.db.Rebind(query), args...)
}

func txExec(ctx context.Context, tx *sqlx.Tx, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func txGet(ctx context.Context, tx *sqlx.Tx, dest any, query string, args ...any) error {
	return tx.GetContext(ctx, dest, tx.Rebind(query), args...)
}

func (c *Client) timestamp() time.Time {
	return ts(c.now())
}

// ts normalizes times so that sqlite's textual comparison matches chronological order.
func ts(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func day(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

func (c *Client) getLogEntry() *log.Entry {
	return log.WithField("object", "SQLStore").WithField("dialect", c.dialect)
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
