// Package storage writes registration records to the relational backing store.
//
// Every call to Register takes its own connection from the database handle and
// gives it back before returning, whatever the outcome.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"time"

	"Registration-Intake/internals/config"
	"Registration-Intake/internals/models"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Options struct {
	Driver         string
	Table          string
	ConnectTimeout time.Duration
}

type Store struct {
	db             *sql.DB
	driver         string
	table          string
	insertSQL      string
	connectTimeout time.Duration
}

// New wraps an existing database handle.
func New(db *sql.DB, opts Options) (*Store, error) {
	if !identPattern.MatchString(opts.Table) {
		return nil, fmt.Errorf("invalid table name %q", opts.Table)
	}
	return &Store{
		db:             db,
		driver:         opts.Driver,
		table:          opts.Table,
		insertSQL:      fmt.Sprintf("INSERT INTO %s (username, regno, password) VALUES (?, ?, ?)", opts.Table),
		connectTimeout: opts.ConnectTimeout,
	}, nil
}

// Open creates the database handle described by cfg. No connection is made
// until the first registration.
func Open(cfg *config.Config) (*Store, error) {
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Database.Driver, err)
	}
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	s, err := New(db, Options{
		Driver:         cfg.Database.Driver,
		Table:          cfg.Database.Table,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DSN builds the driver specific data source name.
func DSN(cfg *config.Config) (string, error) {
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.Database.User
		mc.Passwd = cfg.Database.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Database.Host, strconv.Itoa(cfg.Database.Port))
		mc.DBName = cfg.Database.Name
		mc.Timeout = cfg.Database.ConnectTimeout
		return mc.FormatDSN(), nil
	case config.DriverSQLite:
		if cfg.Database.SQLitePath == "" {
			return "", fmt.Errorf("sqlite path is not set")
		}
		return cfg.Database.SQLitePath, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Register inserts rec as a new row. A failure to obtain a connection is
// reported as KindConnection and nothing is sent to the database; a failure to
// prepare or execute the insert is reported as KindExecution.
func (s *Store) Register(ctx context.Context, rec models.Registration) error {
	connCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.connectTimeout > 0 {
		connCtx, cancel = context.WithTimeout(ctx, s.connectTimeout)
	}
	conn, err := s.db.Conn(connCtx)
	cancel()
	if err != nil {
		return &Error{Kind: KindConnection, Err: err}
	}
	defer conn.Close()

	stmt, err := conn.PrepareContext(ctx, s.insertSQL)
	if err != nil {
		return &Error{Kind: KindExecution, Err: err}
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, rec.Username, rec.RegNo, rec.Password); err != nil {
		return &Error{Kind: KindExecution, Err: err}
	}
	return nil
}

// EnsureTable creates the registration table when it does not exist yet.
// It is a development convenience and never alters an existing table.
func (s *Store) EnsureTable(ctx context.Context) error {
	var ddl string
	switch s.driver {
	case config.DriverSQLite:
		ddl = `CREATE TABLE IF NOT EXISTS %s (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL,
		regno TEXT NOT NULL,
		password TEXT NOT NULL
	);`
	case config.DriverMySQL:
		ddl = `CREATE TABLE IF NOT EXISTS %s (
		id INT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(255) NOT NULL,
		regno VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL
	);`
	default:
		return fmt.Errorf("no table definition for driver %q", s.driver)
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(ddl, s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

func (s *Store) Table() string { return s.table }

func (s *Store) Close() error {
	return s.db.Close()
}
