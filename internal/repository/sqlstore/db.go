// Package sqlstore implements the user store on database/sql for MySQL and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect captures the differences between the supported engines
type Dialect struct {
	Name       string
	driverName string
	schema     []string
	duplicate  func(error) bool
}

var MySQL = Dialect{
	Name:       "mysql",
	driverName: "mysql",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id          CHAR(36) PRIMARY KEY,
			email       VARCHAR(255) NOT NULL,
			password    VARCHAR(255) NOT NULL,
			phone       VARCHAR(32) NULL,
			first_name  VARCHAR(64) NULL,
			last_name   VARCHAR(64) NULL,
			role        VARCHAR(16) NOT NULL DEFAULT 'customer',
			gender      VARCHAR(16) NULL,
			created_at  DATETIME(6) NOT NULL,
			updated_at  DATETIME(6) NOT NULL,
			UNIQUE KEY users_email_key (email),
			UNIQUE KEY users_phone_key (phone)
		)`,
	},
	duplicate: func(err error) bool {
		var myErr *mysql.MySQLError
		return errors.As(err, &myErr) && myErr.Number == 1062
	},
}

var SQLite = Dialect{
	Name:       "sqlite",
	driverName: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS users (
			id          TEXT PRIMARY KEY,
			email       TEXT NOT NULL UNIQUE,
			password    TEXT NOT NULL,
			phone       TEXT UNIQUE,
			first_name  TEXT,
			last_name   TEXT,
			role        TEXT NOT NULL DEFAULT 'customer',
			gender      TEXT,
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL
		)`,
	},
	duplicate: func(err error) bool {
		var liteErr *sqlite.Error
		if !errors.As(err, &liteErr) {
			return false
		}
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	},
}

// DialectFor returns the dialect registered under name
func DialectFor(name string) (Dialect, error) {
	switch name {
	case MySQL.Name:
		return MySQL, nil
	case SQLite.Name:
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql dialect: %s", name)
	}
}

// Open opens and pings a database for the dialect
func Open(ctx context.Context, d Dialect, dsn string, maxOpenConns int) (*sql.DB, error) {
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", d.Name, err)
	}

	if maxOpenConns > 0 {
		db.SetMaxOpenConns(maxOpenConns)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", d.Name, err)
	}

	return db, nil
}

// EnsureSchema creates the users table when it does not exist
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create %s schema: %w", d.Name, err)
		}
	}
	return nil
}
