package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Init opens the record store behind the gallery. Supported drivers are
// "sqlite" (modernc, default) and "pgx" (PostgreSQL).
func Init(driver, connection string) (*sqlx.DB, error) {
	if driver == "sqlite" {
		if err := ensureSQLiteDir(connection); err != nil {
			return nil, err
		}
	}

	conn, err := sqlx.Connect(driver, connection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}
	configurePool(conn, driver)

	slog.Info("database connected", "driver", driver)
	return conn, nil
}

func configurePool(conn *sqlx.DB, driver string) {
	conn.SetConnMaxLifetime(5 * time.Minute)

	// SQLite serializes writers anyway; one connection avoids SQLITE_BUSY
	if driver == "sqlite" {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		return
	}
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
}

// ensureSQLiteDir creates the directory of a file-backed database
func ensureSQLiteDir(connection string) error {
	path, _, _ := strings.Cut(strings.TrimPrefix(connection, "file:"), "?")
	if path == "" || path == ":memory:" {
		return nil
	}

	err := os.MkdirAll(filepath.Dir(path), 0755)
	if err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

func Close(conn *sqlx.DB) error {
	if conn == nil {
		return nil
	}
	return conn.Close()
}
