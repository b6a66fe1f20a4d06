// Package sqlite implementa los repositorios del libro sobre SQLite embebido (modernc.org/sqlite, sin cgo).
//
// Se usa una sola conexión: las transacciones quedan serializadas y equivalen al bloqueo
// exclusivo de la fila del ítem que PostgreSQL obtiene con SELECT ... FOR UPDATE.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Querier es lo común entre *sql.DB, *sql.Conn y *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open abre (o crea) la base y aplica el esquema. path ":memory:" crea una base efímera.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		path = "inventario.db"
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate aplica el esquema embebido (idempotente).
func Migrate(ctx context.Context, q Querier) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("aplicar esquema: %w", err)
		}
	}
	return nil
}

// mapError traduce códigos extendidos de SQLite a errores de dominio.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%s: %w", op, domain.ErrLockTimeout)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Los instantes se guardan como nanosegundos UTC para ordenar sin depender del formato de texto.
func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// limitArg: en SQLite LIMIT -1 equivale a sin límite.
func limitArg(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}
