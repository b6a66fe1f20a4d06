package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx: los repositorios funcionan con ambos.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// mapError traduce errores de PostgreSQL a errores de dominio y agrega contexto con op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case "22P02": // invalid_text_representation: un id que no es UUID no puede existir
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrInvalidInput)
		case "22003": // numeric_value_out_of_range
			return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
		case "55P03", "40P01", "40001": // lock_not_available, deadlock_detected, serialization_failure
			return fmt.Errorf("%s: %w", op, domain.ErrLockTimeout)
		}
		// 57014 (query_canceled) no es espera de bloqueo: statement_timeout o cancelación del cliente.
	}
	return fmt.Errorf("%s: %w", op, err)
}

// nullable convierte "" en NULL para columnas UUID opcionales.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// limitArg devuelve NULL (sin límite) cuando limit <= 0.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}
