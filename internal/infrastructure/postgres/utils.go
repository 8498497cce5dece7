package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/serviplus/repuestos-api/internal/domain"
)

// Códigos de error PostgreSQL relevantes para el motor.
const (
	codeUniqueViolation      = "23505"
	codeLockNotAvailable     = "55P03"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeCheckViolation       = "23514"
)

// translateErr mapea errores de PostgreSQL a errores de dominio.
// Contención de bloqueo y fallas de serialización quedan como ErrConcurrency
// (reintentable); la violación del CHECK qty >= 0 es la última línea de
// defensa del invariante y se reporta como stock insuficiente.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return domain.ErrDuplicate
	case codeLockNotAvailable, codeSerializationFailure, codeDeadlockDetected:
		return domain.ErrConcurrency
	case codeCheckViolation:
		return domain.ErrInsufficientStock
	}
	return err
}

// isUniqueViolation verifica si un error es violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}
