package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrStockUnderflow = errors.New("la salida excede el total disponible")
	// ErrLockTimeout es transitorio: el llamador puede reintentar la operación.
	ErrLockTimeout = errors.New("tiempo de espera agotado al bloquear el ítem")
)

// IsTransient indica si el error puede resolverse reintentando la operación.
func IsTransient(err error) bool {
	return errors.Is(err, ErrLockTimeout)
}
