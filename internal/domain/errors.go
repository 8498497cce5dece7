package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrStateConflict     = errors.New("operación ilegal para el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrConcurrency indica contención de bloqueo de fila o lectura obsoleta.
	// Es reintentable: el caller debe reenviar la misma decisión con la misma referencia.
	ErrConcurrency = errors.New("conflicto de concurrencia")
)
