package repository

import (
	"context"
	"time"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// MovementRepository define el puerto de persistencia del log append-only de
// movimientos de stock. No hay Update de filas: la única mutación permitida
// post-commit es el estado terminal (reversed).
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement, items []*entity.MovementItem) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, []*entity.MovementItem, error)
	// GetByTypeAndReference resuelve detección de referencia duplicada para
	// reintentos idempotentes.
	GetByTypeAndReference(ctx context.Context, movType, reference string) (*entity.StockMovement, error)
	UpdateStatus(ctx context.Context, id, status string) error
	ListByLocation(ctx context.Context, loc entity.Location, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
}
