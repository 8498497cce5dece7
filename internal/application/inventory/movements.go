package inventory

import (
	"context"
	"time"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// MovementQueryUseCase consultas de solo lectura sobre el log de movimientos.
type MovementQueryUseCase struct {
	movRepo repository.MovementRepository
}

// NewMovementQueryUseCase construye el caso de uso sobre el pool.
func NewMovementQueryUseCase(movRepo repository.MovementRepository) *MovementQueryUseCase {
	return &MovementQueryUseCase{movRepo: movRepo}
}

// GetByID devuelve un movimiento con sus renglones.
func (uc *MovementQueryUseCase) GetByID(ctx context.Context, id string) (*entity.StockMovement, []*entity.MovementItem, error) {
	mov, items, err := uc.movRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if mov == nil {
		return nil, nil, domain.ErrNotFound
	}
	return mov, items, nil
}

// ListByLocation lista movimientos que tocan una ubicación en un rango de fechas.
func (uc *MovementQueryUseCase) ListByLocation(ctx context.Context, loc entity.Location, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	if !loc.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.ListByLocation(ctx, loc, from, to, limit, offset)
}
