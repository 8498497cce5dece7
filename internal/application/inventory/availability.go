package inventory

import (
	"context"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// AvailabilityUseCase es el lado de lectura del ledger. No reserva stock:
// la disponibilidad definitiva se evalúa dentro de la misma transacción que
// aplica el movimiento, bajo bloqueo de fila.
type AvailabilityUseCase struct {
	invRepo repository.InventoryRepository
}

// NewAvailabilityUseCase construye el caso de uso sobre el pool (lecturas fuera de tx).
func NewAvailabilityUseCase(invRepo repository.InventoryRepository) *AvailabilityUseCase {
	return &AvailabilityUseCase{invRepo: invRepo}
}

// Available devuelve la cantidad buena disponible de un repuesto en una ubicación.
func (uc *AvailabilityUseCase) Available(ctx context.Context, loc entity.Location, partID string) (int64, error) {
	if !loc.Valid() || partID == "" {
		return 0, domain.ErrInvalidInput
	}
	rec, err := uc.invRepo.Get(ctx, loc, partID)
	if err != nil {
		return 0, err
	}
	return rec.QtyGood, nil
}

// StockByLocation lista los registros de inventario de una ubicación.
func (uc *AvailabilityUseCase) StockByLocation(ctx context.Context, loc entity.Location, limit, offset int) ([]*entity.InventoryRecord, error) {
	if !loc.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return uc.invRepo.ListByLocation(ctx, loc, limit, offset)
}

// LowStock devuelve los repuestos bajo su punto de reorden en la ubicación.
func (uc *AvailabilityUseCase) LowStock(ctx context.Context, loc entity.Location) ([]repository.LowStockItem, error) {
	if !loc.Valid() {
		return nil, domain.ErrInvalidInput
	}
	return uc.invRepo.ListBelowReorderPoint(ctx, loc)
}
