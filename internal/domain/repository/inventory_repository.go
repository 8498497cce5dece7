package repository

import (
	"context"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// LowStockItem es una fila del reporte de stock bajo por ubicación.
type LowStockItem struct {
	PartID       string
	Code         string
	Description  string
	QtyGood      int64
	ReorderPoint int64
}

// InventoryRepository define el puerto al ledger de inventario por
// (ubicación, repuesto). Las escrituras solo ocurren dentro de la transacción
// del registrador de movimientos.
type InventoryRepository interface {
	// Get devuelve el registro; si la fila no existe, un registro en cero
	// (las filas se crean perezosamente con el primer movimiento).
	Get(ctx context.Context, loc entity.Location, partID string) (*entity.InventoryRecord, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la tx actual.
	GetForUpdate(ctx context.Context, loc entity.Location, partID string) (*entity.InventoryRecord, error)
	Upsert(ctx context.Context, rec *entity.InventoryRecord) error
	ListByLocation(ctx context.Context, loc entity.Location, limit, offset int) ([]*entity.InventoryRecord, error)
	// ListBelowReorderPoint devuelve los repuestos cuya cantidad buena en la
	// ubicación quedó por debajo de su punto de reorden, por déficit descendente.
	ListBelowReorderPoint(ctx context.Context, loc entity.Location) ([]LowStockItem, error)
}
