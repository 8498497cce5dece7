package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// PartRepository define el puerto de lectura del catálogo de repuestos.
// Los repuestos son datos maestros; solo el costo promedio se actualiza aquí.
type PartRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Part, error)
	GetByCode(ctx context.Context, code string) (*entity.Part, error)
	UpdateCost(ctx context.Context, partID string, cost decimal.Decimal) error
	List(ctx context.Context, limit, offset int) ([]*entity.Part, error)
}
