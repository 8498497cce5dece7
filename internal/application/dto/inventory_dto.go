package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// AdjustInventoryRequest body para POST /api/inventory/adjust.
// Deltas firmados; unit_cost solo aplica a entradas de cantidad buena.
type AdjustInventoryRequest struct {
	Location       LocationDTO      `json:"location" validate:"required"`
	PartID         string           `json:"part_id" validate:"required"`
	DeltaGood      int64            `json:"delta_good"`
	DeltaDefective int64            `json:"delta_defective"`
	Reason         string           `json:"reason" validate:"required"`
	UnitCost       *decimal.Decimal `json:"unit_cost,omitempty"`
}

// AvailabilityResponse respuesta de GET /api/inventory/availability.
type AvailabilityResponse struct {
	Location LocationDTO `json:"location"`
	PartID   string      `json:"part_id"`
	QtyGood  int64       `json:"qty_good"`
}

// StockRecordResponse fila del ledger en listados por ubicación.
type StockRecordResponse struct {
	Location     LocationDTO `json:"location"`
	PartID       string      `json:"part_id"`
	QtyGood      int64       `json:"qty_good"`
	QtyDefective int64       `json:"qty_defective"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// MovementResponse proyección JSON de un movimiento.
type MovementResponse struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Reference   string                 `json:"reference"`
	Source      *LocationDTO           `json:"source,omitempty"`
	Destination *LocationDTO           `json:"destination,omitempty"`
	TotalQty    int64                  `json:"total_qty"`
	Status      string                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	Items       []MovementItemResponse `json:"items,omitempty"`
}

// MovementItemResponse renglón de movimiento en respuestas.
type MovementItemResponse struct {
	PartID    string          `json:"part_id"`
	Qty       int64           `json:"qty"`
	Condition string          `json:"condition"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// LowStockResponse fila del reporte de stock bajo.
type LowStockResponse struct {
	PartID       string `json:"part_id"`
	Code         string `json:"code"`
	Description  string `json:"description"`
	QtyGood      int64  `json:"qty_good"`
	ReorderPoint int64  `json:"reorder_point"`
}

// NewMovementResponse proyecta un movimiento y sus renglones.
func NewMovementResponse(mov *entity.StockMovement, items []*entity.MovementItem) MovementResponse {
	out := MovementResponse{
		ID:        mov.ID,
		Type:      mov.Type,
		Reference: mov.Reference,
		TotalQty:  mov.TotalQty,
		Status:    mov.Status,
		CreatedAt: mov.CreatedAt,
	}
	if mov.Source.ID != "" {
		out.Source = &LocationDTO{Type: mov.Source.Type, ID: mov.Source.ID}
	}
	if mov.Destination.ID != "" {
		out.Destination = &LocationDTO{Type: mov.Destination.Type, ID: mov.Destination.ID}
	}
	for _, it := range items {
		out.Items = append(out.Items, MovementItemResponse{
			PartID:    it.PartID,
			Qty:       it.Qty,
			Condition: it.Condition,
			UnitCost:  it.UnitCost,
			TotalCost: it.TotalCost,
		})
	}
	return out
}
