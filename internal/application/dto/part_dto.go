package dto

import (
	"github.com/shopspring/decimal"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// PartResponse proyección JSON de un repuesto del catálogo.
type PartResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Description  string          `json:"description"`
	Cost         decimal.Decimal `json:"cost"`
	ReorderPoint int64           `json:"reorder_point"`
}

// NewPartResponse proyecta la entidad.
func NewPartResponse(p *entity.Part) PartResponse {
	return PartResponse{
		ID:           p.ID,
		Code:         p.Code,
		Description:  p.Description,
		Cost:         p.Cost,
		ReorderPoint: p.ReorderPoint,
	}
}
