package dto

import (
	"time"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// RequestItemInput renglón solicitado.
type RequestItemInput struct {
	PartID string `json:"part_id" validate:"required"`
	Qty    int64  `json:"qty" validate:"required,gt=0"`
}

// CreateRequestRequest body para POST /api/requests.
type CreateRequestRequest struct {
	Type        string             `json:"type" validate:"required,oneof=technician_issue consignment_fillup consignment_return"`
	Source      LocationDTO        `json:"source" validate:"required"`
	Destination LocationDTO        `json:"destination" validate:"required"`
	Reason      string             `json:"reason"`
	Items       []RequestItemInput `json:"items" validate:"required,min=1,dive"`
}

// ItemDecisionInput decisión por renglón para POST /api/requests/:id/decide.
type ItemDecisionInput struct {
	ItemID      string `json:"item_id" validate:"required"`
	ApprovedQty int64  `json:"approved_qty" validate:"min=0"`
}

// DecideRequestRequest body para decidir una solicitud.
type DecideRequestRequest struct {
	Items []ItemDecisionInput `json:"items" validate:"dive"`
}

// ForwardRequestRequest body para reenviar aguas arriba.
type ForwardRequestRequest struct {
	Upstream LocationDTO `json:"upstream" validate:"required"`
}

// CompleteRequestRequest body para cerrar una solicitud allocated.
type CompleteRequestRequest struct {
	Consume bool `json:"consume"`
}

// RequestItemResponse renglón en respuestas.
type RequestItemResponse struct {
	ID           string `json:"id"`
	PartID       string `json:"part_id"`
	RequestedQty int64  `json:"requested_qty"`
	ApprovedQty  *int64 `json:"approved_qty,omitempty"`
}

// RequestResponse proyección JSON de una solicitud.
type RequestResponse struct {
	ID          string                `json:"id"`
	Type        string                `json:"type"`
	Source      LocationDTO           `json:"source"`
	Destination LocationDTO           `json:"destination"`
	Reason      string                `json:"reason,omitempty"`
	Status      string                `json:"status"`
	ParentID    string                `json:"parent_id,omitempty"`
	CreatedBy   string                `json:"created_by"`
	CreatedAt   time.Time             `json:"created_at"`
	Items       []RequestItemResponse `json:"items,omitempty"`
}

// NewRequestResponse proyecta la entidad y sus renglones.
func NewRequestResponse(req *entity.SpareRequest, items []*entity.SpareRequestItem) RequestResponse {
	out := RequestResponse{
		ID:          req.ID,
		Type:        req.Type,
		Source:      LocationDTO{Type: req.Source.Type, ID: req.Source.ID},
		Destination: LocationDTO{Type: req.Destination.Type, ID: req.Destination.ID},
		Reason:      req.Reason,
		Status:      req.Status,
		ParentID:    req.ParentID,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   req.CreatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, RequestItemResponse{
			ID:           it.ID,
			PartID:       it.PartID,
			RequestedQty: it.RequestedQty,
			ApprovedQty:  it.ApprovedQty,
		})
	}
	return out
}
