package dto

import (
	"time"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// ReturnItemInput renglón declarado por el técnico.
type ReturnItemInput struct {
	PartID       string `json:"part_id" validate:"required"`
	GoodQty      int64  `json:"good_qty" validate:"min=0"`
	DefectiveQty int64  `json:"defective_qty" validate:"min=0"`
}

// CreateReturnRequest body para POST /api/returns.
type CreateReturnRequest struct {
	Technician    LocationDTO       `json:"technician" validate:"required"`
	ServiceCenter LocationDTO       `json:"service_center" validate:"required"`
	Reason        string            `json:"reason"`
	Items         []ReturnItemInput `json:"items" validate:"required,min=1,dive"`
}

// ReceiveItemInput conteo físico al recibir.
type ReceiveItemInput struct {
	ItemID       string `json:"item_id" validate:"required"`
	GoodQty      int64  `json:"good_qty" validate:"min=0"`
	DefectiveQty int64  `json:"defective_qty" validate:"min=0"`
}

// ReceiveReturnRequest body para POST /api/returns/:id/receive.
type ReceiveReturnRequest struct {
	Items []ReceiveItemInput `json:"items" validate:"dive"`
}

// VerifyItemInput reconciliación por renglón.
type VerifyItemInput struct {
	ItemID       string `json:"item_id" validate:"required"`
	GoodQty      int64  `json:"good_qty" validate:"min=0"`
	DefectiveQty int64  `json:"defective_qty" validate:"min=0"`
}

// VerifyReturnRequest body para POST /api/returns/:id/verify.
type VerifyReturnRequest struct {
	Items []VerifyItemInput `json:"items" validate:"dive"`
}

// RejectReturnRequest body para POST /api/returns/:id/reject.
type RejectReturnRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ReturnItemResponse renglón en respuestas.
type ReturnItemResponse struct {
	ID                string `json:"id"`
	PartID            string `json:"part_id"`
	DeclaredGood      int64  `json:"declared_good"`
	DeclaredDefective int64  `json:"declared_defective"`
	ReceivedGood      *int64 `json:"received_good,omitempty"`
	ReceivedDefective *int64 `json:"received_defective,omitempty"`
	VerifiedGood      *int64 `json:"verified_good,omitempty"`
	VerifiedDefective *int64 `json:"verified_defective,omitempty"`
}

// ReturnResponse proyección JSON de una devolución.
type ReturnResponse struct {
	ID            string               `json:"id"`
	Technician    LocationDTO          `json:"technician"`
	ServiceCenter LocationDTO          `json:"service_center"`
	Reason        string               `json:"reason,omitempty"`
	Status        string               `json:"status"`
	RejectReason  string               `json:"reject_reason,omitempty"`
	CreatedBy     string               `json:"created_by"`
	CreatedAt     time.Time            `json:"created_at"`
	Items         []ReturnItemResponse `json:"items,omitempty"`
}

// NewReturnResponse proyecta la entidad y sus renglones.
func NewReturnResponse(ret *entity.ReturnRequest, items []*entity.ReturnItem) ReturnResponse {
	out := ReturnResponse{
		ID:            ret.ID,
		Technician:    LocationDTO{Type: ret.Technician.Type, ID: ret.Technician.ID},
		ServiceCenter: LocationDTO{Type: ret.ServiceCenter.Type, ID: ret.ServiceCenter.ID},
		Reason:        ret.Reason,
		Status:        ret.Status,
		RejectReason:  ret.RejectReason,
		CreatedBy:     ret.CreatedBy,
		CreatedAt:     ret.CreatedAt,
	}
	for _, it := range items {
		out.Items = append(out.Items, ReturnItemResponse{
			ID:                it.ID,
			PartID:            it.PartID,
			DeclaredGood:      it.DeclaredGood,
			DeclaredDefective: it.DeclaredDefective,
			ReceivedGood:      it.ReceivedGood,
			ReceivedDefective: it.ReceivedDefective,
			VerifiedGood:      it.VerifiedGood,
			VerifiedDefective: it.VerifiedDefective,
		})
	}
	return out
}
