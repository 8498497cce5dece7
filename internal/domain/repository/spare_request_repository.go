package repository

import (
	"context"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// RequestFilter filtros para listar solicitudes.
type RequestFilter struct {
	Status      string
	Destination *entity.Location
	Limit       int
	Offset      int
}

// SpareRequestRepository define el puerto de persistencia de solicitudes de repuestos.
type SpareRequestRepository interface {
	Create(ctx context.Context, req *entity.SpareRequest, items []*entity.SpareRequestItem) error
	GetByID(ctx context.Context, id string) (*entity.SpareRequest, error)
	// GetByIDForUpdate bloquea la solicitud durante decide/forward para que dos
	// aprobadores concurrentes no decidan la misma solicitud.
	GetByIDForUpdate(ctx context.Context, id string) (*entity.SpareRequest, error)
	GetItems(ctx context.Context, requestID string) ([]*entity.SpareRequestItem, error)
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateItemApproved(ctx context.Context, itemID string, approvedQty int64) error
	List(ctx context.Context, filter RequestFilter) ([]*entity.SpareRequest, error)
}
