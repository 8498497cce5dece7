package repository

import (
	"context"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// ReturnRequestRepository define el puerto de persistencia de devoluciones de técnico.
type ReturnRequestRepository interface {
	Create(ctx context.Context, ret *entity.ReturnRequest, items []*entity.ReturnItem) error
	GetByID(ctx context.Context, id string) (*entity.ReturnRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.ReturnRequest, error)
	GetItems(ctx context.Context, returnID string) ([]*entity.ReturnItem, error)
	// UpdateStatus cambia el estado; reason solo aplica al rechazo.
	UpdateStatus(ctx context.Context, id, status, reason string) error
	UpdateItemReceived(ctx context.Context, itemID string, good, defective int64) error
	UpdateItemVerified(ctx context.Context, itemID string, good, defective int64) error
}
