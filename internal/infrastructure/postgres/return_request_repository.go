package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

var _ repository.ReturnRequestRepository = (*ReturnRequestRepo)(nil)

// ReturnRequestRepo implementación de devoluciones sobre PostgreSQL.
type ReturnRequestRepo struct {
	q Querier
}

// NewReturnRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReturnRequestRepository(q Querier) *ReturnRequestRepo {
	return &ReturnRequestRepo{q: q}
}

const returnColumns = `id, technician_id, service_center_id, reason, status, reject_reason,
	created_by, created_at, updated_at`

// Create persiste la devolución con sus renglones.
func (r *ReturnRequestRepo) Create(ctx context.Context, ret *entity.ReturnRequest, items []*entity.ReturnItem) error {
	if ret.ID == "" {
		ret.ID = uuid.New().String()
	}
	query := `
		INSERT INTO return_requests (` + returnColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		ret.ID, ret.Technician.ID, ret.ServiceCenter.ID,
		ret.Reason, ret.Status, nullable(ret.RejectReason),
		ret.CreatedBy, ret.CreatedAt, ret.UpdatedAt,
	)
	if err != nil {
		return translateErr(fmt.Errorf("create return request: %w", err))
	}

	itemQuery := `
		INSERT INTO return_items (id, return_id, part_id, declared_good, declared_defective,
			received_good, received_defective, verified_good, verified_defective)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.ReturnID = ret.ID
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.ReturnID, it.PartID, it.DeclaredGood, it.DeclaredDefective,
			it.ReceivedGood, it.ReceivedDefective, it.VerifiedGood, it.VerifiedDefective,
		); err != nil {
			return translateErr(fmt.Errorf("create return item: %w", err))
		}
	}
	return nil
}

// GetByID obtiene la devolución; nil si no existe.
func (r *ReturnRequestRepo) GetByID(ctx context.Context, id string) (*entity.ReturnRequest, error) {
	query := `SELECT ` + returnColumns + ` FROM return_requests WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByIDForUpdate obtiene la devolución bloqueando su fila.
func (r *ReturnRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ReturnRequest, error) {
	query := `SELECT ` + returnColumns + ` FROM return_requests WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *ReturnRequestRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.ReturnRequest, error) {
	var ret entity.ReturnRequest
	var technicianID, serviceCenterID string
	var rejectReason *string
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&ret.ID, &technicianID, &serviceCenterID,
		&ret.Reason, &ret.Status, &rejectReason,
		&ret.CreatedBy, &ret.CreatedAt, &ret.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateErr(fmt.Errorf("get return request: %w", err))
	}
	ret.Technician = entity.Location{Type: entity.LocationTechnician, ID: technicianID}
	ret.ServiceCenter = entity.Location{Type: entity.LocationServiceCenter, ID: serviceCenterID}
	if rejectReason != nil {
		ret.RejectReason = *rejectReason
	}
	return &ret, nil
}

// GetItems lista los renglones de una devolución.
func (r *ReturnRequestRepo) GetItems(ctx context.Context, returnID string) ([]*entity.ReturnItem, error) {
	query := `
		SELECT id, return_id, part_id, declared_good, declared_defective,
			received_good, received_defective, verified_good, verified_defective
		FROM return_items WHERE return_id = $1 ORDER BY part_id`
	rows, err := r.q.Query(ctx, query, returnID)
	if err != nil {
		return nil, fmt.Errorf("list return items: %w", err)
	}
	defer rows.Close()
	var items []*entity.ReturnItem
	for rows.Next() {
		var it entity.ReturnItem
		if err := rows.Scan(&it.ID, &it.ReturnID, &it.PartID,
			&it.DeclaredGood, &it.DeclaredDefective,
			&it.ReceivedGood, &it.ReceivedDefective,
			&it.VerifiedGood, &it.VerifiedDefective); err != nil {
			return nil, fmt.Errorf("scan return item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpdateStatus avanza el estado; reason solo se escribe en el rechazo.
func (r *ReturnRequestRepo) UpdateStatus(ctx context.Context, id, status, reason string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE return_requests
		SET status = $2, reject_reason = COALESCE(NULLIF($3, ''), reject_reason), updated_at = now()
		WHERE id = $1`, id, status, reason)
	if err != nil {
		return translateErr(fmt.Errorf("update return status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItemReceived fija lo contado al recibir.
func (r *ReturnRequestRepo) UpdateItemReceived(ctx context.Context, itemID string, good, defective int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE return_items SET received_good = $2, received_defective = $3 WHERE id = $1`,
		itemID, good, defective)
	if err != nil {
		return translateErr(fmt.Errorf("update item received: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItemVerified fija lo reconciliado al verificar.
func (r *ReturnRequestRepo) UpdateItemVerified(ctx context.Context, itemID string, good, defective int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE return_items SET verified_good = $2, verified_defective = $3 WHERE id = $1`,
		itemID, good, defective)
	if err != nil {
		return translateErr(fmt.Errorf("update item verified: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
