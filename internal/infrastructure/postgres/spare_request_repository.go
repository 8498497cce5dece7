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

var _ repository.SpareRequestRepository = (*SpareRequestRepo)(nil)

// SpareRequestRepo implementación de solicitudes sobre PostgreSQL.
type SpareRequestRepo struct {
	q Querier
}

// NewSpareRequestRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSpareRequestRepository(q Querier) *SpareRequestRepo {
	return &SpareRequestRepo{q: q}
}

const spareRequestColumns = `id, request_type, source_type, source_id, destination_type, destination_id,
	reason, status, parent_id, created_by, created_at, updated_at`

// Create persiste la solicitud con sus renglones.
func (r *SpareRequestRepo) Create(ctx context.Context, req *entity.SpareRequest, items []*entity.SpareRequestItem) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	query := `
		INSERT INTO spare_requests (` + spareRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.Type, req.Source.Type, req.Source.ID,
		req.Destination.Type, req.Destination.ID,
		req.Reason, req.Status, nullable(req.ParentID),
		req.CreatedBy, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return translateErr(fmt.Errorf("create spare request: %w", err))
	}

	itemQuery := `
		INSERT INTO spare_request_items (id, request_id, part_id, requested_qty, approved_qty)
		VALUES ($1, $2, $3, $4, $5)`
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.RequestID = req.ID
		if _, err := r.q.Exec(ctx, itemQuery, it.ID, it.RequestID, it.PartID, it.RequestedQty, it.ApprovedQty); err != nil {
			return translateErr(fmt.Errorf("create spare request item: %w", err))
		}
	}
	return nil
}

// GetByID obtiene la solicitud; nil si no existe.
func (r *SpareRequestRepo) GetByID(ctx context.Context, id string) (*entity.SpareRequest, error) {
	query := `SELECT ` + spareRequestColumns + ` FROM spare_requests WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// GetByIDForUpdate obtiene la solicitud bloqueando su fila (SELECT FOR UPDATE),
// para que decide/forward concurrentes se serialicen sobre la misma solicitud.
func (r *SpareRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.SpareRequest, error) {
	query := `SELECT ` + spareRequestColumns + ` FROM spare_requests WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *SpareRequestRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.SpareRequest, error) {
	req, err := scanSpareRequest(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateErr(fmt.Errorf("get spare request: %w", err))
	}
	return req, nil
}

// GetItems lista los renglones de una solicitud.
func (r *SpareRequestRepo) GetItems(ctx context.Context, requestID string) ([]*entity.SpareRequestItem, error) {
	query := `
		SELECT id, request_id, part_id, requested_qty, approved_qty
		FROM spare_request_items WHERE request_id = $1 ORDER BY part_id`
	rows, err := r.q.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list request items: %w", err)
	}
	defer rows.Close()
	var items []*entity.SpareRequestItem
	for rows.Next() {
		var it entity.SpareRequestItem
		if err := rows.Scan(&it.ID, &it.RequestID, &it.PartID, &it.RequestedQty, &it.ApprovedQty); err != nil {
			return nil, fmt.Errorf("scan request item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

// UpdateStatus avanza el estado de la solicitud.
func (r *SpareRequestRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE spare_requests SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return translateErr(fmt.Errorf("update request status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItemApproved fija la cantidad aprobada de un renglón.
func (r *SpareRequestRepo) UpdateItemApproved(ctx context.Context, itemID string, approvedQty int64) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE spare_request_items SET approved_qty = $2 WHERE id = $1`, itemID, approvedQty)
	if err != nil {
		return translateErr(fmt.Errorf("update item approved qty: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista solicitudes por filtro (estado y/o destino).
func (r *SpareRequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.SpareRequest, error) {
	query := `SELECT ` + spareRequestColumns + ` FROM spare_requests WHERE 1=1`
	var args []any
	pos := 1
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.Destination != nil {
		query += fmt.Sprintf(" AND destination_type = $%d AND destination_id = $%d", pos, pos+1)
		args = append(args, filter.Destination.Type, filter.Destination.ID)
		pos += 2
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list spare requests: %w", err)
	}
	defer rows.Close()
	var list []*entity.SpareRequest
	for rows.Next() {
		req, err := scanSpareRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spare request: %w", err)
		}
		list = append(list, req)
	}
	return list, rows.Err()
}

func scanSpareRequest(row pgx.Row) (*entity.SpareRequest, error) {
	var req entity.SpareRequest
	var parentID *string
	err := row.Scan(
		&req.ID, &req.Type,
		&req.Source.Type, &req.Source.ID,
		&req.Destination.Type, &req.Destination.ID,
		&req.Reason, &req.Status, &parentID,
		&req.CreatedBy, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID != nil {
		req.ParentID = *parentID
	}
	return &req, nil
}
