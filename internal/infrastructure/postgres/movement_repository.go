package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del log de movimientos sobre PostgreSQL.
// Append-only: no hay UPDATE salvo el estado terminal.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create persiste el movimiento y sus renglones. El índice único sobre
// (movement_type, reference) detecta referencias duplicadas en reintentos.
func (r *MovementRepo) Create(ctx context.Context, mov *entity.StockMovement, items []*entity.MovementItem) error {
	if mov.ID == "" {
		mov.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_movements (id, movement_type, reference, source_type, source_id,
			destination_type, destination_id, total_qty, status, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		mov.ID, mov.Type, mov.Reference,
		nullable(mov.Source.Type), nullable(mov.Source.ID),
		nullable(mov.Destination.Type), nullable(mov.Destination.ID),
		mov.TotalQty, mov.Status, mov.CreatedAt, nullable(mov.CreatedBy),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return translateErr(fmt.Errorf("create stock movement: %w", err))
	}

	itemQuery := `
		INSERT INTO movement_items (id, movement_id, part_id, qty, condition, unit_cost, total_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.New().String()
		}
		it.MovementID = mov.ID
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.MovementID, it.PartID, it.Qty, it.Condition, it.UnitCost, it.TotalCost,
		); err != nil {
			return translateErr(fmt.Errorf("create movement item: %w", err))
		}
	}
	return nil
}

// GetByID obtiene un movimiento con sus renglones; nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, []*entity.MovementItem, error) {
	mov, err := r.getOne(ctx, `WHERE id = $1`, id)
	if err != nil || mov == nil {
		return mov, nil, err
	}
	itemQuery := `
		SELECT id, movement_id, part_id, qty, condition, unit_cost, total_cost
		FROM movement_items WHERE movement_id = $1 ORDER BY part_id, condition`
	rows, err := r.q.Query(ctx, itemQuery, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list movement items: %w", err)
	}
	defer rows.Close()
	var items []*entity.MovementItem
	for rows.Next() {
		var it entity.MovementItem
		if err := rows.Scan(&it.ID, &it.MovementID, &it.PartID, &it.Qty, &it.Condition, &it.UnitCost, &it.TotalCost); err != nil {
			return nil, nil, fmt.Errorf("scan movement item: %w", err)
		}
		items = append(items, &it)
	}
	return mov, items, rows.Err()
}

// GetByTypeAndReference busca un movimiento por tipo y referencia; nil si no existe.
func (r *MovementRepo) GetByTypeAndReference(ctx context.Context, movType, reference string) (*entity.StockMovement, error) {
	return r.getOne(ctx, `WHERE movement_type = $1 AND reference = $2`, movType, reference)
}

func (r *MovementRepo) getOne(ctx context.Context, where string, args ...any) (*entity.StockMovement, error) {
	query := `
		SELECT id, movement_type, reference, source_type, source_id,
			destination_type, destination_id, total_qty, status, created_at, created_by
		FROM stock_movements ` + where
	mov, err := scanMovement(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateErr(fmt.Errorf("get stock movement: %w", err))
	}
	return mov, nil
}

// UpdateStatus fija el estado terminal de un movimiento (reversed).
func (r *MovementRepo) UpdateStatus(ctx context.Context, id, status string) error {
	tag, err := r.q.Exec(ctx, `UPDATE stock_movements SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return translateErr(fmt.Errorf("update movement status: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByLocation lista movimientos que tocan una ubicación (origen o destino)
// en un rango de fechas opcional.
func (r *MovementRepo) ListByLocation(ctx context.Context, loc entity.Location, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, movement_type, reference, source_type, source_id,
			destination_type, destination_id, total_qty, status, created_at, created_by
		FROM stock_movements
		WHERE ((source_type = $1 AND source_id = $2) OR (destination_type = $1 AND destination_id = $2))`
	args := []any{loc.Type, loc.ID}
	pos := 3
	if from != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by location: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		mov, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, mov)
	}
	return list, rows.Err()
}

// scanMovement arma la entidad desde una fila (columnas de ubicación nullables).
func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	var srcType, srcID, dstType, dstID, createdBy *string
	err := row.Scan(
		&m.ID, &m.Type, &m.Reference,
		&srcType, &srcID, &dstType, &dstID,
		&m.TotalQty, &m.Status, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if srcType != nil && srcID != nil {
		m.Source = entity.Location{Type: *srcType, ID: *srcID}
	}
	if dstType != nil && dstID != nil {
		m.Destination = entity.Location{Type: *dstType, ID: *dstID}
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// nullable convierte "" a NULL para columnas opcionales.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
