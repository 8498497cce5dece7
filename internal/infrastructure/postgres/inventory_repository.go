package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Get obtiene el registro de inventario; fila ausente se lee como cero
// (las filas se materializan con el primer movimiento).
func (r *InventoryRepo) Get(ctx context.Context, loc entity.Location, partID string) (*entity.InventoryRecord, error) {
	query := `
		SELECT location_type, location_id, part_id, qty_good, qty_defective, updated_at
		FROM inventory_records
		WHERE location_type = $1 AND location_id = $2 AND part_id = $3`
	return r.scanOne(ctx, query, loc, partID)
}

// GetForUpdate obtiene el registro y bloquea la fila (SELECT FOR UPDATE).
func (r *InventoryRepo) GetForUpdate(ctx context.Context, loc entity.Location, partID string) (*entity.InventoryRecord, error) {
	query := `
		SELECT location_type, location_id, part_id, qty_good, qty_defective, updated_at
		FROM inventory_records
		WHERE location_type = $1 AND location_id = $2 AND part_id = $3
		FOR UPDATE`
	return r.scanOne(ctx, query, loc, partID)
}

func (r *InventoryRepo) scanOne(ctx context.Context, query string, loc entity.Location, partID string) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := r.q.QueryRow(ctx, query, loc.Type, loc.ID, partID).Scan(
		&rec.Location.Type, &rec.Location.ID, &rec.PartID,
		&rec.QtyGood, &rec.QtyDefective, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.InventoryRecord{Location: loc, PartID: partID}, nil
		}
		return nil, translateErr(fmt.Errorf("get inventory record: %w", err))
	}
	return &rec, nil
}

// Upsert inserta o actualiza las cantidades por (ubicación, repuesto).
func (r *InventoryRepo) Upsert(ctx context.Context, rec *entity.InventoryRecord) error {
	query := `
		INSERT INTO inventory_records (location_type, location_id, part_id, qty_good, qty_defective, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (location_type, location_id, part_id)
		DO UPDATE SET qty_good = EXCLUDED.qty_good, qty_defective = EXCLUDED.qty_defective, updated_at = now()`
	_, err := r.q.Exec(ctx, query,
		rec.Location.Type, rec.Location.ID, rec.PartID, rec.QtyGood, rec.QtyDefective,
	)
	if err != nil {
		return translateErr(fmt.Errorf("upsert inventory record: %w", err))
	}
	return nil
}

// ListByLocation lista el inventario de una ubicación.
func (r *InventoryRepo) ListByLocation(ctx context.Context, loc entity.Location, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT location_type, location_id, part_id, qty_good, qty_defective, updated_at
		FROM inventory_records
		WHERE location_type = $1 AND location_id = $2
		ORDER BY part_id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, loc.Type, loc.ID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list inventory by location: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryRecord
	for rows.Next() {
		var rec entity.InventoryRecord
		if err := rows.Scan(&rec.Location.Type, &rec.Location.ID, &rec.PartID,
			&rec.QtyGood, &rec.QtyDefective, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}

// ListBelowReorderPoint devuelve los repuestos de la ubicación cuya cantidad
// buena es menor que su punto de reorden, por déficit descendente.
func (r *InventoryRepo) ListBelowReorderPoint(ctx context.Context, loc entity.Location) ([]repository.LowStockItem, error) {
	query := `
		SELECT
			p.id,
			p.code,
			p.description,
			COALESCE(i.qty_good, 0) AS qty_good,
			p.reorder_point
		FROM parts p
		LEFT JOIN inventory_records i
			ON i.part_id = p.id AND i.location_type = $1 AND i.location_id = $2
		WHERE p.reorder_point > 0
		  AND COALESCE(i.qty_good, 0) < p.reorder_point
		ORDER BY (p.reorder_point - COALESCE(i.qty_good, 0)) DESC`
	rows, err := r.q.Query(ctx, query, loc.Type, loc.ID)
	if err != nil {
		return nil, fmt.Errorf("list below reorder point: %w", err)
	}
	defer rows.Close()
	var items []repository.LowStockItem
	for rows.Next() {
		var it repository.LowStockItem
		if err := rows.Scan(&it.PartID, &it.Code, &it.Description, &it.QtyGood, &it.ReorderPoint); err != nil {
			return nil, fmt.Errorf("scan low stock item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
