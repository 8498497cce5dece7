package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

// PartRepo implementación del catálogo de repuestos sobre PostgreSQL.
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

const partColumns = `id, code, description, cost, reorder_point, created_at`

// GetByID obtiene un repuesto por id; nil si no existe.
func (r *PartRepo) GetByID(ctx context.Context, id string) (*entity.Part, error) {
	return r.scanOne(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1`, id)
}

// GetByCode obtiene un repuesto por código; nil si no existe.
func (r *PartRepo) GetByCode(ctx context.Context, code string) (*entity.Part, error) {
	return r.scanOne(ctx, `SELECT `+partColumns+` FROM parts WHERE code = $1`, code)
}

func (r *PartRepo) scanOne(ctx context.Context, query string, args ...any) (*entity.Part, error) {
	var p entity.Part
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Code, &p.Description, &p.Cost, &p.ReorderPoint, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateErr(fmt.Errorf("get part: %w", err))
	}
	return &p, nil
}

// UpdateCost actualiza el costo promedio ponderado del repuesto.
func (r *PartRepo) UpdateCost(ctx context.Context, partID string, cost decimal.Decimal) error {
	tag, err := r.q.Exec(ctx, `UPDATE parts SET cost = $2 WHERE id = $1`, partID, cost)
	if err != nil {
		return translateErr(fmt.Errorf("update part cost: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista el catálogo paginado por código.
func (r *PartRepo) List(ctx context.Context, limit, offset int) ([]*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts ORDER BY code LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Part
	for rows.Next() {
		var p entity.Part
		if err := rows.Scan(&p.ID, &p.Code, &p.Description, &p.Cost, &p.ReorderPoint, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
