package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// Recorder es el registrador de movimientos de stock: el único camino legítimo
// para mutar el ledger. Valida conservación, persiste el movimiento y aplica
// el delta con bloqueo de fila, todo dentro de la transacción del caller.
type Recorder struct{}

// NewRecorder construye el registrador (sin estado).
func NewRecorder() *Recorder {
	return &Recorder{}
}

// MovementItemInput renglón de entrada para registrar un movimiento.
// Qty va firmado solo en ajustes; en los demás tipos debe ser > 0.
type MovementItemInput struct {
	PartID    string
	Qty       int64
	Condition string // good | defective
}

// MovementInput entrada para RecordInTx.
// Transferencias (request_fulfillment, return_receipt): Source debita, Destination acredita.
// Ajustes: solo Destination (la ubicación nombrada). Consumo: solo Source.
// TotalQty es la cantidad total declarada por el caller; en cero se computa
// de los renglones (la verificación de conservación deja de ser redundante
// cuando el caller la declara).
type MovementInput struct {
	Type        string
	Reference   string
	Source      entity.Location
	Destination entity.Location
	TotalQty    int64
	Items       []MovementItemInput
	CreatedBy   string
}

// lockTarget identifica una fila (ubicación, repuesto) a bloquear.
type lockTarget struct {
	loc    entity.Location
	partID string
}

// RecordInTx valida el movimiento, escribe StockMovement + MovementItems y
// aplica el delta al ledger usando los repositorios atados a la transacción
// del caller. Las filas del ledger se bloquean en orden determinístico de
// llave para evitar deadlocks entre transferencias concurrentes.
func (rec *Recorder) RecordInTx(
	ctx context.Context,
	movRepo repository.MovementRepository,
	invRepo repository.InventoryRepository,
	partRepo repository.PartRepository,
	in MovementInput,
) (*entity.StockMovement, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	declared := in.TotalQty
	if declared == 0 {
		declared = totalQty(in)
	}

	now := time.Now()
	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		Type:        in.Type,
		Reference:   in.Reference,
		Source:      in.Source,
		Destination: in.Destination,
		TotalQty:    declared,
		Status:      entity.MovementStatusCommitted,
		CreatedAt:   now,
		CreatedBy:   in.CreatedBy,
	}

	items, err := valuedItems(ctx, partRepo, mov, in.Items)
	if err != nil {
		return nil, err
	}
	if !mov.CheckConservation(items) {
		return nil, domain.ErrInvalidInput
	}

	if err := applyToLedger(ctx, invRepo, mov, in.Items, now); err != nil {
		return nil, err
	}
	if err := movRepo.Create(ctx, mov, items); err != nil {
		return nil, err
	}
	return mov, nil
}

// validateInput rechaza entradas malformadas antes de cualquier escritura.
func validateInput(in MovementInput) error {
	if in.Reference == "" || len(in.Items) == 0 {
		return domain.ErrInvalidInput
	}
	switch in.Type {
	case entity.MovementRequestFulfillment, entity.MovementReturnReceipt:
		if !in.Source.Valid() || !in.Destination.Valid() || in.Source.Equal(in.Destination) {
			return domain.ErrInvalidInput
		}
	case entity.MovementAdjustment:
		if !in.Destination.Valid() || in.Source.ID != "" {
			return domain.ErrInvalidInput
		}
	case entity.MovementConsumption:
		if !in.Source.Valid() || in.Destination.ID != "" {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.PartID == "" {
			return domain.ErrInvalidInput
		}
		if it.Condition != entity.ConditionGood && it.Condition != entity.ConditionDefective {
			return domain.ErrInvalidInput
		}
		if in.Type == entity.MovementAdjustment {
			if it.Qty == 0 {
				return domain.ErrInvalidInput
			}
		} else if it.Qty <= 0 {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// totalQty computa la cantidad total declarada (valor absoluto en ajustes).
func totalQty(in MovementInput) int64 {
	var sum int64
	for _, it := range in.Items {
		q := it.Qty
		if q < 0 {
			q = -q
		}
		sum += q
	}
	return sum
}

// valuedItems construye los MovementItem valorizados al costo promedio vigente.
func valuedItems(
	ctx context.Context,
	partRepo repository.PartRepository,
	mov *entity.StockMovement,
	inputs []MovementItemInput,
) ([]*entity.MovementItem, error) {
	items := make([]*entity.MovementItem, 0, len(inputs))
	for _, it := range inputs {
		part, err := partRepo.GetByID(ctx, it.PartID)
		if err != nil {
			return nil, err
		}
		if part == nil {
			return nil, domain.ErrNotFound
		}
		qty := decimal.NewFromInt(it.Qty)
		items = append(items, &entity.MovementItem{
			ID:         uuid.New().String(),
			MovementID: mov.ID,
			PartID:     it.PartID,
			Qty:        it.Qty,
			Condition:  it.Condition,
			UnitCost:   part.Cost,
			TotalCost:  qty.Mul(part.Cost),
		})
	}
	return items, nil
}

// applyToLedger bloquea las filas tocadas (SELECT FOR UPDATE) en orden de
// llave, aplica los deltas y persiste. Cualquier cantidad que quedaría
// negativa aborta con ErrInsufficientStock y la tx completa se revierte.
func applyToLedger(
	ctx context.Context,
	invRepo repository.InventoryRepository,
	mov *entity.StockMovement,
	inputs []MovementItemInput,
	now time.Time,
) error {
	targets := map[string]lockTarget{}
	add := func(loc entity.Location, partID string) {
		targets[loc.Key()+"|"+partID] = lockTarget{loc: loc, partID: partID}
	}
	for _, it := range inputs {
		switch mov.Type {
		case entity.MovementAdjustment:
			add(mov.Destination, it.PartID)
		case entity.MovementConsumption:
			add(mov.Source, it.PartID)
		default:
			add(mov.Source, it.PartID)
			add(mov.Destination, it.PartID)
		}
	}

	keys := make([]string, 0, len(targets))
	for k := range targets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	recs := make(map[string]*entity.InventoryRecord, len(keys))
	for _, k := range keys {
		t := targets[k]
		r, err := invRepo.GetForUpdate(ctx, t.loc, t.partID)
		if err != nil {
			return err
		}
		recs[k] = r
	}

	get := func(loc entity.Location, partID string) *entity.InventoryRecord {
		return recs[loc.Key()+"|"+partID]
	}
	for _, it := range inputs {
		switch mov.Type {
		case entity.MovementAdjustment:
			if !get(mov.Destination, it.PartID).Apply(it.Condition, it.Qty) {
				return domain.ErrInsufficientStock
			}
		case entity.MovementConsumption:
			if !get(mov.Source, it.PartID).Apply(it.Condition, -it.Qty) {
				return domain.ErrInsufficientStock
			}
		default:
			if !get(mov.Source, it.PartID).Apply(it.Condition, -it.Qty) {
				return domain.ErrInsufficientStock
			}
			if !get(mov.Destination, it.PartID).Apply(it.Condition, it.Qty) {
				return domain.ErrInsufficientStock
			}
		}
	}

	for _, k := range keys {
		recs[k].UpdatedAt = now
		if err := invRepo.Upsert(ctx, recs[k]); err != nil {
			return err
		}
	}
	return nil
}
