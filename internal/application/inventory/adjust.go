package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/inventory"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// AdjustUseCase es el único camino sancionado para correcciones manuales de
// stock (carga inicial, conteo físico, reclasificación). Todo delta pasa por
// el registrador, así cada cambio queda auditado como movimiento.
type AdjustUseCase struct {
	txRunner TxRunner
	recorder *Recorder
}

// NewAdjustUseCase construye el caso de uso.
func NewAdjustUseCase(txRunner TxRunner, recorder *Recorder) *AdjustUseCase {
	return &AdjustUseCase{txRunner: txRunner, recorder: recorder}
}

// AdjustInput entrada para un ajuste manual sobre una sola ubicación.
// UnitCost solo aplica a entradas de cantidad buena (recalcula costo promedio).
type AdjustInput struct {
	Location       entity.Location
	PartID         string
	DeltaGood      int64
	DeltaDefective int64
	Reason         string
	UnitCost       *decimal.Decimal
	CreatedBy      string
}

// Adjust registra un movimiento de ajuste y aplica el delta al ledger en una
// transacción. Devuelve el id del movimiento creado.
func (uc *AdjustUseCase) Adjust(ctx context.Context, in AdjustInput) (string, error) {
	if !in.Location.Valid() || in.PartID == "" || in.Reason == "" {
		return "", domain.ErrInvalidInput
	}
	if in.DeltaGood == 0 && in.DeltaDefective == 0 {
		return "", domain.ErrInvalidInput
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return "", domain.ErrInvalidInput
	}

	var items []MovementItemInput
	if in.DeltaGood != 0 {
		items = append(items, MovementItemInput{PartID: in.PartID, Qty: in.DeltaGood, Condition: entity.ConditionGood})
	}
	if in.DeltaDefective != 0 {
		items = append(items, MovementItemInput{PartID: in.PartID, Qty: in.DeltaDefective, Condition: entity.ConditionDefective})
	}

	var movementID string
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
	) error {
		// Costo promedio: solo entradas de cantidad buena con costo declarado.
		// La lectura es con bloqueo de fila para que la cantidad que pondera
		// el promedio sea la misma sobre la que el registrador aplica el delta.
		if in.UnitCost != nil && in.DeltaGood > 0 {
			part, err := partRepo.GetByID(ctx, in.PartID)
			if err != nil {
				return err
			}
			if part == nil {
				return domain.ErrNotFound
			}
			current, err := invRepo.GetForUpdate(ctx, in.Location, in.PartID)
			if err != nil {
				return err
			}
			newCost := inventory.AverageCost(current.QtyGood, part.Cost, in.DeltaGood, *in.UnitCost)
			if err := partRepo.UpdateCost(ctx, in.PartID, newCost); err != nil {
				return err
			}
		}

		mov, err := uc.recorder.RecordInTx(ctx, movRepo, invRepo, partRepo, MovementInput{
			Type:        entity.MovementAdjustment,
			Reference:   "adj:" + uuid.New().String(),
			Destination: in.Location,
			Items:       items,
			CreatedBy:   in.CreatedBy,
		})
		if err != nil {
			return err
		}
		movementID = mov.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return movementID, nil
}
