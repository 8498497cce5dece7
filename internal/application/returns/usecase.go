package returns

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/serviplus/repuestos-api/internal/application/inventory"
	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// UseCase implementa el flujo de devoluciones técnico -> centro de servicio:
// pending -> received -> verified -> completed, con rejected legal antes de
// completed. Recepción y verificación registran movimientos vía el registrador.
type UseCase struct {
	txRunner inventory.TxRunner
	recorder *inventory.Recorder
	retRepo  repository.ReturnRequestRepository // lecturas fuera de tx
	invRepo  repository.InventoryRepository     // chequeo blando al crear
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	txRunner inventory.TxRunner,
	recorder *inventory.Recorder,
	retRepo repository.ReturnRequestRepository,
	invRepo repository.InventoryRepository,
) *UseCase {
	return &UseCase{txRunner: txRunner, recorder: recorder, retRepo: retRepo, invRepo: invRepo}
}

// ItemInput renglón declarado por el técnico.
type ItemInput struct {
	PartID       string
	GoodQty      int64
	DefectiveQty int64
}

// CreateInput entrada para crear una devolución.
type CreateInput struct {
	Technician    entity.Location
	ServiceCenter entity.Location
	Reason        string
	Items         []ItemInput
	CreatedBy     string
}

// ReceiveItem conteo físico al recibir (por renglón declarado).
type ReceiveItem struct {
	ItemID       string
	GoodQty      int64
	DefectiveQty int64
}

// VerifyItem reconciliación de condición/cantidad por renglón.
type VerifyItem struct {
	ItemID       string
	GoodQty      int64
	DefectiveQty int64
}

// Create valida y persiste la devolución en pending. El chequeo contra las
// tenencias del técnico es blando: se revalida al recibir, cuando el ledger
// aplica el débito bajo bloqueo de fila.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (string, error) {
	if in.Technician.Type != entity.LocationTechnician || !in.Technician.Valid() {
		return "", domain.ErrInvalidInput
	}
	if in.ServiceCenter.Type != entity.LocationServiceCenter || !in.ServiceCenter.Valid() {
		return "", domain.ErrInvalidInput
	}
	if len(in.Items) == 0 || in.CreatedBy == "" {
		return "", domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.PartID == "" || it.GoodQty < 0 || it.DefectiveQty < 0 {
			return "", domain.ErrInvalidInput
		}
		if it.GoodQty == 0 && it.DefectiveQty == 0 {
			return "", domain.ErrInvalidInput
		}
		rec, err := uc.invRepo.Get(ctx, in.Technician, it.PartID)
		if err != nil {
			return "", err
		}
		if it.GoodQty > rec.QtyGood || it.DefectiveQty > rec.QtyDefective {
			return "", domain.ErrInvalidInput
		}
	}

	now := time.Now()
	ret := &entity.ReturnRequest{
		ID:            uuid.New().String(),
		Technician:    in.Technician,
		ServiceCenter: in.ServiceCenter,
		Reason:        in.Reason,
		Status:        entity.ReturnPending,
		CreatedBy:     in.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	items := make([]*entity.ReturnItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, &entity.ReturnItem{
			ID:                uuid.New().String(),
			ReturnID:          ret.ID,
			PartID:            it.PartID,
			DeclaredGood:      it.GoodQty,
			DeclaredDefective: it.DefectiveQty,
		})
	}

	err := uc.txRunner.RunReturn(ctx, func(
		_ repository.MovementRepository,
		_ repository.InventoryRepository,
		_ repository.PartRepository,
		retRepo repository.ReturnRequestRepository,
	) error {
		return retRepo.Create(ctx, ret, items)
	})
	if err != nil {
		return "", err
	}
	return ret.ID, nil
}

// Receive registra lo contado físicamente: un movimiento return_receipt que
// debita al técnico y acredita al centro de servicio por condición, y pasa la
// devolución a received. Renglones sin conteo explícito toman lo declarado.
//
// Reintento idempotente: si ya quedó received y el movimiento con su
// referencia existe, devuelve el id previo sin escribir.
func (uc *UseCase) Receive(ctx context.Context, returnID string, received []ReceiveItem, receivedBy string) (string, error) {
	if returnID == "" {
		return "", domain.ErrInvalidInput
	}
	byItem := make(map[string]ReceiveItem, len(received))
	for _, r := range received {
		if r.ItemID == "" || r.GoodQty < 0 || r.DefectiveQty < 0 {
			return "", domain.ErrInvalidInput
		}
		byItem[r.ItemID] = r
	}

	var movementID string
	err := uc.txRunner.RunReturn(ctx, func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
		retRepo repository.ReturnRequestRepository,
	) error {
		ret, err := retRepo.GetByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return domain.ErrNotFound
		}
		if ret.Status == entity.ReturnReceived {
			prior, err := movRepo.GetByTypeAndReference(ctx, entity.MovementReturnReceipt, ret.ID)
			if err != nil {
				return err
			}
			if prior != nil {
				movementID = prior.ID
				return nil
			}
			return domain.ErrStateConflict
		}
		if !ret.CanTransition(entity.ReturnReceived) {
			return domain.ErrStateConflict
		}

		items, err := retRepo.GetItems(ctx, ret.ID)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(items))
		for _, it := range items {
			known[it.ID] = true
		}
		for id := range byItem {
			if !known[id] {
				return domain.ErrInvalidInput
			}
		}

		var movItems []inventory.MovementItemInput
		for _, it := range items {
			good, defective := it.DeclaredGood, it.DeclaredDefective
			if r, ok := byItem[it.ID]; ok {
				good, defective = r.GoodQty, r.DefectiveQty
			}
			if err := retRepo.UpdateItemReceived(ctx, it.ID, good, defective); err != nil {
				return err
			}
			if good > 0 {
				movItems = append(movItems, inventory.MovementItemInput{PartID: it.PartID, Qty: good, Condition: entity.ConditionGood})
			}
			if defective > 0 {
				movItems = append(movItems, inventory.MovementItemInput{PartID: it.PartID, Qty: defective, Condition: entity.ConditionDefective})
			}
		}
		if len(movItems) == 0 {
			return domain.ErrInvalidInput
		}

		mov, err := uc.recorder.RecordInTx(ctx, movRepo, invRepo, partRepo, inventory.MovementInput{
			Type:        entity.MovementReturnReceipt,
			Reference:   ret.ID,
			Source:      ret.Technician,
			Destination: ret.ServiceCenter,
			Items:       movItems,
			CreatedBy:   receivedBy,
		})
		if err != nil {
			return err
		}
		if err := retRepo.UpdateStatus(ctx, ret.ID, entity.ReturnReceived, ""); err != nil {
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

// Verify reconcilia lo recibido contra lo verificado físicamente. Cualquier
// discrepancia (ej. reclasificar good -> defective) se expresa como un
// movimiento adjustment en el centro de servicio; luego la devolución pasa
// por verified a completed.
func (uc *UseCase) Verify(ctx context.Context, returnID string, verified []VerifyItem, verifiedBy string) (string, error) {
	if returnID == "" {
		return "", domain.ErrInvalidInput
	}
	byItem := make(map[string]VerifyItem, len(verified))
	for _, v := range verified {
		if v.ItemID == "" || v.GoodQty < 0 || v.DefectiveQty < 0 {
			return "", domain.ErrInvalidInput
		}
		byItem[v.ItemID] = v
	}

	var status string
	err := uc.txRunner.RunReturn(ctx, func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
		retRepo repository.ReturnRequestRepository,
	) error {
		ret, err := retRepo.GetByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return domain.ErrNotFound
		}
		if !ret.CanTransition(entity.ReturnVerified) {
			return domain.ErrStateConflict
		}

		items, err := retRepo.GetItems(ctx, ret.ID)
		if err != nil {
			return err
		}
		known := make(map[string]bool, len(items))
		for _, it := range items {
			known[it.ID] = true
		}
		for id := range byItem {
			if !known[id] {
				return domain.ErrInvalidInput
			}
		}

		var adjItems []inventory.MovementItemInput
		for _, it := range items {
			receivedGood, receivedDefective := int64(0), int64(0)
			if it.ReceivedGood != nil {
				receivedGood = *it.ReceivedGood
			}
			if it.ReceivedDefective != nil {
				receivedDefective = *it.ReceivedDefective
			}
			good, defective := receivedGood, receivedDefective
			if v, ok := byItem[it.ID]; ok {
				good, defective = v.GoodQty, v.DefectiveQty
			}
			if err := retRepo.UpdateItemVerified(ctx, it.ID, good, defective); err != nil {
				return err
			}
			if d := good - receivedGood; d != 0 {
				adjItems = append(adjItems, inventory.MovementItemInput{PartID: it.PartID, Qty: d, Condition: entity.ConditionGood})
			}
			if d := defective - receivedDefective; d != 0 {
				adjItems = append(adjItems, inventory.MovementItemInput{PartID: it.PartID, Qty: d, Condition: entity.ConditionDefective})
			}
		}

		if len(adjItems) > 0 {
			_, err := uc.recorder.RecordInTx(ctx, movRepo, invRepo, partRepo, inventory.MovementInput{
				Type:        entity.MovementAdjustment,
				Reference:   "verify:" + ret.ID,
				Destination: ret.ServiceCenter,
				Items:       adjItems,
				CreatedBy:   verifiedBy,
			})
			if err != nil {
				return err
			}
		}

		if err := retRepo.UpdateStatus(ctx, ret.ID, entity.ReturnVerified, ""); err != nil {
			return err
		}
		if err := retRepo.UpdateStatus(ctx, ret.ID, entity.ReturnCompleted, ""); err != nil {
			return err
		}
		status = entity.ReturnCompleted
		return nil
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

// Reject rechaza la devolución. Antes de recibir no hay cambio de inventario;
// después de recibir se registra un movimiento compensatorio que devuelve lo
// acreditado al técnico y el recibo original queda marcado reversed.
func (uc *UseCase) Reject(ctx context.Context, returnID, reason, rejectedBy string) error {
	if returnID == "" || reason == "" {
		return domain.ErrInvalidInput
	}

	return uc.txRunner.RunReturn(ctx, func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
		retRepo repository.ReturnRequestRepository,
	) error {
		ret, err := retRepo.GetByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return domain.ErrNotFound
		}
		if !ret.CanTransition(entity.ReturnRejected) {
			return domain.ErrStateConflict
		}

		if ret.Status == entity.ReturnReceived {
			items, err := retRepo.GetItems(ctx, ret.ID)
			if err != nil {
				return err
			}
			var movItems []inventory.MovementItemInput
			for _, it := range items {
				if it.ReceivedGood != nil && *it.ReceivedGood > 0 {
					movItems = append(movItems, inventory.MovementItemInput{PartID: it.PartID, Qty: *it.ReceivedGood, Condition: entity.ConditionGood})
				}
				if it.ReceivedDefective != nil && *it.ReceivedDefective > 0 {
					movItems = append(movItems, inventory.MovementItemInput{PartID: it.PartID, Qty: *it.ReceivedDefective, Condition: entity.ConditionDefective})
				}
			}
			if len(movItems) > 0 {
				_, err := uc.recorder.RecordInTx(ctx, movRepo, invRepo, partRepo, inventory.MovementInput{
					Type:        entity.MovementReturnReceipt,
					Reference:   "reject:" + ret.ID,
					Source:      ret.ServiceCenter,
					Destination: ret.Technician,
					Items:       movItems,
					CreatedBy:   rejectedBy,
				})
				if err != nil {
					return err
				}
			}
			original, err := movRepo.GetByTypeAndReference(ctx, entity.MovementReturnReceipt, ret.ID)
			if err != nil {
				return err
			}
			if original != nil {
				if err := movRepo.UpdateStatus(ctx, original.ID, entity.MovementStatusReversed); err != nil {
					return err
				}
			}
		}

		return retRepo.UpdateStatus(ctx, ret.ID, entity.ReturnRejected, reason)
	})
}

// Get devuelve la devolución con sus renglones.
func (uc *UseCase) Get(ctx context.Context, returnID string) (*entity.ReturnRequest, []*entity.ReturnItem, error) {
	ret, err := uc.retRepo.GetByID(ctx, returnID)
	if err != nil {
		return nil, nil, err
	}
	if ret == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.retRepo.GetItems(ctx, returnID)
	if err != nil {
		return nil, nil, err
	}
	return ret, items, nil
}
