package request

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/serviplus/repuestos-api/internal/application/inventory"
	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// UseCase implementa el ciclo de vida de solicitudes de repuestos:
// pending -> {approved, rejected, forwarded}; approved -> allocated -> completed.
// La aprobación produce atómicamente un movimiento request_fulfillment vía el
// registrador, dentro de la misma transacción que evalúa disponibilidad.
type UseCase struct {
	txRunner inventory.TxRunner
	recorder *inventory.Recorder
	reqRepo  repository.SpareRequestRepository // lecturas fuera de tx
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner inventory.TxRunner, recorder *inventory.Recorder, reqRepo repository.SpareRequestRepository) *UseCase {
	return &UseCase{txRunner: txRunner, recorder: recorder, reqRepo: reqRepo}
}

// ItemInput renglón solicitado al crear.
type ItemInput struct {
	PartID string
	Qty    int64
}

// CreateInput entrada para crear una solicitud.
// Source es la ubicación que despacharía; Destination la que recibe.
type CreateInput struct {
	Type        string
	Source      entity.Location
	Destination entity.Location
	Reason      string
	Items       []ItemInput
	CreatedBy   string
}

// ItemDecision decisión del aprobador por renglón. La cantidad final se acota
// a min(decidida, solicitada, disponible) dentro de la transacción.
type ItemDecision struct {
	ItemID      string
	ApprovedQty int64
}

// DecideResult resultado de una decisión.
type DecideResult struct {
	Status     string
	MovementID string
}

// Create valida y persiste la solicitud con sus renglones en pending.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (string, error) {
	switch in.Type {
	case entity.RequestTypeTechnicianIssue, entity.RequestTypeConsignmentFillup, entity.RequestTypeConsignmentReturn:
	default:
		return "", domain.ErrInvalidInput
	}
	if !in.Source.Valid() || !in.Destination.Valid() || in.Source.Equal(in.Destination) {
		return "", domain.ErrInvalidInput
	}
	if len(in.Items) == 0 || in.CreatedBy == "" {
		return "", domain.ErrInvalidInput
	}
	for _, it := range in.Items {
		if it.PartID == "" || it.Qty <= 0 {
			return "", domain.ErrInvalidInput
		}
	}

	now := time.Now()
	req := &entity.SpareRequest{
		ID:          uuid.New().String(),
		Type:        in.Type,
		Source:      in.Source,
		Destination: in.Destination,
		Reason:      in.Reason,
		Status:      entity.RequestPending,
		CreatedBy:   in.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	items := make([]*entity.SpareRequestItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, &entity.SpareRequestItem{
			ID:           uuid.New().String(),
			RequestID:    req.ID,
			PartID:       it.PartID,
			RequestedQty: it.Qty,
		})
	}

	err := uc.txRunner.RunRequest(ctx, func(
		_ repository.MovementRepository,
		_ repository.InventoryRepository,
		_ repository.PartRepository,
		reqRepo repository.SpareRequestRepository,
	) error {
		return reqRepo.Create(ctx, req, items)
	})
	if err != nil {
		return "", err
	}
	return req.ID, nil
}

// Decide evalúa disponibilidad y decide la solicitud renglón por renglón
// dentro de una sola transacción (cumplimiento parcial: un renglón sin stock
// se rechaza individualmente sin tumbar los demás). Si todo queda en cero la
// solicitud pasa a rejected; si no, se registra el movimiento
// request_fulfillment y la solicitud queda allocated.
//
// Reintento idempotente: si la solicitud ya quedó allocated y el movimiento
// con su referencia existe, se devuelve el resultado previo sin escribir.
func (uc *UseCase) Decide(ctx context.Context, requestID string, decisions []ItemDecision, decidedBy string) (DecideResult, error) {
	if requestID == "" {
		return DecideResult{}, domain.ErrInvalidInput
	}
	byItem := make(map[string]int64, len(decisions))
	for _, d := range decisions {
		if d.ItemID == "" || d.ApprovedQty < 0 {
			return DecideResult{}, domain.ErrInvalidInput
		}
		byItem[d.ItemID] = d.ApprovedQty
	}

	var result DecideResult
	err := uc.txRunner.RunRequest(ctx, func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
		reqRepo repository.SpareRequestRepository,
	) error {
		req, err := reqRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Status == entity.RequestAllocated {
			// Referencia duplicada: el reintento devuelve el resultado previo
			prior, err := movRepo.GetByTypeAndReference(ctx, entity.MovementRequestFulfillment, req.ID)
			if err != nil {
				return err
			}
			if prior != nil {
				result = DecideResult{Status: req.Status, MovementID: prior.ID}
				return nil
			}
			return domain.ErrStateConflict
		}
		if !req.Decidable() {
			return domain.ErrStateConflict
		}

		items, err := reqRepo.GetItems(ctx, req.ID)
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
		var total int64
		// Disponibilidad restante por repuesto: varios renglones del mismo
		// repuesto compiten por la misma fila, así que se descuenta lo ya
		// aprobado antes de acotar el siguiente renglón.
		remaining := make(map[string]int64, len(items))
		for _, it := range items {
			want := it.RequestedQty
			if q, ok := byItem[it.ID]; ok && q < want {
				want = q
			}
			avail, seen := remaining[it.PartID]
			if !seen {
				rec, err := invRepo.GetForUpdate(ctx, req.Source, it.PartID)
				if err != nil {
					return err
				}
				avail = rec.QtyGood
			}
			approved := want
			if avail < approved {
				approved = avail
			}
			remaining[it.PartID] = avail - approved
			if err := reqRepo.UpdateItemApproved(ctx, it.ID, approved); err != nil {
				return err
			}
			if approved > 0 {
				movItems = append(movItems, inventory.MovementItemInput{
					PartID:    it.PartID,
					Qty:       approved,
					Condition: entity.ConditionGood,
				})
				total += approved
			}
		}

		if len(movItems) == 0 {
			if err := reqRepo.UpdateStatus(ctx, req.ID, entity.RequestRejected); err != nil {
				return err
			}
			result = DecideResult{Status: entity.RequestRejected}
			return nil
		}

		if err := reqRepo.UpdateStatus(ctx, req.ID, entity.RequestApproved); err != nil {
			return err
		}
		mov, err := uc.recorder.RecordInTx(ctx, movRepo, invRepo, partRepo, inventory.MovementInput{
			Type:        entity.MovementRequestFulfillment,
			Reference:   req.ID,
			Source:      req.Source,
			Destination: req.Destination,
			TotalQty:    total,
			Items:       movItems,
			CreatedBy:   decidedBy,
		})
		if err != nil {
			return err
		}
		if err := reqRepo.UpdateStatus(ctx, req.ID, entity.RequestAllocated); err != nil {
			return err
		}
		result = DecideResult{Status: entity.RequestAllocated, MovementID: mov.ID}
		return nil
	})
	if err != nil {
		return DecideResult{}, err
	}
	return result, nil
}

// Forward reenvía la solicitud aguas arriba cuando la ubicación consultada no
// tiene stock: crea una solicitud hija (la despachadora original pasa a ser
// receptora, upstream despacha) y marca la original como forwarded.
func (uc *UseCase) Forward(ctx context.Context, requestID string, upstream entity.Location, createdBy string) (string, error) {
	if requestID == "" || !upstream.Valid() {
		return "", domain.ErrInvalidInput
	}

	var childID string
	err := uc.txRunner.RunRequest(ctx, func(
		_ repository.MovementRepository,
		_ repository.InventoryRepository,
		_ repository.PartRepository,
		reqRepo repository.SpareRequestRepository,
	) error {
		req, err := reqRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if !req.Decidable() {
			return domain.ErrStateConflict
		}
		if upstream.Equal(req.Source) {
			return domain.ErrInvalidInput
		}

		items, err := reqRepo.GetItems(ctx, req.ID)
		if err != nil {
			return err
		}

		now := time.Now()
		child := &entity.SpareRequest{
			ID:          uuid.New().String(),
			Type:        req.Type,
			Source:      upstream,
			Destination: req.Source,
			Reason:      req.Reason,
			Status:      entity.RequestPending,
			ParentID:    req.ID,
			CreatedBy:   createdBy,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		childItems := make([]*entity.SpareRequestItem, 0, len(items))
		for _, it := range items {
			childItems = append(childItems, &entity.SpareRequestItem{
				ID:           uuid.New().String(),
				RequestID:    child.ID,
				PartID:       it.PartID,
				RequestedQty: it.RequestedQty,
			})
		}
		if err := reqRepo.Create(ctx, child, childItems); err != nil {
			return err
		}
		if err := reqRepo.UpdateStatus(ctx, req.ID, entity.RequestForwarded); err != nil {
			return err
		}
		childID = child.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return childID, nil
}

// Complete cierra una solicitud allocated. Con consume=true registra además un
// movimiento consumption que debita lo aprobado del receptor (repuesto usado
// en la orden de servicio).
//
// Reintento idempotente: sobre una solicitud ya completed se devuelve el
// movimiento de consumo previo (si lo hubo) sin escribir de nuevo.
func (uc *UseCase) Complete(ctx context.Context, requestID string, consume bool, completedBy string) (string, error) {
	if requestID == "" {
		return "", domain.ErrInvalidInput
	}

	var movementID string
	err := uc.txRunner.RunRequest(ctx, func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
		reqRepo repository.SpareRequestRepository,
	) error {
		req, err := reqRepo.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return domain.ErrNotFound
		}
		if req.Status == entity.RequestCompleted {
			prior, err := movRepo.GetByTypeAndReference(ctx, entity.MovementConsumption, "consume:"+req.ID)
			if err != nil {
				return err
			}
			if prior != nil {
				movementID = prior.ID
			}
			return nil
		}
		if !req.CanTransition(entity.RequestCompleted) {
			return domain.ErrStateConflict
		}

		if consume {
			items, err := reqRepo.GetItems(ctx, req.ID)
			if err != nil {
				return err
			}
			var movItems []inventory.MovementItemInput
			for _, it := range items {
				if it.ApprovedQty != nil && *it.ApprovedQty > 0 {
					movItems = append(movItems, inventory.MovementItemInput{
						PartID:    it.PartID,
						Qty:       *it.ApprovedQty,
						Condition: entity.ConditionGood,
					})
				}
			}
			if len(movItems) > 0 {
				mov, err := uc.recorder.RecordInTx(ctx, movRepo, invRepo, partRepo, inventory.MovementInput{
					Type:      entity.MovementConsumption,
					Reference: "consume:" + req.ID,
					Source:    req.Destination,
					Items:     movItems,
					CreatedBy: completedBy,
				})
				if err != nil {
					return err
				}
				movementID = mov.ID
			}
		}
		return reqRepo.UpdateStatus(ctx, req.ID, entity.RequestCompleted)
	})
	if err != nil {
		return "", err
	}
	return movementID, nil
}

// Get devuelve la solicitud con sus renglones.
func (uc *UseCase) Get(ctx context.Context, requestID string) (*entity.SpareRequest, []*entity.SpareRequestItem, error) {
	req, err := uc.reqRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if req == nil {
		return nil, nil, domain.ErrNotFound
	}
	items, err := uc.reqRepo.GetItems(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	return req, items, nil
}

// List lista solicitudes por filtro.
func (uc *UseCase) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.SpareRequest, error) {
	return uc.reqRepo.List(ctx, filter)
}
