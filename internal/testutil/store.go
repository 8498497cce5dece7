// Package testutil provee implementaciones en memoria de los puertos de
// persistencia para tests unitarios de la capa de aplicación. El TxRunner
// falso simula atomicidad tomando un snapshot del estado y restaurándolo
// cuando la función transaccional retorna error.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Store estado compartido en memoria; los repos falsos son vistas sobre él.
type Store struct {
	mu sync.Mutex

	Inventory     map[string]*entity.InventoryRecord
	Movements     map[string]*entity.StockMovement
	MovementItems map[string][]*entity.MovementItem
	Requests      map[string]*entity.SpareRequest
	RequestItems  map[string][]*entity.SpareRequestItem
	Returns       map[string]*entity.ReturnRequest
	ReturnItems   map[string][]*entity.ReturnItem
	Parts         map[string]*entity.Part
}

// NewStore construye un Store vacío.
func NewStore() *Store {
	return &Store{
		Inventory:     map[string]*entity.InventoryRecord{},
		Movements:     map[string]*entity.StockMovement{},
		MovementItems: map[string][]*entity.MovementItem{},
		Requests:      map[string]*entity.SpareRequest{},
		RequestItems:  map[string][]*entity.SpareRequestItem{},
		Returns:       map[string]*entity.ReturnRequest{},
		ReturnItems:   map[string][]*entity.ReturnItem{},
		Parts:         map[string]*entity.Part{},
	}
}

func invKey(loc entity.Location, partID string) string {
	return loc.Key() + "|" + partID
}

// SeedPart agrega un repuesto al catálogo.
func (s *Store) SeedPart(id, code string, cost decimal.Decimal, reorderPoint int64) {
	s.Parts[id] = &entity.Part{
		ID:           id,
		Code:         code,
		Description:  "repuesto " + code,
		Cost:         cost,
		ReorderPoint: reorderPoint,
		CreatedAt:    time.Now(),
	}
}

// SeedStock fija el stock de un repuesto en una ubicación.
func (s *Store) SeedStock(loc entity.Location, partID string, good, defective int64) {
	s.Inventory[invKey(loc, partID)] = &entity.InventoryRecord{
		Location:     loc,
		PartID:       partID,
		QtyGood:      good,
		QtyDefective: defective,
		UpdatedAt:    time.Now(),
	}
}

// Stock devuelve (good, defective) de un repuesto en una ubicación.
func (s *Store) Stock(loc entity.Location, partID string) (int64, int64) {
	rec, ok := s.Inventory[invKey(loc, partID)]
	if !ok {
		return 0, 0
	}
	return rec.QtyGood, rec.QtyDefective
}

// MovementByRef busca un movimiento por tipo y referencia.
func (s *Store) MovementByRef(movType, reference string) *entity.StockMovement {
	for _, m := range s.Movements {
		if m.Type == movType && m.Reference == reference {
			return m
		}
	}
	return nil
}

// ── snapshot / restore ────────────────────────────────────────────────────────

type snapshot struct {
	inventory     map[string]*entity.InventoryRecord
	movements     map[string]*entity.StockMovement
	movementItems map[string][]*entity.MovementItem
	requests      map[string]*entity.SpareRequest
	requestItems  map[string][]*entity.SpareRequestItem
	returns       map[string]*entity.ReturnRequest
	returnItems   map[string][]*entity.ReturnItem
	parts         map[string]*entity.Part
}

func cloneI64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s *Store) take() *snapshot {
	snap := &snapshot{
		inventory:     map[string]*entity.InventoryRecord{},
		movements:     map[string]*entity.StockMovement{},
		movementItems: map[string][]*entity.MovementItem{},
		requests:      map[string]*entity.SpareRequest{},
		requestItems:  map[string][]*entity.SpareRequestItem{},
		returns:       map[string]*entity.ReturnRequest{},
		returnItems:   map[string][]*entity.ReturnItem{},
		parts:         map[string]*entity.Part{},
	}
	for k, v := range s.Inventory {
		c := *v
		snap.inventory[k] = &c
	}
	for k, v := range s.Movements {
		c := *v
		snap.movements[k] = &c
	}
	for k, items := range s.MovementItems {
		for _, it := range items {
			c := *it
			snap.movementItems[k] = append(snap.movementItems[k], &c)
		}
	}
	for k, v := range s.Requests {
		c := *v
		snap.requests[k] = &c
	}
	for k, items := range s.RequestItems {
		for _, it := range items {
			c := *it
			c.ApprovedQty = cloneI64(it.ApprovedQty)
			snap.requestItems[k] = append(snap.requestItems[k], &c)
		}
	}
	for k, v := range s.Returns {
		c := *v
		snap.returns[k] = &c
	}
	for k, items := range s.ReturnItems {
		for _, it := range items {
			c := *it
			c.ReceivedGood = cloneI64(it.ReceivedGood)
			c.ReceivedDefective = cloneI64(it.ReceivedDefective)
			c.VerifiedGood = cloneI64(it.VerifiedGood)
			c.VerifiedDefective = cloneI64(it.VerifiedDefective)
			snap.returnItems[k] = append(snap.returnItems[k], &c)
		}
	}
	for k, v := range s.Parts {
		c := *v
		snap.parts[k] = &c
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.Inventory = snap.inventory
	s.Movements = snap.movements
	s.MovementItems = snap.movementItems
	s.Requests = snap.requests
	s.RequestItems = snap.requestItems
	s.Returns = snap.returns
	s.ReturnItems = snap.returnItems
	s.Parts = snap.parts
}

// ── TxRunner falso ────────────────────────────────────────────────────────────

// TxRunner implementa inventory.TxRunner sin base de datos: snapshot antes de
// la función, restore si retorna error.
type TxRunner struct {
	S *Store
}

// NewTxRunner construye el runner sobre un Store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{S: s}
}

func (r *TxRunner) run(fn func() error) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	snap := r.S.take()
	if err := fn(); err != nil {
		r.S.restore(snap)
		return err
	}
	return nil
}

// Run ejecuta fn con los repos base.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	invRepo repository.InventoryRepository,
	partRepo repository.PartRepository,
) error) error {
	return r.run(func() error {
		return fn(&MovementRepo{s: r.S}, &InventoryRepo{s: r.S}, &PartRepo{s: r.S})
	})
}

// RunRequest agrega el repo de solicitudes.
func (r *TxRunner) RunRequest(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	invRepo repository.InventoryRepository,
	partRepo repository.PartRepository,
	reqRepo repository.SpareRequestRepository,
) error) error {
	return r.run(func() error {
		return fn(&MovementRepo{s: r.S}, &InventoryRepo{s: r.S}, &PartRepo{s: r.S}, &RequestRepo{s: r.S})
	})
}

// RunReturn agrega el repo de devoluciones.
func (r *TxRunner) RunReturn(ctx context.Context, fn func(
	movRepo repository.MovementRepository,
	invRepo repository.InventoryRepository,
	partRepo repository.PartRepository,
	retRepo repository.ReturnRequestRepository,
) error) error {
	return r.run(func() error {
		return fn(&MovementRepo{s: r.S}, &InventoryRepo{s: r.S}, &PartRepo{s: r.S}, &ReturnRepo{s: r.S})
	})
}

// ── InventoryRepo ─────────────────────────────────────────────────────────────

// InventoryRepo vista en memoria del ledger.
type InventoryRepo struct {
	s *Store
}

// NewInventoryRepo construye la vista sobre un Store.
func NewInventoryRepo(s *Store) *InventoryRepo {
	return &InventoryRepo{s: s}
}

func (r *InventoryRepo) Get(ctx context.Context, loc entity.Location, partID string) (*entity.InventoryRecord, error) {
	if rec, ok := r.s.Inventory[invKey(loc, partID)]; ok {
		c := *rec
		return &c, nil
	}
	return &entity.InventoryRecord{Location: loc, PartID: partID}, nil
}

func (r *InventoryRepo) GetForUpdate(ctx context.Context, loc entity.Location, partID string) (*entity.InventoryRecord, error) {
	if rec, ok := r.s.Inventory[invKey(loc, partID)]; ok {
		c := *rec
		return &c, nil
	}
	return &entity.InventoryRecord{Location: loc, PartID: partID}, nil
}

func (r *InventoryRepo) Upsert(ctx context.Context, rec *entity.InventoryRecord) error {
	c := *rec
	r.s.Inventory[invKey(rec.Location, rec.PartID)] = &c
	return nil
}

func (r *InventoryRepo) ListByLocation(ctx context.Context, loc entity.Location, limit, offset int) ([]*entity.InventoryRecord, error) {
	var out []*entity.InventoryRecord
	for _, rec := range r.s.Inventory {
		if rec.Location.Equal(loc) {
			c := *rec
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *InventoryRepo) ListBelowReorderPoint(ctx context.Context, loc entity.Location) ([]repository.LowStockItem, error) {
	var out []repository.LowStockItem
	for _, rec := range r.s.Inventory {
		if !rec.Location.Equal(loc) {
			continue
		}
		part, ok := r.s.Parts[rec.PartID]
		if !ok || part.ReorderPoint <= 0 || rec.QtyGood >= part.ReorderPoint {
			continue
		}
		out = append(out, repository.LowStockItem{
			PartID:       part.ID,
			Code:         part.Code,
			Description:  part.Description,
			QtyGood:      rec.QtyGood,
			ReorderPoint: part.ReorderPoint,
		})
	}
	return out, nil
}

// ── MovementRepo ──────────────────────────────────────────────────────────────

// MovementRepo vista en memoria del log de movimientos.
type MovementRepo struct {
	s *Store
}

// NewMovementRepo construye la vista sobre un Store.
func NewMovementRepo(s *Store) *MovementRepo {
	return &MovementRepo{s: s}
}

func (r *MovementRepo) Create(ctx context.Context, movement *entity.StockMovement, items []*entity.MovementItem) error {
	for _, m := range r.s.Movements {
		if m.Type == movement.Type && m.Reference == movement.Reference {
			return domain.ErrDuplicate
		}
	}
	c := *movement
	r.s.Movements[movement.ID] = &c
	for _, it := range items {
		ci := *it
		r.s.MovementItems[movement.ID] = append(r.s.MovementItems[movement.ID], &ci)
	}
	return nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.StockMovement, []*entity.MovementItem, error) {
	mov, ok := r.s.Movements[id]
	if !ok {
		return nil, nil, nil
	}
	c := *mov
	return &c, r.s.MovementItems[id], nil
}

func (r *MovementRepo) GetByTypeAndReference(ctx context.Context, movType, reference string) (*entity.StockMovement, error) {
	if m := r.s.MovementByRef(movType, reference); m != nil {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (r *MovementRepo) UpdateStatus(ctx context.Context, id, status string) error {
	mov, ok := r.s.Movements[id]
	if !ok {
		return domain.ErrNotFound
	}
	mov.Status = status
	return nil
}

func (r *MovementRepo) ListByLocation(ctx context.Context, loc entity.Location, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, mov := range r.s.Movements {
		if !mov.Source.Equal(loc) && !mov.Destination.Equal(loc) {
			continue
		}
		if from != nil && mov.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && mov.CreatedAt.After(*to) {
			continue
		}
		c := *mov
		out = append(out, &c)
	}
	return out, nil
}

// ── PartRepo ──────────────────────────────────────────────────────────────────

// PartRepo vista en memoria del catálogo.
type PartRepo struct {
	s *Store
}

// NewPartRepo construye la vista sobre un Store.
func NewPartRepo(s *Store) *PartRepo {
	return &PartRepo{s: s}
}

func (r *PartRepo) GetByID(ctx context.Context, id string) (*entity.Part, error) {
	if p, ok := r.s.Parts[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r *PartRepo) GetByCode(ctx context.Context, code string) (*entity.Part, error) {
	for _, p := range r.s.Parts {
		if p.Code == code {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (r *PartRepo) UpdateCost(ctx context.Context, partID string, cost decimal.Decimal) error {
	p, ok := r.s.Parts[partID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	return nil
}

func (r *PartRepo) List(ctx context.Context, limit, offset int) ([]*entity.Part, error) {
	var out []*entity.Part
	for _, p := range r.s.Parts {
		c := *p
		out = append(out, &c)
	}
	return out, nil
}

// ── RequestRepo ───────────────────────────────────────────────────────────────

// RequestRepo vista en memoria de solicitudes.
type RequestRepo struct {
	s *Store
}

// NewRequestRepo construye la vista sobre un Store.
func NewRequestRepo(s *Store) *RequestRepo {
	return &RequestRepo{s: s}
}

func (r *RequestRepo) Create(ctx context.Context, req *entity.SpareRequest, items []*entity.SpareRequestItem) error {
	c := *req
	r.s.Requests[req.ID] = &c
	for _, it := range items {
		ci := *it
		ci.ApprovedQty = cloneI64(it.ApprovedQty)
		r.s.RequestItems[req.ID] = append(r.s.RequestItems[req.ID], &ci)
	}
	return nil
}

func (r *RequestRepo) GetByID(ctx context.Context, id string) (*entity.SpareRequest, error) {
	if req, ok := r.s.Requests[id]; ok {
		c := *req
		return &c, nil
	}
	return nil, nil
}

func (r *RequestRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.SpareRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *RequestRepo) GetItems(ctx context.Context, requestID string) ([]*entity.SpareRequestItem, error) {
	var out []*entity.SpareRequestItem
	for _, it := range r.s.RequestItems[requestID] {
		c := *it
		c.ApprovedQty = cloneI64(it.ApprovedQty)
		out = append(out, &c)
	}
	return out, nil
}

func (r *RequestRepo) UpdateStatus(ctx context.Context, id, status string) error {
	req, ok := r.s.Requests[id]
	if !ok {
		return domain.ErrNotFound
	}
	req.Status = status
	req.UpdatedAt = time.Now()
	return nil
}

func (r *RequestRepo) UpdateItemApproved(ctx context.Context, itemID string, approvedQty int64) error {
	for _, items := range r.s.RequestItems {
		for _, it := range items {
			if it.ID == itemID {
				q := approvedQty
				it.ApprovedQty = &q
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *RequestRepo) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.SpareRequest, error) {
	var out []*entity.SpareRequest
	for _, req := range r.s.Requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Destination != nil && !req.Destination.Equal(*filter.Destination) {
			continue
		}
		c := *req
		out = append(out, &c)
	}
	return out, nil
}

// ── ReturnRepo ────────────────────────────────────────────────────────────────

// ReturnRepo vista en memoria de devoluciones.
type ReturnRepo struct {
	s *Store
}

// NewReturnRepo construye la vista sobre un Store.
func NewReturnRepo(s *Store) *ReturnRepo {
	return &ReturnRepo{s: s}
}

func (r *ReturnRepo) Create(ctx context.Context, ret *entity.ReturnRequest, items []*entity.ReturnItem) error {
	c := *ret
	r.s.Returns[ret.ID] = &c
	for _, it := range items {
		ci := *it
		r.s.ReturnItems[ret.ID] = append(r.s.ReturnItems[ret.ID], &ci)
	}
	return nil
}

func (r *ReturnRepo) GetByID(ctx context.Context, id string) (*entity.ReturnRequest, error) {
	if ret, ok := r.s.Returns[id]; ok {
		c := *ret
		return &c, nil
	}
	return nil, nil
}

func (r *ReturnRepo) GetByIDForUpdate(ctx context.Context, id string) (*entity.ReturnRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *ReturnRepo) GetItems(ctx context.Context, returnID string) ([]*entity.ReturnItem, error) {
	var out []*entity.ReturnItem
	for _, it := range r.s.ReturnItems[returnID] {
		c := *it
		c.ReceivedGood = cloneI64(it.ReceivedGood)
		c.ReceivedDefective = cloneI64(it.ReceivedDefective)
		c.VerifiedGood = cloneI64(it.VerifiedGood)
		c.VerifiedDefective = cloneI64(it.VerifiedDefective)
		out = append(out, &c)
	}
	return out, nil
}

func (r *ReturnRepo) UpdateStatus(ctx context.Context, id, status, reason string) error {
	ret, ok := r.s.Returns[id]
	if !ok {
		return domain.ErrNotFound
	}
	ret.Status = status
	if reason != "" {
		ret.RejectReason = reason
	}
	ret.UpdatedAt = time.Now()
	return nil
}

func (r *ReturnRepo) UpdateItemReceived(ctx context.Context, itemID string, good, defective int64) error {
	for _, items := range r.s.ReturnItems {
		for _, it := range items {
			if it.ID == itemID {
				g, d := good, defective
				it.ReceivedGood, it.ReceivedDefective = &g, &d
				return nil
			}
		}
	}
	return domain.ErrNotFound
}

func (r *ReturnRepo) UpdateItemVerified(ctx context.Context, itemID string, good, defective int64) error {
	for _, items := range r.s.ReturnItems {
		for _, it := range items {
			if it.ID == itemID {
				g, d := good, defective
				it.VerifiedGood, it.VerifiedDefective = &g, &d
				return nil
			}
		}
	}
	return domain.ErrNotFound
}
