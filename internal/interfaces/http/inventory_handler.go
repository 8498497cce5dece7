package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/serviplus/repuestos-api/internal/application/dto"
	"github.com/serviplus/repuestos-api/internal/application/inventory"
	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// InventoryHandler maneja consultas del ledger y ajustes manuales (protegido).
type InventoryHandler struct {
	availability *inventory.AvailabilityUseCase
	movements    *inventory.MovementQueryUseCase
	adjust       *inventory.AdjustUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	availability *inventory.AvailabilityUseCase,
	movements *inventory.MovementQueryUseCase,
	adjust *inventory.AdjustUseCase,
) *InventoryHandler {
	return &InventoryHandler{availability: availability, movements: movements, adjust: adjust}
}

// queryLocation arma la ubicación desde query params; si faltan usa la
// ubicación base del token.
func queryLocation(c *fiber.Ctx) entity.Location {
	loc := entity.Location{Type: c.Query("location_type"), ID: c.Query("location_id")}
	if loc.Type == "" && loc.ID == "" {
		return GetHomeLocation(c)
	}
	return loc
}

// Adjust godoc
// @Summary      Ajuste manual de inventario (auditado como movimiento)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustInventoryRequest  true  "ubicación, repuesto, deltas firmados y motivo"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	movementID, err := h.adjust.Adjust(c.Context(), inventory.AdjustInput{
		Location:       entity.Location{Type: in.Location.Type, ID: in.Location.ID},
		PartID:         in.PartID,
		DeltaGood:      in.DeltaGood,
		DeltaDefective: in.DeltaDefective,
		Reason:         in.Reason,
		UnitCost:       in.UnitCost,
		CreatedBy:      GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"movement_id": movementID})
}

// Availability godoc
// @Summary      Disponibilidad de un repuesto en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_type  query  string  false  "tipo de ubicación (default: la del token)"
// @Param        location_id    query  string  false  "id de ubicación"
// @Param        part_id        query  string  true   "id del repuesto"
// @Success      200  {object}  dto.AvailabilityResponse
// @Router       /api/inventory/availability [get]
func (h *InventoryHandler) Availability(c *fiber.Ctx) error {
	loc := queryLocation(c)
	partID := c.Query("part_id")
	qty, err := h.availability.Available(c.Context(), loc, partID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AvailabilityResponse{
		Location: dto.LocationDTO{Type: loc.Type, ID: loc.ID},
		PartID:   partID,
		QtyGood:  qty,
	})
}

// Stock godoc
// @Summary      Inventario por ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_type  query  string  false  "tipo de ubicación (default: la del token)"
// @Param        location_id    query  string  false  "id de ubicación"
// @Success      200  {array}  dto.StockRecordResponse
// @Router       /api/inventory/stock [get]
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()

	loc := queryLocation(c)
	records, err := h.availability.StockByLocation(c.Context(), loc, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, dto.StockRecordResponse{
			Location:     dto.LocationDTO{Type: rec.Location.Type, ID: rec.Location.ID},
			PartID:       rec.PartID,
			QtyGood:      rec.QtyGood,
			QtyDefective: rec.QtyDefective,
			UpdatedAt:    rec.UpdatedAt,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "records": out})
}

// LowStock godoc
// @Summary      Repuestos bajo el punto de reorden en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_type  query  string  false  "tipo de ubicación (default: la del token)"
// @Param        location_id    query  string  false  "id de ubicación"
// @Success      200  {array}  dto.LowStockResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	loc := queryLocation(c)
	items, err := h.availability.LowStock(c.Context(), loc)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LowStockResponse, 0, len(items))
	for _, it := range items {
		out = append(out, dto.LowStockResponse{
			PartID:       it.PartID,
			Code:         it.Code,
			Description:  it.Description,
			QtyGood:      it.QtyGood,
			ReorderPoint: it.ReorderPoint,
		})
	}
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// GetMovement godoc
// @Summary      Consultar movimiento con renglones valorizados
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del movimiento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	mov, items, err := h.movements.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(mov, items))
}

// ListMovements godoc
// @Summary      Movimientos que tocan una ubicación (origen o destino)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_type  query  string  false  "tipo de ubicación (default: la del token)"
// @Param        location_id    query  string  false  "id de ubicación"
// @Param        from           query  string  false  "fecha inicial RFC3339"
// @Param        to             query  string  false  "fecha final RFC3339"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()

	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return writeError(c, err)
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return writeError(c, err)
	}

	loc := queryLocation(c)
	list, err := h.movements.ListByLocation(c.Context(), loc, from, to, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, mov := range list {
		out = append(out, dto.NewMovementResponse(mov, nil))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	return &t, nil
}
