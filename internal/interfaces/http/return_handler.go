package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviplus/repuestos-api/internal/application/dto"
	"github.com/serviplus/repuestos-api/internal/application/returns"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
)

// ReturnHandler maneja las peticiones HTTP del flujo de devoluciones (protegido).
type ReturnHandler struct {
	uc *returns.UseCase
}

// NewReturnHandler construye el handler.
func NewReturnHandler(uc *returns.UseCase) *ReturnHandler {
	return &ReturnHandler{uc: uc}
}

// Create godoc
// @Summary      Crear devolución de técnico
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReturnRequest  true  "technician, service_center, items"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/returns [post]
func (h *ReturnHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	items := make([]returns.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, returns.ItemInput{PartID: it.PartID, GoodQty: it.GoodQty, DefectiveQty: it.DefectiveQty})
	}
	id, err := h.uc.Create(c.Context(), returns.CreateInput{
		Technician:    entity.Location{Type: in.Technician.Type, ID: in.Technician.ID},
		ServiceCenter: entity.Location{Type: in.ServiceCenter.Type, ID: in.ServiceCenter.ID},
		Reason:        in.Reason,
		Items:         items,
		CreatedBy:     GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"return_id": id})
}

// Receive godoc
// @Summary      Recibir devolución (conteo físico, movimiento return_receipt)
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id de la devolución"
// @Param        body  body  dto.ReceiveReturnRequest  true  "conteos por renglón (vacío = lo declarado)"
// @Success      200   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/returns/{id}/receive [post]
func (h *ReturnHandler) Receive(c *fiber.Ctx) error {
	var in dto.ReceiveReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	received := make([]returns.ReceiveItem, 0, len(in.Items))
	for _, it := range in.Items {
		received = append(received, returns.ReceiveItem{ItemID: it.ItemID, GoodQty: it.GoodQty, DefectiveQty: it.DefectiveQty})
	}
	movementID, err := h.uc.Receive(c.Context(), c.Params("id"), received, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"status": entity.ReturnReceived, "movement_id": movementID})
}

// Verify godoc
// @Summary      Verificar devolución (reconciliación y cierre)
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id de la devolución"
// @Param        body  body  dto.VerifyReturnRequest  true  "cantidades verificadas (vacío = lo recibido)"
// @Success      200   {object}  map[string]string
// @Router       /api/returns/{id}/verify [post]
func (h *ReturnHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	verified := make([]returns.VerifyItem, 0, len(in.Items))
	for _, it := range in.Items {
		verified = append(verified, returns.VerifyItem{ItemID: it.ItemID, GoodQty: it.GoodQty, DefectiveQty: it.DefectiveQty})
	}
	status, err := h.uc.Verify(c.Context(), c.Params("id"), verified, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"status": status})
}

// Reject godoc
// @Summary      Rechazar devolución (compensa el recibo si ya fue recibida)
// @Tags         returns
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id de la devolución"
// @Param        body  body  dto.RejectReturnRequest  true  "motivo del rechazo"
// @Success      200   {object}  map[string]string
// @Router       /api/returns/{id}/reject [post]
func (h *ReturnHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectReturnRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	if err := h.uc.Reject(c.Context(), c.Params("id"), in.Reason, GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"status": entity.ReturnRejected})
}

// Get godoc
// @Summary      Consultar devolución con renglones
// @Tags         returns
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la devolución"
// @Success      200  {object}  dto.ReturnResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/returns/{id} [get]
func (h *ReturnHandler) Get(c *fiber.Ctx) error {
	ret, items, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewReturnResponse(ret, items))
}
