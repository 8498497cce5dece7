package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviplus/repuestos-api/internal/application/dto"
	"github.com/serviplus/repuestos-api/internal/application/request"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// RequestHandler maneja las peticiones HTTP del ciclo de solicitudes (protegido).
type RequestHandler struct {
	uc *request.UseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(uc *request.UseCase) *RequestHandler {
	return &RequestHandler{uc: uc}
}

// Create godoc
// @Summary      Crear solicitud de repuestos
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestRequest  true  "type, source, destination, items"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	items := make([]request.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, request.ItemInput{PartID: it.PartID, Qty: it.Qty})
	}
	id, err := h.uc.Create(c.Context(), request.CreateInput{
		Type:        in.Type,
		Source:      entity.Location{Type: in.Source.Type, ID: in.Source.ID},
		Destination: entity.Location{Type: in.Destination.Type, ID: in.Destination.ID},
		Reason:      in.Reason,
		Items:       items,
		CreatedBy:   GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request_id": id})
}

// Decide godoc
// @Summary      Decidir solicitud (cumplimiento parcial por renglón)
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id de la solicitud"
// @Param        body  body  dto.DecideRequestRequest  true  "decisiones por renglón (vacío = aprobar lo solicitado)"
// @Success      200   {object}  map[string]string
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/decide [post]
func (h *RequestHandler) Decide(c *fiber.Ctx) error {
	var in dto.DecideRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	decisions := make([]request.ItemDecision, 0, len(in.Items))
	for _, d := range in.Items {
		decisions = append(decisions, request.ItemDecision{ItemID: d.ItemID, ApprovedQty: d.ApprovedQty})
	}
	result, err := h.uc.Decide(c.Context(), c.Params("id"), decisions, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"status": result.Status, "movement_id": result.MovementID})
}

// Forward godoc
// @Summary      Reenviar solicitud aguas arriba
// @Tags         requests
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "id de la solicitud"
// @Param        body  body  dto.ForwardRequestRequest  true  "ubicación upstream"
// @Success      201   {object}  map[string]string
// @Router       /api/requests/{id}/forward [post]
func (h *RequestHandler) Forward(c *fiber.Ctx) error {
	var in dto.ForwardRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, err)
	}
	childID, err := h.uc.Forward(c.Context(), c.Params("id"),
		entity.Location{Type: in.Upstream.Type, ID: in.Upstream.ID}, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"request_id": childID})
}

// Complete godoc
// @Summary      Cerrar solicitud asignada (opcionalmente registrando consumo)
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la solicitud"
// @Success      200  {object}  map[string]string
// @Router       /api/requests/{id}/complete [post]
func (h *RequestHandler) Complete(c *fiber.Ctx) error {
	var in dto.CompleteRequestRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	movementID, err := h.uc.Complete(c.Context(), c.Params("id"), in.Consume, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"status": entity.RequestCompleted, "movement_id": movementID})
}

// Get godoc
// @Summary      Consultar solicitud con renglones
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id de la solicitud"
// @Success      200  {object}  dto.RequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	req, items, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewRequestResponse(req, items))
}

// List godoc
// @Summary      Listar solicitudes
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        status            query  string  false  "filtrar por estado"
// @Param        destination_type  query  string  false  "tipo de ubicación destino"
// @Param        destination_id    query  string  false  "id de ubicación destino"
// @Success      200  {array}  dto.RequestResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()

	filter := repository.RequestFilter{
		Status: c.Query("status"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if t, id := c.Query("destination_type"), c.Query("destination_id"); t != "" && id != "" {
		filter.Destination = &entity.Location{Type: t, ID: id}
	}

	list, err := h.uc.List(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.RequestResponse, 0, len(list))
	for _, req := range list {
		out = append(out, dto.NewRequestResponse(req, nil))
	}
	return c.JSON(fiber.Map{"total": len(out), "requests": out})
}
