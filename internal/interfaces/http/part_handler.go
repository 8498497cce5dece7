package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviplus/repuestos-api/internal/application/dto"
	"github.com/serviplus/repuestos-api/internal/application/parts"
)

// PartHandler lecturas del catálogo de repuestos (protegido).
type PartHandler struct {
	uc *parts.UseCase
}

// NewPartHandler construye el handler.
func NewPartHandler(uc *parts.UseCase) *PartHandler {
	return &PartHandler{uc: uc}
}

// List godoc
// @Summary      Listar catálogo de repuestos
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo de filas (default 20)"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {array}  dto.PartResponse
// @Router       /api/parts [get]
func (h *PartHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválido"})
	}
	page.DefaultPage()

	list, err := h.uc.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.PartResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.NewPartResponse(p))
	}
	return c.JSON(fiber.Map{"total": len(out), "parts": out})
}

// Get godoc
// @Summary      Consultar repuesto por id o por código
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "id del repuesto (o code:<código>)"
// @Success      200  {object}  dto.PartResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parts/{id} [get]
func (h *PartHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if code := c.Query("code"); code != "" && id == "by-code" {
		part, err := h.uc.GetByCode(c.Context(), code)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(dto.NewPartResponse(part))
	}
	part, err := h.uc.Get(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewPartResponse(part))
}
