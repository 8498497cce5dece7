package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/serviplus/repuestos-api/internal/application/inventory"
	"github.com/serviplus/repuestos-api/internal/application/parts"
	"github.com/serviplus/repuestos-api/internal/application/request"
	"github.com/serviplus/repuestos-api/internal/application/returns"
)

// Roles reconocidos en los tokens.
const (
	RoleTecnico   = "tecnico"
	RoleAprobador = "aprobador"
	RoleBodeguero = "bodeguero"
	RoleAdmin     = "admin"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RequestUC      *request.UseCase
	ReturnUC       *returns.UseCase
	AvailabilityUC *inventory.AvailabilityUseCase
	MovementUC     *inventory.MovementQueryUseCase
	AdjustUC       *inventory.AdjustUseCase
	PartUC         *parts.UseCase
	JWTSecret      string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Solicitudes de repuestos (protegido)
	requests := protected.Group("/requests")
	requestHandler := NewRequestHandler(deps.RequestUC)
	requests.Post("/", requestHandler.Create)
	requests.Get("/", requestHandler.List)
	requests.Get("/:id", requestHandler.Get)
	// Decidir y reenviar quedan en manos de aprobadores
	requests.Post("/:id/decide", RequireRole(RoleAprobador, RoleBodeguero, RoleAdmin), requestHandler.Decide)
	requests.Post("/:id/forward", RequireRole(RoleAprobador, RoleBodeguero, RoleAdmin), requestHandler.Forward)
	requests.Post("/:id/complete", requestHandler.Complete)

	// Devoluciones de técnicos (protegido)
	retGroup := protected.Group("/returns")
	returnHandler := NewReturnHandler(deps.ReturnUC)
	retGroup.Post("/", returnHandler.Create)
	retGroup.Get("/:id", returnHandler.Get)
	// Recibir, verificar y rechazar son operaciones de bodega
	retGroup.Post("/:id/receive", RequireRole(RoleBodeguero, RoleAdmin), returnHandler.Receive)
	retGroup.Post("/:id/verify", RequireRole(RoleBodeguero, RoleAdmin), returnHandler.Verify)
	retGroup.Post("/:id/reject", RequireRole(RoleBodeguero, RoleAdmin), returnHandler.Reject)

	// Ledger de inventario (protegido)
	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AvailabilityUC, deps.MovementUC, deps.AdjustUC)
	invGroup.Get("/availability", inventoryHandler.Availability)
	invGroup.Get("/stock", inventoryHandler.Stock)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/movements/:id", inventoryHandler.GetMovement)
	invGroup.Post("/adjust", RequireRole(RoleBodeguero, RoleAdmin), inventoryHandler.Adjust)

	// Catálogo de repuestos (protegido, solo lectura)
	partGroup := protected.Group("/parts")
	partHandler := NewPartHandler(deps.PartUC)
	partGroup.Get("/", partHandler.List)
	partGroup.Get("/:id", partHandler.Get)
}
