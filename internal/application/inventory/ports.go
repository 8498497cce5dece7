package inventory

import (
	"context"

	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad: o comitean todas las
// escrituras (movimiento + ledger + estado del workflow) o ninguna.
type TxRunner interface {
	// Run transacción con los repos del motor de inventario.
	Run(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
	) error) error

	// RunRequest agrega el repo de solicitudes (ciclo de aprobación).
	RunRequest(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
		reqRepo repository.SpareRequestRepository,
	) error) error

	// RunReturn agrega el repo de devoluciones (flujo de recepción/verificación).
	RunReturn(ctx context.Context, fn func(
		movRepo repository.MovementRepository,
		invRepo repository.InventoryRepository,
		partRepo repository.PartRepository,
		retRepo repository.ReturnRequestRepository,
	) error) error
}
