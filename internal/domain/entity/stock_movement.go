package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock. Mapean 1:1 a eventos del flujo:
// aprobación de solicitud, recepción de devolución, ajuste manual y consumo.
const (
	MovementRequestFulfillment = "request_fulfillment"
	MovementReturnReceipt      = "return_receipt"
	MovementAdjustment         = "adjustment"
	MovementConsumption        = "consumption"
)

// Estados del movimiento. El único campo mutable post-commit es el estado terminal.
const (
	MovementStatusCommitted = "committed"
	MovementStatusReversed  = "reversed" // compensado por un movimiento posterior
)

// Condiciones de los ítems movidos.
const (
	ConditionGood      = "good"
	ConditionDefective = "defective"
)

// StockMovement es el registro append-only de una transferencia de cantidades
// entre ubicaciones (o un ajuste de un solo lado). Es el único camino legítimo
// para cambiar el inventario; una corrección se expresa como un movimiento
// compensatorio nuevo, nunca como una edición.
type StockMovement struct {
	ID          string
	Type        string
	Reference   string // id de la solicitud/devolución/ajuste que lo originó
	Source      Location
	Destination Location
	TotalQty    int64
	Status      string
	CreatedAt   time.Time
	CreatedBy   string
}

// MovementItem detalla un repuesto movido dentro de un StockMovement.
// Valorizado al costo promedio vigente del repuesto.
type MovementItem struct {
	ID         string
	MovementID string
	PartID     string
	Qty        int64
	Condition  string // good | defective
	UnitCost   decimal.Decimal
	TotalCost  decimal.Decimal
}

// Transfer indica si el movimiento debita origen y acredita destino.
// Los ajustes tocan una sola ubicación; el consumo debita sin acreditar.
func (m *StockMovement) Transfer() bool {
	return m.Type == MovementRequestFulfillment || m.Type == MovementReturnReceipt
}

// CheckConservation valida que la suma de ítems iguale la cantidad declarada.
// Para ajustes los ítems llevan delta con signo y el total declarado es la
// suma de valores absolutos.
func (m *StockMovement) CheckConservation(items []*MovementItem) bool {
	var sum int64
	for _, it := range items {
		q := it.Qty
		if m.Type == MovementAdjustment && q < 0 {
			q = -q
		}
		sum += q
	}
	return sum == m.TotalQty
}
