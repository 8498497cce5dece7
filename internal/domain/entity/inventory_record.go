package entity

import "time"

// InventoryRecord es el stock canónico de un repuesto en una ubicación,
// separado en cantidad buena y defectuosa. Se crea perezosamente con el
// primer movimiento que toca la combinación (ubicación, repuesto).
// Solo el registrador de movimientos puede mutarlo.
type InventoryRecord struct {
	Location     Location
	PartID       string
	QtyGood      int64
	QtyDefective int64
	UpdatedAt    time.Time
}

// Qty devuelve la cantidad según la condición (good|defective).
func (r *InventoryRecord) Qty(condition string) int64 {
	if condition == ConditionDefective {
		return r.QtyDefective
	}
	return r.QtyGood
}

// Apply suma delta a la condición indicada. Retorna false si el resultado
// sería negativo (el invariante qty >= 0 nunca se viola).
func (r *InventoryRecord) Apply(condition string, delta int64) bool {
	switch condition {
	case ConditionDefective:
		if r.QtyDefective+delta < 0 {
			return false
		}
		r.QtyDefective += delta
	default:
		if r.QtyGood+delta < 0 {
			return false
		}
		r.QtyGood += delta
	}
	return true
}
