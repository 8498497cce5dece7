package entity

import "time"

// Estados de una devolución de técnico.
// pending -> received -> verified -> completed; rejected es legal antes de completed.
const (
	ReturnPending   = "pending"
	ReturnReceived  = "received"
	ReturnVerified  = "verified"
	ReturnCompleted = "completed"
	ReturnRejected  = "rejected"
)

// ReturnRequest es una devolución iniciada por un técnico hacia su centro de
// servicio, con seguimiento separado de cantidades buenas y defectuosas.
type ReturnRequest struct {
	ID            string
	Technician    Location // origen (tipo technician)
	ServiceCenter Location // destino (tipo service_center)
	Reason        string
	Status        string
	RejectReason  string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReturnItem es un renglón de la devolución. Declared* es lo anunciado por el
// técnico; Received* lo contado al recibir; Verified* lo reconciliado.
type ReturnItem struct {
	ID                string
	ReturnID          string
	PartID            string
	DeclaredGood      int64
	DeclaredDefective int64
	ReceivedGood      *int64
	ReceivedDefective *int64
	VerifiedGood      *int64
	VerifiedDefective *int64
}

var returnEdges = map[string][]string{
	ReturnPending:  {ReturnReceived, ReturnRejected},
	ReturnReceived: {ReturnVerified, ReturnRejected},
	ReturnVerified: {ReturnCompleted},
}

// CanTransition reporta si el paso status -> next está declarado.
func (r *ReturnRequest) CanTransition(next string) bool {
	for _, s := range returnEdges[r.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Terminal reporta si la devolución ya no admite transiciones.
func (r *ReturnRequest) Terminal() bool {
	return r.Status == ReturnRejected || r.Status == ReturnCompleted
}
