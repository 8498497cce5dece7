package entity

import "time"

// Tipos de solicitud de repuestos.
const (
	RequestTypeTechnicianIssue   = "technician_issue"   // entrega a técnico
	RequestTypeConsignmentFillup = "consignment_fillup" // reposición de consignación
	RequestTypeConsignmentReturn = "consignment_return" // devolución de consignación
)

// Estados de una solicitud de repuestos.
// pending -> {approved, rejected, forwarded}; approved -> allocated -> completed.
// Terminales: rejected, completed.
const (
	RequestPending   = "pending"
	RequestApproved  = "approved"
	RequestRejected  = "rejected"
	RequestForwarded = "forwarded"
	RequestAllocated = "allocated"
	RequestCompleted = "completed"
)

// SpareRequest es una solicitud de traslado de repuestos entre ubicaciones,
// que avanza por un ciclo de aprobación. Nunca regresa a un estado anterior.
type SpareRequest struct {
	ID          string
	Type        string
	Source      Location // ubicación que despacha
	Destination Location // ubicación que recibe
	Reason      string
	Status      string
	ParentID    string // solicitud original cuando fue reenviada aguas arriba
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SpareRequestItem es un renglón de la solicitud. ApprovedQty queda nil
// hasta que el aprobador decide.
type SpareRequestItem struct {
	ID           string
	RequestID    string
	PartID       string
	RequestedQty int64
	ApprovedQty  *int64
}

// requestEdges define las transiciones legales del ciclo de vida.
var requestEdges = map[string][]string{
	RequestPending:   {RequestApproved, RequestRejected, RequestForwarded},
	RequestApproved:  {RequestAllocated},
	RequestAllocated: {RequestCompleted},
}

// CanTransition reporta si el paso status -> next está declarado.
func (r *SpareRequest) CanTransition(next string) bool {
	for _, s := range requestEdges[r.Status] {
		if s == next {
			return true
		}
	}
	return false
}

// Decidable reporta si la solicitud admite decide/forward (solo en pending).
func (r *SpareRequest) Decidable() bool {
	return r.Status == RequestPending
}

// Terminal reporta si la solicitud ya no admite transiciones.
func (r *SpareRequest) Terminal() bool {
	return r.Status == RequestRejected || r.Status == RequestCompleted
}
