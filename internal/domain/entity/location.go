package entity

// Tipos de ubicación que mantienen inventario.
const (
	LocationTechnician    = "technician"
	LocationServiceCenter = "service_center"
	LocationBranch        = "branch"
	LocationWarehouse     = "warehouse"
)

// Location identifica una ubicación física u organizacional (tipo + id).
// No es una fila propia: es la llave compuesta usada en todo el ledger.
type Location struct {
	Type string
	ID   string
}

// Valid verifica tipo conocido e id no vacío.
func (l Location) Valid() bool {
	if l.ID == "" {
		return false
	}
	switch l.Type {
	case LocationTechnician, LocationServiceCenter, LocationBranch, LocationWarehouse:
		return true
	}
	return false
}

// Equal compara dos ubicaciones por tipo e id.
func (l Location) Equal(other Location) bool {
	return l.Type == other.Type && l.ID == other.ID
}

// Key devuelve una llave ordenable para bloquear filas en orden determinístico.
func (l Location) Key() string {
	return l.Type + "/" + l.ID
}
