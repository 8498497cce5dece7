package dto

import "github.com/go-playground/validator/v10"

// validate instancia compartida del validador de structs.
// El esquema tipado y validado en la frontera reemplaza cualquier adivinanza
// de nombres de campo: entrada no conforme se rechaza de inmediato.
var validate = validator.New()

// Validate valida un DTO contra sus tags `validate`.
func Validate(v any) error {
	return validate.Struct(v)
}

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// LocationDTO ubicación tipada (llave compuesta del ledger).
type LocationDTO struct {
	Type string `json:"type" query:"type" validate:"required,oneof=technician service_center branch warehouse"`
	ID   string `json:"id" query:"id" validate:"required"`
}
