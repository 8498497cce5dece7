package parts

import (
	"context"

	"github.com/serviplus/repuestos-api/internal/domain"
	"github.com/serviplus/repuestos-api/internal/domain/entity"
	"github.com/serviplus/repuestos-api/internal/domain/repository"
)

// UseCase lecturas del catálogo de repuestos (datos maestros, carga externa).
type UseCase struct {
	partRepo repository.PartRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(partRepo repository.PartRepository) *UseCase {
	return &UseCase{partRepo: partRepo}
}

// Get devuelve un repuesto por id.
func (uc *UseCase) Get(ctx context.Context, id string) (*entity.Part, error) {
	part, err := uc.partRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	return part, nil
}

// GetByCode devuelve un repuesto por código.
func (uc *UseCase) GetByCode(ctx context.Context, code string) (*entity.Part, error) {
	part, err := uc.partRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	return part, nil
}

// List lista el catálogo paginado.
func (uc *UseCase) List(ctx context.Context, limit, offset int) ([]*entity.Part, error) {
	return uc.partRepo.List(ctx, limit, offset)
}
