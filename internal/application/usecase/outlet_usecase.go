package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tiendapro/tiendapro-api/internal/application/dto"
	"github.com/tiendapro/tiendapro-api/internal/domain"
	"github.com/tiendapro/tiendapro-api/internal/domain/entity"
	"github.com/tiendapro/tiendapro-api/internal/domain/repository"
)

// OutletUseCase casos de uso CRUD para puntos de venta.
type OutletUseCase struct {
	repo repository.OutletRepository
}

// NewOutletUseCase construye el caso de uso.
func NewOutletUseCase(repo repository.OutletRepository) *OutletUseCase {
	return &OutletUseCase{repo: repo}
}

// Create crea un punto de venta.
func (uc *OutletUseCase) Create(ctx context.Context, companyID string, in dto.CreateOutletRequest) (*dto.OutletResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	outlet := &entity.Outlet{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, outlet); err != nil {
		return nil, err
	}
	return toOutletResponse(outlet), nil
}

// GetByID obtiene un punto de venta por ID validando la empresa.
func (uc *OutletUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.OutletResponse, error) {
	outlet, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, domain.ErrNotFound
	}
	if outlet.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toOutletResponse(outlet), nil
}

// Update actualiza nombre o dirección.
func (uc *OutletUseCase) Update(ctx context.Context, companyID, id string, in dto.UpdateOutletRequest) (*dto.OutletResponse, error) {
	outlet, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if outlet == nil {
		return nil, domain.ErrNotFound
	}
	if outlet.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	if in.Name != nil {
		outlet.Name = *in.Name
	}
	if in.Address != nil {
		outlet.Address = *in.Address
	}
	outlet.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, outlet); err != nil {
		return nil, err
	}
	return toOutletResponse(outlet), nil
}

// List lista puntos de venta por empresa con paginación.
func (uc *OutletUseCase) List(ctx context.Context, companyID string, limit, offset int) (*dto.OutletListResponse, error) {
	list, err := uc.repo.ListByCompany(ctx, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OutletResponse, 0, len(list))
	for _, o := range list {
		items = append(items, *toOutletResponse(o))
	}
	return &dto.OutletListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

func toOutletResponse(o *entity.Outlet) *dto.OutletResponse {
	return &dto.OutletResponse{
		ID:        o.ID,
		Name:      o.Name,
		Address:   o.Address,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}
