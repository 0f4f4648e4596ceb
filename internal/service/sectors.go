package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/escolar/inventario/internal/errs"
	"github.com/escolar/inventario/internal/model"
	"github.com/escolar/inventario/internal/repository"
)

// SectorService manages the sector reference data. Reads are open to
// any authenticated user; writes are admin-only.
type SectorService interface {
	List(ctx context.Context) ([]model.Sector, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Sector, error)
	Create(ctx context.Context, actor *model.User, name, description string) (*model.Sector, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, name, description string) (*model.Sector, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type SectorServiceImpl struct {
	sectors repository.SectorRepository
}

// NewSectorService constructs SectorService.
func NewSectorService(sectors repository.SectorRepository) *SectorServiceImpl {
	return &SectorServiceImpl{sectors: sectors}
}

func (s *SectorServiceImpl) List(ctx context.Context) ([]model.Sector, error) {
	return s.sectors.List(ctx)
}

func (s *SectorServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.Sector, error) {
	return s.sectors.Get(ctx, id)
}

func (s *SectorServiceImpl) Create(ctx context.Context, actor *model.User, name, description string) (*model.Sector, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("empty sector name: %w", errs.ErrValidation)
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	sec := &model.Sector{ID: id, Name: name, Description: description}
	if err := s.sectors.Create(ctx, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *SectorServiceImpl) Update(ctx context.Context, actor *model.User, id uuid.UUID, name, description string) (*model.Sector, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("empty sector name: %w", errs.ErrValidation)
	}
	sec := &model.Sector{ID: id, Name: name, Description: description}
	if err := s.sectors.Update(ctx, sec); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *SectorServiceImpl) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.sectors.Delete(ctx, id)
}

func requireAdmin(actor *model.User) error {
	if actor == nil || actor.Role != model.RoleAdmin {
		return errs.ErrForbidden
	}
	return nil
}
