package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/escolar/inventario/internal/model"
)

// SectorRepository provides CRUD access for sectors. Sectors are
// reference data: the transition engine reads them but never writes.
type SectorRepository interface {
	// Create inserts a new sector; names are unique.
	Create(ctx context.Context, s *model.Sector) error
	// Get loads a sector by ID.
	Get(ctx context.Context, id uuid.UUID) (*model.Sector, error)
	// GetByName loads a sector by its unique name.
	GetByName(ctx context.Context, name string) (*model.Sector, error)
	// List returns all sectors ordered by name.
	List(ctx context.Context) ([]model.Sector, error)
	// Update rewrites name and description.
	Update(ctx context.Context, s *model.Sector) error
	// Delete removes a sector.
	Delete(ctx context.Context, id uuid.UUID) error
}
