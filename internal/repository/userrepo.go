// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/escolar/inventario/internal/model"
)

// UserRepository provides CRUD access for user accounts.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	// GetByUsername loads a user by username.
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// List returns all users ordered by username.
	List(ctx context.Context) ([]model.User, error)
	// Update rewrites a user's mutable fields (name, role, sector, email).
	Update(ctx context.Context, u *model.User) error
	// SetPassword replaces the stored hash and salt.
	SetPassword(ctx context.Context, id uuid.UUID, pwdHash, saltAuth []byte) error
	// Delete removes a user.
	Delete(ctx context.Context, id uuid.UUID) error
}
