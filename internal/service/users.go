package service

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	pkgcrypto "github.com/escolar/inventario/internal/crypto"
	"github.com/escolar/inventario/internal/errs"
	"github.com/escolar/inventario/internal/model"
	"github.com/escolar/inventario/internal/repository"
)

// UserService manages accounts. Every operation is admin-only: accounts
// are reference data for the permission rules, not self-service.
type UserService interface {
	List(ctx context.Context, actor *model.User) ([]model.User, error)
	Get(ctx context.Context, actor *model.User, id uuid.UUID) (*model.User, error)
	Create(ctx context.Context, actor *model.User, in CreateUserInput) (*model.User, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

// CreateUserInput carries the fields of a new account.
type CreateUserInput struct {
	Username string
	Password string
	Name     string
	Role     model.Role
	Sector   string
	Email    string
}

// UpdateUserInput carries the mutable fields of an account. An empty
// Password leaves the current one in place.
type UpdateUserInput struct {
	Name     string
	Role     model.Role
	Sector   string
	Email    string
	Password string
}

type UserServiceImpl struct {
	users   repository.UserRepository
	sectors repository.SectorRepository
}

// NewUserService constructs UserService.
func NewUserService(users repository.UserRepository, sectors repository.SectorRepository) *UserServiceImpl {
	return &UserServiceImpl{users: users, sectors: sectors}
}

func (s *UserServiceImpl) List(ctx context.Context, actor *model.User) ([]model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

func (s *UserServiceImpl) Get(ctx context.Context, actor *model.User, id uuid.UUID) (*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserServiceImpl) Create(ctx context.Context, actor *model.User, in CreateUserInput) (*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if in.Username == "" || in.Password == "" || in.Name == "" {
		return nil, fmt.Errorf("username, password and name are required: %w", errs.ErrValidation)
	}
	if err := s.checkRoleSector(ctx, in.Role, in.Sector); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		ID:       id,
		Username: in.Username,
		Name:     in.Name,
		Role:     in.Role,
		Sector:   in.Sector,
		Email:    in.Email,
		PwdHash:  pkgcrypto.HashPassword([]byte(in.Password), salt),
		SaltAuth: salt,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserServiceImpl) Update(ctx context.Context, actor *model.User, id uuid.UUID, in UpdateUserInput) (*model.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	cur, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("empty name: %w", errs.ErrValidation)
	}
	if err := s.checkRoleSector(ctx, in.Role, in.Sector); err != nil {
		return nil, err
	}

	next := *cur
	next.Name = in.Name
	next.Role = in.Role
	next.Sector = in.Sector
	next.Email = in.Email
	if err := s.users.Update(ctx, &next); err != nil {
		return nil, err
	}

	if in.Password != "" {
		salt, err := pkgcrypto.RandBytes(16)
		if err != nil {
			return nil, err
		}
		hash := pkgcrypto.HashPassword([]byte(in.Password), salt)
		if err := s.users.SetPassword(ctx, id, hash, salt); err != nil {
			return nil, err
		}
	}
	return &next, nil
}

func (s *UserServiceImpl) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == id {
		return fmt.Errorf("cannot delete own account: %w", errs.ErrValidation)
	}
	return s.users.Delete(ctx, id)
}

// checkRoleSector enforces: role must be known, sector-role users name
// an existing sector, other roles carry no sector.
func (s *UserServiceImpl) checkRoleSector(ctx context.Context, role model.Role, sector string) error {
	if !role.Valid() {
		return fmt.Errorf("bad role %q: %w", role, errs.ErrValidation)
	}
	if role == model.RoleSector {
		if sector == "" {
			return fmt.Errorf("sector role requires a sector: %w", errs.ErrValidation)
		}
		if _, err := s.sectors.GetByName(ctx, sector); err != nil {
			return fmt.Errorf("sector %q: %w", sector, err)
		}
	} else if sector != "" {
		return fmt.Errorf("role %q cannot carry a sector: %w", role, errs.ErrValidation)
	}
	return nil
}
