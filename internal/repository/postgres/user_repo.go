package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/escolar/inventario/internal/errs"
	"github.com/escolar/inventario/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const userCols = `id, username, name, role, sector, email, pwd_hash, salt_auth, created_at`

// Create inserts a new user row. An empty sector is stored as NULL so
// only accounts that actually carry a sector are bound by the FK.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, username, name, role, sector, email, pwd_hash, salt_auth)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Pool.Exec(ctx, q, u.ID, u.Username, u.Name, string(u.Role),
		sectorParam(u.Sector), u.Email, u.PwdHash, u.SaltAuth)
	switch {
	case isUniqueViolation(err):
		return errs.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return fmt.Errorf("unknown sector %q: %w", u.Sector, errs.ErrValidation)
	}
	return err
}

// GetByID selects a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id)
	return scanUser(row)
}

// GetByUsername selects a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE username=$1`, username)
	return scanUser(row)
}

// List returns all users ordered by username.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+userCols+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// Update rewrites the user's mutable fields.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	const q = `UPDATE users SET name=$2, role=$3, sector=$4, email=$5 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, u.ID, u.Name, string(u.Role), sectorParam(u.Sector), u.Email)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("unknown sector %q: %w", u.Sector, errs.ErrValidation)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetPassword replaces the stored hash and salt.
func (r *UserRepo) SetPassword(ctx context.Context, id uuid.UUID, pwdHash, saltAuth []byte) error {
	const q = `UPDATE users SET pwd_hash=$2, salt_auth=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, pwdHash, saltAuth)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// Delete removes a user row.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*model.User, error) {
	var (
		u      model.User
		role   string
		sector *string
	)
	err := row.Scan(&u.ID, &u.Username, &u.Name, &role, &sector, &u.Email,
		&u.PwdHash, &u.SaltAuth, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	if sector != nil {
		u.Sector = *sector
	}
	return &u, nil
}

// sectorParam maps the model's empty-string "no sector" to SQL NULL.
func sectorParam(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
