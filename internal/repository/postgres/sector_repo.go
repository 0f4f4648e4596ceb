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

// SectorRepo implements SectorRepository using PostgreSQL.
type SectorRepo struct{ db *DB }

// NewSectorRepo constructs a sector repository.
func NewSectorRepo(db *DB) *SectorRepo { return &SectorRepo{db: db} }

// Create inserts a new sector row.
func (r *SectorRepo) Create(ctx context.Context, s *model.Sector) error {
	const q = `INSERT INTO sectors (id, name, description) VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, s.ID, s.Name, s.Description)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get selects a sector by ID.
func (r *SectorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Sector, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT id, name, description FROM sectors WHERE id=$1`, id)
	return scanSector(row)
}

// GetByName selects a sector by its unique name.
func (r *SectorRepo) GetByName(ctx context.Context, name string) (*model.Sector, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT id, name, description FROM sectors WHERE name=$1`, name)
	return scanSector(row)
}

// List returns all sectors ordered by name.
func (r *SectorRepo) List(ctx context.Context) ([]model.Sector, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, description FROM sectors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Sector
	for rows.Next() {
		s, err := scanSector(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// Update rewrites name and description. items.sector and users.sector
// follow a rename via ON UPDATE CASCADE; the authorization grants are
// plain array entries, so the rename is applied to them in the same
// transaction. No reference to the old name survives the commit.
func (r *SectorRepo) Update(ctx context.Context, s *model.Sector) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	var oldName string
	if err = tx.QueryRow(ctx, `SELECT name FROM sectors WHERE id=$1 FOR UPDATE`, s.ID).Scan(&oldName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	const upd = `UPDATE sectors SET name=$2, description=$3 WHERE id=$1`
	if _, err = tx.Exec(ctx, upd, s.ID, s.Name, s.Description); err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}

	if s.Name != oldName {
		const grants = `
UPDATE items
SET authorized_sectors = array_replace(authorized_sectors, $1, $2)
WHERE $1 = ANY (authorized_sectors)`
		if _, err = tx.Exec(ctx, grants, oldName, s.Name); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a sector row. Items and accounts still referencing it
// hold it in place through their FKs.
func (r *SectorRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sectors WHERE id=$1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("sector still referenced: %w", errs.ErrInUse)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanSector(row rowScanner) (*model.Sector, error) {
	var s model.Sector
	if err := row.Scan(&s.ID, &s.Name, &s.Description); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
