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

// ItemRepo implements ItemRepository using PostgreSQL. Lifecycle writes
// lock the item row and pair the item update with its history insert in
// one transaction, so the audit trail can never drift from the item.
type ItemRepo struct{ db *DB }

// NewItemRepo constructs an item repository.
func NewItemRepo(db *DB) *ItemRepo { return &ItemRepo{db: db} }

const itemCols = `id, name, type, sector, building, room, cabinet, shelf, status,
current_user_name, last_user_name, last_movement, observations, is_public,
authorized_sectors, version, created_at, updated_at`

// Create inserts the item and its "created" history entry atomically.
func (r *ItemRepo) Create(ctx context.Context, it *model.Item, entry *model.HistoryEntry) (err error) {
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

	const ins = `
INSERT INTO items (id, name, type, sector, building, room, cabinet, shelf, status,
current_user_name, last_user_name, last_movement, observations, is_public,
authorized_sectors, version, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`
	_, err = tx.Exec(ctx, ins,
		it.ID, it.Name, string(it.Type), it.Sector,
		it.Location.Building, it.Location.Room, it.Location.Cabinet, it.Location.Shelf,
		string(it.Status), it.CurrentUser, it.LastUser, it.LastMovement,
		it.Observations, it.IsPublic, it.AuthorizedSectors, it.Version,
		it.CreatedAt, it.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return err
	}
	return insertHistory(ctx, tx, entry)
}

// Get returns a single item by id.
func (r *ItemRepo) Get(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+itemCols+` FROM items WHERE id=$1`, id)
	it, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return it, nil
}

// List returns all items ordered by name.
func (r *ItemRepo) List(ctx context.Context) ([]model.Item, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT `+itemCols+` FROM items ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// ApplyTransition commits a lifecycle change. The stored version must
// equal baseVersion and the stored status must match the transition's
// from-state; any mismatch means the caller acted on stale data.
func (r *ItemRepo) ApplyTransition(ctx context.Context, it *model.Item, entry *model.HistoryEntry, baseVersion int64) (err error) {
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

	const sel = `SELECT status, version FROM items WHERE id=$1 FOR UPDATE`
	var curStatus string
	var curVer int64
	if err = tx.QueryRow(ctx, sel, it.ID).Scan(&curStatus, &curVer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if curVer != baseVersion {
		return fmt.Errorf("version %d, have %d: %w", baseVersion, curVer, errs.ErrInvalidTransition)
	}
	if entry.PreviousStatus == nil || curStatus != string(*entry.PreviousStatus) {
		return fmt.Errorf("status changed underneath: %w", errs.ErrInvalidTransition)
	}

	const upd = `
UPDATE items
SET status=$2, current_user_name=$3, last_user_name=$4, last_movement=$5,
    updated_at=$6, version=$7
WHERE id=$1`
	if _, err = tx.Exec(ctx, upd, it.ID, string(it.Status), it.CurrentUser,
		it.LastUser, it.LastMovement, it.UpdatedAt, it.Version); err != nil {
		return err
	}
	return insertHistory(ctx, tx, entry)
}

// UpdateMetadata commits a metadata-only edit with the same version
// check as ApplyTransition. Lifecycle columns are not touched.
func (r *ItemRepo) UpdateMetadata(ctx context.Context, it *model.Item, entry *model.HistoryEntry, baseVersion int64) (err error) {
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

	const sel = `SELECT version FROM items WHERE id=$1 FOR UPDATE`
	var curVer int64
	if err = tx.QueryRow(ctx, sel, it.ID).Scan(&curVer); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if curVer != baseVersion {
		return fmt.Errorf("version %d, have %d: %w", baseVersion, curVer, errs.ErrInvalidTransition)
	}

	const upd = `
UPDATE items
SET name=$2, type=$3, sector=$4, building=$5, room=$6, cabinet=$7, shelf=$8,
    observations=$9, is_public=$10, authorized_sectors=$11, updated_at=$12, version=$13
WHERE id=$1`
	if _, err = tx.Exec(ctx, upd, it.ID, it.Name, string(it.Type), it.Sector,
		it.Location.Building, it.Location.Room, it.Location.Cabinet, it.Location.Shelf,
		it.Observations, it.IsPublic, it.AuthorizedSectors, it.UpdatedAt, it.Version); err != nil {
		return err
	}
	return insertHistory(ctx, tx, entry)
}

// Delete removes an item. History rows go with it via ON DELETE CASCADE.
func (r *ItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM items WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// ListHistory returns the item's history entries, most recent first.
func (r *ItemRepo) ListHistory(ctx context.Context, itemID uuid.UUID) ([]model.HistoryEntry, error) {
	const q = `
SELECT id, item_id, action, actor_name, ts, observations, previous_status, new_status
FROM item_history
WHERE item_id=$1
ORDER BY ts DESC, id DESC`
	rows, err := r.db.Pool.Query(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.HistoryEntry
	for rows.Next() {
		var (
			e          model.HistoryEntry
			action     string
			prev, next *string
		)
		if err = rows.Scan(&e.ID, &e.ItemID, &action, &e.User, &e.Timestamp,
			&e.Observations, &prev, &next); err != nil {
			return nil, err
		}
		e.Action = model.HistoryAction(action)
		e.PreviousStatus = toStatusPtr(prev)
		e.NewStatus = toStatusPtr(next)
		out = append(out, e)
	}
	return out, rows.Err()
}

// insertHistory appends one audit record inside the caller's transaction.
func insertHistory(ctx context.Context, tx pgx.Tx, e *model.HistoryEntry) error {
	const ins = `
INSERT INTO item_history (id, item_id, action, actor_name, ts, observations, previous_status, new_status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := tx.Exec(ctx, ins, e.ID, e.ItemID, string(e.Action), e.User,
		e.Timestamp, e.Observations, fromStatusPtr(e.PreviousStatus), fromStatusPtr(e.NewStatus))
	return err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanItem(row rowScanner) (*model.Item, error) {
	var (
		it           model.Item
		typ, status  string
		curU, lastU  string
		observations string
	)
	err := row.Scan(&it.ID, &it.Name, &typ, &it.Sector,
		&it.Location.Building, &it.Location.Room, &it.Location.Cabinet, &it.Location.Shelf,
		&status, &curU, &lastU, &it.LastMovement, &observations, &it.IsPublic,
		&it.AuthorizedSectors, &it.Version, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		return nil, err
	}
	it.Type = model.ItemType(typ)
	it.Status = model.ItemStatus(status)
	it.CurrentUser = curU
	it.LastUser = lastU
	it.Observations = observations
	if it.AuthorizedSectors == nil {
		it.AuthorizedSectors = []string{}
	}
	return &it, nil
}

func fromStatusPtr(s *model.ItemStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func toStatusPtr(s *string) *model.ItemStatus {
	if s == nil {
		return nil
	}
	v := model.ItemStatus(*s)
	return &v
}
