package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/escolar/inventario/internal/model"
)

// ItemRepository stores items and their append-only history. Every write
// that touches an item also writes its history entry in the same
// transaction; there is no way to commit one without the other.
type ItemRepository interface {
	// Create inserts a new item together with its "created" history entry.
	Create(ctx context.Context, it *model.Item, entry *model.HistoryEntry) error

	// Get returns a single item by id.
	Get(ctx context.Context, id uuid.UUID) (*model.Item, error)

	// List returns all items ordered by name.
	List(ctx context.Context) ([]model.Item, error)

	// ApplyTransition persists a lifecycle change computed by the state
	// machine. The row is locked, and the stored version must equal
	// baseVersion (it.Version - 1); otherwise errs.ErrInvalidTransition
	// is returned and nothing is written.
	ApplyTransition(ctx context.Context, it *model.Item, entry *model.HistoryEntry, baseVersion int64) error

	// UpdateMetadata persists a metadata-only edit plus its "updated"
	// history entry, with the same version check as ApplyTransition.
	// Status, holder fields and last_movement are left untouched.
	UpdateMetadata(ctx context.Context, it *model.Item, entry *model.HistoryEntry, baseVersion int64) error

	// Delete removes an item; its history rows cascade.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListHistory returns the item's history, most recent first.
	ListHistory(ctx context.Context, itemID uuid.UUID) ([]model.HistoryEntry, error)
}
