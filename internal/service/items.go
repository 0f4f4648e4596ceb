package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/escolar/inventario/internal/errs"
	"github.com/escolar/inventario/internal/lifecycle"
	"github.com/escolar/inventario/internal/model"
	"github.com/escolar/inventario/internal/perm"
	"github.com/escolar/inventario/internal/repository"
)

// ItemService is the only path that mutates items and their history.
// Read operations are filtered by the visibility rules; mutations
// additionally require edit rights on the item's owning sector.
type ItemService interface {
	// List returns the items visible to viewer.
	List(ctx context.Context, viewer *model.User) ([]model.Item, error)
	// Get returns one item, or ErrNotFound if it does not exist or is
	// not visible to viewer.
	Get(ctx context.Context, viewer *model.User, id uuid.UUID) (*model.Item, error)
	// History returns the item's audit log, most recent first, gated by
	// the same visibility rule as Get.
	History(ctx context.Context, viewer *model.User, id uuid.UUID) ([]model.HistoryEntry, error)
	// Create registers a new item and its "created" history entry.
	Create(ctx context.Context, actor *model.User, in CreateItemInput) (*model.Item, error)
	// Update applies a metadata-only edit, logging an "updated" entry.
	Update(ctx context.Context, actor *model.User, id uuid.UUID, in UpdateItemInput) (*model.Item, error)
	// Move runs one lifecycle transition (borrow, return, markLost,
	// markFound) and returns the updated item plus the audit entry.
	Move(ctx context.Context, actor *model.User, in MoveInput) (*model.Item, *model.HistoryEntry, error)
	// Delete destroys an item and its history. Admin only.
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
	// Stats summarizes the items visible to viewer.
	Stats(ctx context.Context, viewer *model.User) (*model.DashboardStats, error)
}

// CreateItemInput carries the fields of a new item. Status defaults to
// available; a borrowed status requires CurrentUser.
type CreateItemInput struct {
	Name              string
	Type              model.ItemType
	Sector            string
	Location          model.Location
	Status            model.ItemStatus
	CurrentUser       string
	Observations      string
	IsPublic          bool
	AuthorizedSectors []string
}

// UpdateItemInput carries a metadata edit. Version is the item version
// the caller read; a stale version rejects the edit.
type UpdateItemInput struct {
	Name              string
	Type              model.ItemType
	Sector            string
	Location          model.Location
	Observations      string
	IsPublic          bool
	AuthorizedSectors []string
	Version           int64
}

// MoveInput carries a transition request.
type MoveInput struct {
	ItemID        uuid.UUID
	Action        lifecycle.Action
	BorrowingUser string
	Observations  string
	Version       int64
}

type ItemServiceImpl struct {
	items   repository.ItemRepository
	sectors repository.SectorRepository
	now     func() time.Time
}

// NewItemService constructs ItemService.
func NewItemService(items repository.ItemRepository, sectors repository.SectorRepository) *ItemServiceImpl {
	return &ItemServiceImpl{items: items, sectors: sectors, now: time.Now}
}

// List returns the viewer-visible subset of all items.
func (s *ItemServiceImpl) List(ctx context.Context, viewer *model.User) ([]model.Item, error) {
	all, err := s.items.List(ctx)
	if err != nil {
		return nil, err
	}
	return perm.Filter(viewer, all), nil
}

// Get loads an item. Invisible items report ErrNotFound rather than a
// permission error, so their existence is not leaked.
func (s *ItemServiceImpl) Get(ctx context.Context, viewer *model.User, id uuid.UUID) (*model.Item, error) {
	it, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !perm.CanView(viewer, it) {
		return nil, errs.ErrNotFound
	}
	return it, nil
}

// History returns the audit log for a visible item.
func (s *ItemServiceImpl) History(ctx context.Context, viewer *model.User, id uuid.UUID) ([]model.HistoryEntry, error) {
	if _, err := s.Get(ctx, viewer, id); err != nil {
		return nil, err
	}
	return s.items.ListHistory(ctx, id)
}

// Create registers a new item. Creation is itself a transition: the
// item row and its "created" history entry commit together.
func (s *ItemServiceImpl) Create(ctx context.Context, actor *model.User, in CreateItemInput) (*model.Item, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("empty name: %w", errs.ErrValidation)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("bad type %q: %w", in.Type, errs.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = model.StatusAvailable
	}
	if !status.Valid() {
		return nil, fmt.Errorf("bad status %q: %w", in.Status, errs.ErrValidation)
	}
	if status == model.StatusBorrowed && in.CurrentUser == "" {
		return nil, fmt.Errorf("borrowed item needs a current user: %w", errs.ErrValidation)
	}
	if status != model.StatusBorrowed && in.CurrentUser != "" {
		return nil, fmt.Errorf("current user only valid for borrowed items: %w", errs.ErrValidation)
	}
	if _, err := s.sectors.GetByName(ctx, in.Sector); err != nil {
		return nil, fmt.Errorf("sector %q: %w", in.Sector, err)
	}

	now := s.now()
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	it := &model.Item{
		ID:                id,
		Name:              in.Name,
		Type:              in.Type,
		Sector:            in.Sector,
		Location:          in.Location,
		Status:            status,
		CurrentUser:       in.CurrentUser,
		LastUser:          in.CurrentUser,
		LastMovement:      now,
		Observations:      in.Observations,
		IsPublic:          in.IsPublic,
		AuthorizedSectors: normalizeSectors(in.AuthorizedSectors),
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if !perm.CanEdit(actor, it) {
		return nil, errs.ErrForbidden
	}

	entry, err := lifecycle.NewCreatedEntry(it, actorName(actor), now)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, it, &entry); err != nil {
		return nil, err
	}
	return it, nil
}

// Update applies a metadata edit. Status, holder and last movement are
// untouchable here; the lifecycle owns them.
func (s *ItemServiceImpl) Update(ctx context.Context, actor *model.User, id uuid.UUID, in UpdateItemInput) (*model.Item, error) {
	cur, err := s.items.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !perm.CanEdit(actor, cur) {
		return nil, errs.ErrForbidden
	}
	if in.Name == "" {
		return nil, fmt.Errorf("empty name: %w", errs.ErrValidation)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("bad type %q: %w", in.Type, errs.ErrValidation)
	}
	if in.Sector != cur.Sector {
		if _, err := s.sectors.GetByName(ctx, in.Sector); err != nil {
			return nil, fmt.Errorf("sector %q: %w", in.Sector, err)
		}
	}

	now := s.now()
	next := *cur
	next.Name = in.Name
	next.Type = in.Type
	next.Sector = in.Sector
	next.Location = in.Location
	next.Observations = in.Observations
	next.IsPublic = in.IsPublic
	next.AuthorizedSectors = normalizeSectors(in.AuthorizedSectors)
	next.UpdatedAt = now
	next.Version = in.Version + 1

	// Moving the item out of the actor's reach is still an edit of the
	// target sector, so the actor needs rights on both.
	if !perm.CanEdit(actor, &next) {
		return nil, errs.ErrForbidden
	}

	entry, err := lifecycle.EditEntry(&next, actorName(actor), "", now)
	if err != nil {
		return nil, err
	}
	if err := s.items.UpdateMetadata(ctx, &next, &entry, in.Version); err != nil {
		return nil, err
	}
	return &next, nil
}

// Move validates and commits one lifecycle transition. Two concurrent
// moves on the same item cannot both succeed: the repository locks the
// row and rejects the loser's stale version.
func (s *ItemServiceImpl) Move(ctx context.Context, actor *model.User, in MoveInput) (*model.Item, *model.HistoryEntry, error) {
	cur, err := s.items.Get(ctx, in.ItemID)
	if err != nil {
		return nil, nil, err
	}
	if !perm.CanEdit(actor, cur) {
		return nil, nil, errs.ErrForbidden
	}
	if in.Version != cur.Version {
		return nil, nil, fmt.Errorf("version %d, have %d: %w", in.Version, cur.Version, errs.ErrInvalidTransition)
	}

	next, entry, err := lifecycle.Apply(*cur, in.Action, actorName(actor), lifecycle.Payload{
		BorrowingUser: in.BorrowingUser,
		Observations:  in.Observations,
	}, s.now())
	if err != nil {
		return nil, nil, err
	}
	if err := s.items.ApplyTransition(ctx, &next, &entry, in.Version); err != nil {
		return nil, nil, err
	}
	return &next, &entry, nil
}

// Delete destroys an item. Destructive and admin-only; history rows
// cascade with the item.
func (s *ItemServiceImpl) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if actor == nil || actor.Role != model.RoleAdmin {
		return errs.ErrForbidden
	}
	return s.items.Delete(ctx, id)
}

// Stats aggregates the viewer-visible items for the dashboard.
func (s *ItemServiceImpl) Stats(ctx context.Context, viewer *model.User) (*model.DashboardStats, error) {
	visible, err := s.List(ctx, viewer)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{TotalItems: len(visible)}
	bySector := map[string]int{}
	for _, it := range visible {
		switch it.Status {
		case model.StatusAvailable:
			stats.AvailableItems++
		case model.StatusBorrowed:
			stats.BorrowedItems++
		case model.StatusLost:
			stats.LostItems++
		}
		bySector[it.Sector]++
	}
	for sector, n := range bySector {
		stats.ItemsBySector = append(stats.ItemsBySector, model.SectorCount{Sector: sector, Count: n})
	}
	sort.Slice(stats.ItemsBySector, func(i, j int) bool {
		a, b := stats.ItemsBySector[i], stats.ItemsBySector[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Sector < b.Sector
	})

	recent := append([]model.Item(nil), visible...)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].LastMovement.After(recent[j].LastMovement)
	})
	if len(recent) > 5 {
		recent = recent[:5]
	}
	stats.RecentItems = recent
	return stats, nil
}

func actorName(u *model.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func normalizeSectors(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
