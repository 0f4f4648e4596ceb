// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the closed set of user roles.
type Role string

// User roles.
const (
	RoleAdmin  Role = "admin"  // sees and edits everything
	RoleSector Role = "sector" // scoped to the user's sector
	RoleUser   Role = "user"   // sees only public items
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSector, RoleUser:
		return true
	}
	return false
}

// ItemStatus is the lifecycle state of an item.
type ItemStatus string

// Item lifecycle states.
const (
	StatusAvailable ItemStatus = "available"
	StatusBorrowed  ItemStatus = "borrowed"
	StatusLost      ItemStatus = "lost"
)

// Valid reports whether the status is one of the known values.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusBorrowed, StatusLost:
		return true
	}
	return false
}

// ItemType classifies the physical asset.
type ItemType string

// Item types.
const (
	TypeBox       ItemType = "box"
	TypeMaterial  ItemType = "material"
	TypeEquipment ItemType = "equipment"
	TypeDocument  ItemType = "document"
	TypeOther     ItemType = "other"
)

// Valid reports whether the type is one of the known values.
func (t ItemType) Valid() bool {
	switch t {
	case TypeBox, TypeMaterial, TypeEquipment, TypeDocument, TypeOther:
		return true
	}
	return false
}

// HistoryAction is the kind of event recorded in an item's history.
type HistoryAction string

// History actions.
const (
	ActionCreated  HistoryAction = "created"
	ActionUpdated  HistoryAction = "updated"
	ActionBorrowed HistoryAction = "borrowed"
	ActionReturned HistoryAction = "returned"
	ActionLost     HistoryAction = "lost"
	ActionFound    HistoryAction = "found"
)

// Sector is an organizational unit that owns items. Items and users
// reference sectors by name, not by id.
type Sector struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// User is an account. Sector is required iff Role == RoleSector; a
// sector-role user without a sector is treated as a plain user by the
// permission rules.
type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Role     Role      `json:"role"`
	Sector   string    `json:"sector,omitempty"`
	Email    string    `json:"email,omitempty"`
	PwdHash  []byte    `json:"-"`
	SaltAuth []byte    `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// Location is where an item is physically kept. All fields optional.
type Location struct {
	Building string `json:"building,omitempty"`
	Room     string `json:"room,omitempty"`
	Cabinet  string `json:"cabinet,omitempty"`
	Shelf    string `json:"shelf,omitempty"`
}

// Item is a tracked physical asset.
//
// Invariants maintained by the transition engine:
//   - CurrentUser is non-empty iff Status == StatusBorrowed.
//   - LastMovement changes on every lifecycle transition and only then.
//   - Version increments on every write; callers pass the version they
//     read and stale writes are rejected.
type Item struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Type              ItemType   `json:"type"`
	Sector            string     `json:"sector"` // owning sector name
	Location          Location   `json:"location"`
	Status            ItemStatus `json:"status"`
	CurrentUser       string     `json:"currentUser,omitempty"`
	LastUser          string     `json:"lastUser,omitempty"`
	LastMovement      time.Time  `json:"lastMovement"`
	Observations      string     `json:"observations,omitempty"`
	IsPublic          bool       `json:"isPublic"`
	AuthorizedSectors []string   `json:"authorizedSectors"`
	Version           int64      `json:"version"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// HistoryEntry is one immutable audit record of an item event.
// PreviousStatus is nil for ActionCreated; both status fields are nil
// for ActionUpdated (metadata-only edits do not move the lifecycle).
type HistoryEntry struct {
	ID             uuid.UUID     `json:"id"`
	ItemID         uuid.UUID     `json:"itemId"`
	Action         HistoryAction `json:"action"`
	User           string        `json:"user"` // actor display name
	Timestamp      time.Time     `json:"timestamp"`
	Observations   string        `json:"observations,omitempty"`
	PreviousStatus *ItemStatus   `json:"previousStatus,omitempty"`
	NewStatus      *ItemStatus   `json:"newStatus,omitempty"`
}

// Tokens collects issued credentials for a login session.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// SectorCount is the number of items owned by one sector.
type SectorCount struct {
	Sector string `json:"sector"`
	Count  int    `json:"count"`
}

// DashboardStats summarizes the items visible to one viewer.
type DashboardStats struct {
	TotalItems     int           `json:"totalItems"`
	AvailableItems int           `json:"availableItems"`
	BorrowedItems  int           `json:"borrowedItems"`
	LostItems      int           `json:"lostItems"`
	ItemsBySector  []SectorCount `json:"itemsBySector"`
	RecentItems    []Item        `json:"recentItems"`
}
