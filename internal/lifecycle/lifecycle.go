// Package lifecycle implements the item status state machine.
//
// The transition table is data, not control flow: every (status, action)
// pair either maps to a next status or is rejected with
// errs.ErrInvalidTransition. Apply is pure; persistence of the resulting
// item and history entry is the repository's job and happens in a single
// transaction.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/escolar/inventario/internal/errs"
	"github.com/escolar/inventario/internal/model"
)

// Action is a requested lifecycle operation.
type Action string

// Lifecycle actions. Edit and create are handled by EditEntry and
// NewCreatedEntry; they are not part of the status transition table.
const (
	ActionBorrow    Action = "borrow"
	ActionReturn    Action = "return"
	ActionMarkLost  Action = "markLost"
	ActionMarkFound Action = "markFound"
)

// Payload carries the action-specific fields of a transition request.
type Payload struct {
	BorrowingUser string // required for ActionBorrow
	Observations  string // copied onto the history entry
}

// transitions is the allowed (status, action) -> status table.
var transitions = map[model.ItemStatus]map[Action]model.ItemStatus{
	model.StatusAvailable: {
		ActionBorrow:   model.StatusBorrowed,
		ActionMarkLost: model.StatusLost,
	},
	model.StatusBorrowed: {
		ActionReturn:   model.StatusAvailable,
		ActionMarkLost: model.StatusLost,
	},
	model.StatusLost: {
		ActionMarkFound: model.StatusAvailable,
	},
}

// historyActions maps a lifecycle action to the history record kind.
var historyActions = map[Action]model.HistoryAction{
	ActionBorrow:    model.ActionBorrowed,
	ActionReturn:    model.ActionReturned,
	ActionMarkLost:  model.ActionLost,
	ActionMarkFound: model.ActionFound,
}

// Next returns the status reached by applying act to from, or false if
// the pair is not in the table.
func Next(from model.ItemStatus, act Action) (model.ItemStatus, bool) {
	to, ok := transitions[from][act]
	return to, ok
}

// Apply computes the post-transition copy of it plus the history entry
// recording the move. It does not mutate its input and performs no I/O.
//
// Errors: errs.ErrInvalidTransition if the table rejects the pair,
// errs.ErrValidation if a required payload field is missing.
func Apply(it model.Item, act Action, actor string, p Payload, now time.Time) (model.Item, model.HistoryEntry, error) {
	to, ok := Next(it.Status, act)
	if !ok {
		return model.Item{}, model.HistoryEntry{},
			fmt.Errorf("%s from %q: %w", act, it.Status, errs.ErrInvalidTransition)
	}
	if act == ActionBorrow && p.BorrowingUser == "" {
		return model.Item{}, model.HistoryEntry{},
			fmt.Errorf("borrow: missing borrowing user: %w", errs.ErrValidation)
	}

	prev := it.Status
	it.Status = to
	switch act {
	case ActionBorrow:
		it.CurrentUser = p.BorrowingUser
		it.LastUser = p.BorrowingUser
	case ActionReturn, ActionMarkLost:
		// LastUser keeps the most recent holder.
		it.CurrentUser = ""
	case ActionMarkFound:
	}
	it.LastMovement = now
	it.UpdatedAt = now
	it.Version++

	id, err := uuid.NewV4()
	if err != nil {
		return model.Item{}, model.HistoryEntry{}, err
	}
	entry := model.HistoryEntry{
		ID:             id,
		ItemID:         it.ID,
		Action:         historyActions[act],
		User:           actor,
		Timestamp:      now,
		Observations:   p.Observations,
		PreviousStatus: &prev,
		NewStatus:      &to,
	}
	return it, entry, nil
}

// NewCreatedEntry builds the mandatory history record for item creation.
// PreviousStatus is nil: there was no prior state.
func NewCreatedEntry(it *model.Item, actor string, now time.Time) (model.HistoryEntry, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.HistoryEntry{}, err
	}
	status := it.Status
	return model.HistoryEntry{
		ID:        id,
		ItemID:    it.ID,
		Action:    model.ActionCreated,
		User:      actor,
		Timestamp: now,
		NewStatus: &status,
	}, nil
}

// EditEntry builds the history record for a metadata-only edit. Status
// fields stay nil: edits never move the lifecycle.
func EditEntry(it *model.Item, actor, observations string, now time.Time) (model.HistoryEntry, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.HistoryEntry{}, err
	}
	return model.HistoryEntry{
		ID:           id,
		ItemID:       it.ID,
		Action:       model.ActionUpdated,
		User:         actor,
		Timestamp:    now,
		Observations: observations,
	}, nil
}

// ParseAction validates a wire-format action string.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionBorrow, ActionReturn, ActionMarkLost, ActionMarkFound:
		return Action(s), nil
	}
	return "", fmt.Errorf("unknown action %q: %w", s, errs.ErrValidation)
}
