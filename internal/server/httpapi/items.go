package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gofrs/uuid/v5"

	"github.com/escolar/inventario/internal/errs"
	"github.com/escolar/inventario/internal/lifecycle"
	"github.com/escolar/inventario/internal/model"
	"github.com/escolar/inventario/internal/service"
)

type itemRequest struct {
	Name              string           `json:"name"`
	Type              model.ItemType   `json:"type"`
	Sector            string           `json:"sector"`
	Location          model.Location   `json:"location"`
	Status            model.ItemStatus `json:"status,omitempty"`
	CurrentUser       string           `json:"currentUser,omitempty"`
	Observations      string           `json:"observations,omitempty"`
	IsPublic          bool             `json:"isPublic"`
	AuthorizedSectors []string         `json:"authorizedSectors"`
	Version           int64            `json:"version,omitempty"`
}

type moveRequest struct {
	ItemID        string `json:"itemId"`
	Action        string `json:"action"`
	BorrowingUser string `json:"borrowingUser,omitempty"`
	Observations  string `json:"observations,omitempty"`
	Version       int64  `json:"version"`
}

type moveResponse struct {
	Item    model.Item         `json:"item"`
	History model.HistoryEntry `json:"history"`
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	viewer, _ := UserFromCtx(r.Context())
	items, err := s.items.List(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	viewer, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	it, err := s.items.Get(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	it, err := s.items.Create(r.Context(), actor, service.CreateItemInput{
		Name:              req.Name,
		Type:              req.Type,
		Sector:            req.Sector,
		Location:          req.Location,
		Status:            req.Status,
		CurrentUser:       req.CurrentUser,
		Observations:      req.Observations,
		IsPublic:          req.IsPublic,
		AuthorizedSectors: req.AuthorizedSectors,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	it, err := s.items.Update(r.Context(), actor, id, service.UpdateItemInput{
		Name:              req.Name,
		Type:              req.Type,
		Sector:            req.Sector,
		Location:          req.Location,
		Observations:      req.Observations,
		IsPublic:          req.IsPublic,
		AuthorizedSectors: req.AuthorizedSectors,
		Version:           req.Version,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.items.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleItemHistory(w http.ResponseWriter, r *http.Request) {
	viewer, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	entries, err := s.items.History(r.Context(), viewer, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMoveItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	itemID, err := uuid.FromString(req.ItemID)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "bad itemId")
		return
	}
	action, err := lifecycle.ParseAction(req.Action)
	if err != nil {
		writeError(w, err)
		return
	}
	it, entry, err := s.items.Move(r.Context(), actor, service.MoveInput{
		ItemID:        itemID,
		Action:        action,
		BorrowingUser: req.BorrowingUser,
		Observations:  req.Observations,
		Version:       req.Version,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, moveResponse{Item: *it, History: *entry})
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	viewer, _ := UserFromCtx(r.Context())
	stats, err := s.items.Stats(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.FromString(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("bad id: %w", errs.ErrValidation)
	}
	return id, nil
}
