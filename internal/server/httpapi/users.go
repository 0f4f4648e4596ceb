package httpapi

import (
	"net/http"

	"github.com/escolar/inventario/internal/model"
	"github.com/escolar/inventario/internal/service"
)

type userRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password,omitempty"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
	Sector   string     `json:"sector,omitempty"`
	Email    string     `json:"email,omitempty"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	users, err := s.users.List(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	u, err := s.users.Get(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.users.Create(r.Context(), actor, service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		Sector:   req.Sector,
		Email:    req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	u, err := s.users.Update(r.Context(), actor, id, service.UpdateUserInput{
		Name:     req.Name,
		Role:     req.Role,
		Sector:   req.Sector,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.users.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
