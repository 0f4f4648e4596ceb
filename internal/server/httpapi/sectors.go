package httpapi

import "net/http"

type sectorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (s *Server) handleListSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := s.sectors.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sectors)
}

func (s *Server) handleGetSector(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	sec, err := s.sectors.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

func (s *Server) handleCreateSector(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	var req sectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := s.sectors.Create(r.Context(), actor, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sec)
}

func (s *Server) handleUpdateSector(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req sectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sec, err := s.sectors.Update(r.Context(), actor, id, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sec)
}

func (s *Server) handleDeleteSector(w http.ResponseWriter, r *http.Request) {
	actor, _ := UserFromCtx(r.Context())
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.sectors.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
