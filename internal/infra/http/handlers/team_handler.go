package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type TeamHandler struct {
	manager *usecase.LeadManager
}

func NewTeamHandler(manager *usecase.LeadManager) *TeamHandler {
	return &TeamHandler{manager: manager}
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Team())
}

func (h *TeamHandler) Sellers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Sellers())
}

func (h *TeamHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in usecase.AddTeamMemberInput
	if !decodeJSON(w, r, &in) {
		return
	}
	member, err := h.manager.AddTeamMember(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (h *TeamHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == viewer(r).ID {
		writeErrorResponse(w, http.StatusUnprocessableEntity, "SELF_REMOVAL", "Não é possível remover o próprio usuário")
		return
	}
	if err := h.manager.RemoveTeamMember(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
