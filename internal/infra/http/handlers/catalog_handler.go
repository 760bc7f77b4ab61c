package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

// CatalogHandler serve turmas, base de conhecimento e fornecedores.
type CatalogHandler struct {
	manager *usecase.LeadManager
}

func NewCatalogHandler(manager *usecase.LeadManager) *CatalogHandler {
	return &CatalogHandler{manager: manager}
}

func (h *CatalogHandler) Classes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Classes())
}

func (h *CatalogHandler) AddClass(w http.ResponseWriter, r *http.Request) {
	var in usecase.ClassInput
	if !decodeJSON(w, r, &in) {
		return
	}
	class, err := h.manager.AddClass(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, class)
}

func (h *CatalogHandler) UpdateClass(w http.ResponseWriter, r *http.Request) {
	var in usecase.ClassInput
	if !decodeJSON(w, r, &in) {
		return
	}
	class, err := h.manager.UpdateClass(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}

func (h *CatalogHandler) RemoveClass(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.RemoveClass(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ClassStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.manager.ClassStudents(chi.URLParam(r, "id"), viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *CatalogHandler) KnowledgeItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.KnowledgeItems())
}

func (h *CatalogHandler) AddKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	var in usecase.KnowledgeInput
	if !decodeJSON(w, r, &in) {
		return
	}
	item, err := h.manager.AddKnowledgeItem(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *CatalogHandler) RemoveKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.RemoveKnowledgeItem(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) SyncKnowledgeItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.manager.SyncKnowledgeItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

type suppliersResponse struct {
	Suppliers interface{} `json:"suppliers"`
	SyncURL   string      `json:"sync_url,omitempty"`
}

func (h *CatalogHandler) Suppliers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, suppliersResponse{
		Suppliers: h.manager.Suppliers(),
		SyncURL:   h.manager.SuppliersSyncURL(),
	})
}

func (h *CatalogHandler) AddSupplier(w http.ResponseWriter, r *http.Request) {
	var in usecase.SupplierInput
	if !decodeJSON(w, r, &in) {
		return
	}
	supplier, err := h.manager.AddSupplier(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, supplier)
}

func (h *CatalogHandler) RemoveSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.RemoveSupplier(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /suppliers/sync {"url": ""} repete a última planilha.
func (h *CatalogHandler) SyncSuppliers(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	suppliers, err := h.manager.SyncSuppliers(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suppliersResponse{Suppliers: suppliers, SyncURL: h.manager.SuppliersSyncURL()})
}
