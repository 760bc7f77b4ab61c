package handlers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type ImportHandler struct {
	manager *usecase.LeadManager
}

func NewImportHandler(manager *usecase.LeadManager) *ImportHandler {
	return &ImportHandler{manager: manager}
}

// importRequest aceita linhas já lidas ou a URL de uma planilha pública.
type importRequest struct {
	Rows        []usecase.ImportRow      `json:"rows"`
	URL         string                   `json:"url"`
	TotalCost   decimal.Decimal          `json:"total_cost"`
	Assignment  usecase.AssignmentConfig `json:"assignment"`
	CostClassID string                   `json:"cost_class_id"`
	Role        string                   `json:"role"`
}

// POST /leads/import
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	url := strings.TrimSpace(req.URL)
	rows := req.Rows
	if len(rows) == 0 {
		if url == "" {
			writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "informe rows ou url")
			return
		}
		fetched, err := h.manager.PreviewSheet(r.Context(), url)
		if err != nil {
			writeError(w, err)
			return
		}
		rows = fetched
	}

	result, err := h.manager.ImportLeads(r.Context(), usecase.ImportLeadsInput{
		Rows:        rows,
		TotalCost:   req.TotalCost,
		Assignment:  req.Assignment,
		SourceURL:   url,
		CostClassID: req.CostClassID,
		Role:        req.Role,
		Actor:       actor(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

type previewRequest struct {
	URL string `json:"url"`
}

type previewResponse struct {
	Rows  []usecase.ImportRow `json:"rows"`
	Count int                 `json:"count"`
}

// POST /leads/import/preview
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "url é obrigatória")
		return
	}

	rows, err := h.manager.PreviewSheet(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{Rows: rows, Count: len(rows)})
}

// POST /leads/import/sync
func (h *ImportHandler) Sync(w http.ResponseWriter, r *http.Request) {
	result, err := h.manager.SyncFromLastSource(r.Context(), actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GET /leads/import/last
func (h *ImportHandler) LastSync(w http.ResponseWriter, r *http.Request) {
	cfg := h.manager.LastSyncConfig()
	if cfg == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
