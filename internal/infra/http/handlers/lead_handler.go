package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type LeadHandler struct {
	manager *usecase.LeadManager
}

func NewLeadHandler(manager *usecase.LeadManager) *LeadHandler {
	return &LeadHandler{manager: manager}
}

// GET /leads?view=active|lost|all
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	view := usecase.LeadView(r.URL.Query().Get("view"))
	switch view {
	case usecase.ViewActive, usecase.ViewLost, usecase.ViewAll:
	case "":
		view = usecase.ViewActive
	default:
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_VIEW", "view deve ser active, lost ou all")
		return
	}
	writeJSON(w, http.StatusOK, h.manager.Leads(viewer(r), view))
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.manager.Lead(chi.URLParam(r, "id"), viewer(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.AddLeadInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.Actor = actor(r)

	// Vendedor só cria lead para si mesmo.
	if v := viewer(r); !v.IsAdmin() {
		in.AssignedToID = v.ID
	}

	lead, err := h.manager.AddLead(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

type changeStatusRequest struct {
	NewStatus   entity.LeadStatus `json:"new_status"`
	Sale        *usecase.SaleData `json:"sale,omitempty"`
	Observation string            `json:"observation"`
}

// POST /leads/{id}/status
func (h *LeadHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.visibleLead(w, r)
	if !ok {
		return
	}

	var req changeStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lead, err := h.manager.ChangeStatus(r.Context(), usecase.ChangeStatusInput{
		LeadID:      id,
		NewStatus:   req.NewStatus,
		Sale:        req.Sale,
		Observation: req.Observation,
		Actor:       actor(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// POST /leads/{id}/settle
func (h *LeadHandler) SettleDownPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.visibleLead(w, r)
	if !ok {
		return
	}

	var in usecase.SettleDownPaymentInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.LeadID = id
	in.Actor = actor(r)

	lead, err := h.manager.SettleDownPayment(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// PUT /leads/{id}/follow-up
func (h *LeadHandler) UpdateFollowUp(w http.ResponseWriter, r *http.Request) {
	id, ok := h.visibleLead(w, r)
	if !ok {
		return
	}

	var in usecase.FollowUpInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.LeadID = id

	lead, err := h.manager.UpdateFollowUp(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type bulkRequest struct {
	IDs      []string `json:"ids"`
	SellerID string   `json:"seller_id,omitempty"`
}

// POST /leads/reassign
func (h *LeadHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 || req.SellerID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "ids e seller_id são obrigatórios")
		return
	}

	n, err := h.manager.ReassignLeads(r.Context(), req.IDs, req.SellerID, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reassigned": n})
}

// POST /leads/bulk-delete?confirm=true
func (h *LeadHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	var req bulkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "ids é obrigatório")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": h.manager.DeleteLeads(r.Context(), req.IDs)})
}

// DELETE /leads?confirm=true
func (h *LeadHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if !confirmed(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": h.manager.ClearLeads(r.Context())})
}

// GET /leads/{id}/history
func (h *LeadHandler) LeadHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.visibleLead(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.manager.History(usecase.HistoryFilter{LeadID: id, Viewer: viewer(r)}))
}

// GET /history?actor_id=&status=&limit=
func (h *LeadHandler) History(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := usecase.HistoryFilter{
		LeadID:  q.Get("lead_id"),
		ActorID: q.Get("actor_id"),
		Viewer:  viewer(r),
		Limit:   queryInt(r, "limit", 0),
	}
	if s := q.Get("status"); s != "" {
		status, err := entity.ParseLeadStatus(s)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_STATUS", err.Error())
			return
		}
		filter.Status = status
	}
	writeJSON(w, http.StatusOK, h.manager.History(filter))
}

func (h *LeadHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Notifications(viewer(r)))
}

// visibleLead resolves {id} and answers 404 when the viewer cannot see the lead.
func (h *LeadHandler) visibleLead(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if _, err := h.manager.Lead(id, viewer(r)); err != nil {
		writeError(w, err)
		return "", false
	}
	return id, true
}
