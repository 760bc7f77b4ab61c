package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type FinanceHandler struct {
	manager  *usecase.LeadManager
	location *time.Location
}

func NewFinanceHandler(manager *usecase.LeadManager, location *time.Location) *FinanceHandler {
	if location == nil {
		location = time.Local
	}
	return &FinanceHandler{manager: manager, location: location}
}

func (h *FinanceHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Transactions())
}

func (h *FinanceHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var in usecase.AddTransactionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	tx, err := h.manager.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (h *FinanceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Dashboard())
}

func (h *FinanceHandler) SalesAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.SalesAnalysis())
}

// GET /commissions?month=2025-03 (sem month: todo o período)
func (h *FinanceHandler) Commissions(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.manager.CommissionReports(period, viewer(r)))
}

// POST /commissions/{sellerId}/pay?month=2025-03
func (h *FinanceHandler) PayCommission(w http.ResponseWriter, r *http.Request) {
	period, ok := h.period(w, r)
	if !ok {
		return
	}
	payment, err := h.manager.PayCommission(r.Context(), chi.URLParam(r, "sellerId"), period, actor(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

// GET /commissions/payments?seller_id=
func (h *FinanceHandler) CommissionPayments(w http.ResponseWriter, r *http.Request) {
	sellerID := r.URL.Query().Get("seller_id")
	if v := viewer(r); !v.IsAdmin() {
		sellerID = v.ID
	}
	writeJSON(w, http.StatusOK, h.manager.CommissionPayments(sellerID))
}

func (h *FinanceHandler) period(w http.ResponseWriter, r *http.Request) (entity.Period, bool) {
	month := r.URL.Query().Get("month")
	if month == "" {
		return entity.Period{}, true
	}
	t, err := time.ParseInLocation("2006-01", month, h.location)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_PERIOD", "month deve estar no formato AAAA-MM")
		return entity.Period{}, false
	}
	return entity.MonthPeriod(t.Year(), t.Month(), h.location), true
}
