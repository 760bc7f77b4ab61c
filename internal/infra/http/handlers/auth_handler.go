package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/infra/http/middleware"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type AuthHandler struct {
	manager     *usecase.LeadManager
	issuer      *middleware.TokenIssuer
	rateLimiter *RateLimiter
}

func NewAuthHandler(manager *usecase.LeadManager, issuer *middleware.TokenIssuer) *AuthHandler {
	return &AuthHandler{
		manager:     manager,
		issuer:      issuer,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 tentativas/min por IP
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Member    entity.TeamMember `json:"member"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeErrorResponse(w, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Muitas tentativas. Aguarde um minuto.")
		return
	}

	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeErrorResponse(w, http.StatusBadRequest, "MISSING_FIELDS", "email e senha são obrigatórios")
		return
	}

	member, err := h.manager.Authenticate(req.Email, req.Password)
	if err != nil {
		log.Printf("⚠️ Login recusado para %s", req.Email)
		writeError(w, err)
		return
	}

	token, expiresAt, err := h.issuer.Issue(member)
	if err != nil {
		writeError(w, err)
		return
	}

	log.Printf("✅ Login: %s (%s)", member.Name, member.Role)
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expiresAt, Member: member})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, viewer(r))
}
