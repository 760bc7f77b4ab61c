package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/infra/http/middleware"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []usecase.ValidationError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("⚠️ Erro ao serializar resposta: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

var notFoundCodes = map[string]bool{
	"LEAD_NOT_FOUND":      true,
	"MEMBER_NOT_FOUND":    true,
	"CLASS_NOT_FOUND":     true,
	"KNOWLEDGE_NOT_FOUND": true,
	"SUPPLIER_NOT_FOUND":  true,
}

// writeError traduz os erros do usecase: DomainError vira 4xx, TechnicalError vira 502.
func writeError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status := http.StatusUnprocessableEntity
		switch {
		case notFoundCodes[de.Code]:
			status = http.StatusNotFound
		case de.Code == "VALIDATION_ERROR":
			status = http.StatusBadRequest
		case de.Code == "EMAIL_TAKEN":
			status = http.StatusConflict
		case de.Code == "INVALID_CREDENTIALS":
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, ErrorResponse{Error: de.Code, Message: de.Message, Fields: de.Fields})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		log.Printf("❌ %s: %v", te.Code, te.Err)
		writeErrorResponse(w, http.StatusBadGateway, te.Code, te.Message)
		return
	}

	log.Printf("❌ Erro inesperado: %v", err)
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Erro interno")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return false
	}
	return true
}

// viewer returns the authenticated member. Routes behind Authenticate always have one.
func viewer(r *http.Request) *entity.TeamMember {
	member, _ := middleware.MemberFromContext(r.Context())
	return member
}

func actor(r *http.Request) entity.Actor {
	return viewer(r).AsActor()
}

// confirmed guards destructive endpoints behind ?confirm=true.
func confirmed(w http.ResponseWriter, r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if !ok {
		writeErrorResponse(w, http.StatusPreconditionRequired, "CONFIRMATION_REQUIRED", "Operação destrutiva: repita com confirm=true")
		return false
	}
	return true
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}
