package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

const maxWebhookBody = 1 << 20

// RealtimeHandler recebe o database webhook do banco hospedado (tabela leads) e
// reconcilia o estado local.
type RealtimeHandler struct {
	manager *usecase.LeadManager
	secret  []byte
}

func NewRealtimeHandler(manager *usecase.LeadManager, secret string) *RealtimeHandler {
	return &RealtimeHandler{manager: manager, secret: []byte(secret)}
}

type databaseWebhook struct {
	Type      usecase.ChangeType `json:"type"`
	Table     string             `json:"table"`
	Record    *entity.Lead       `json:"record"`
	OldRecord *entity.Lead       `json:"old_record"`
}

func (h *RealtimeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_BODY", "Corpo inválido")
		return
	}

	if !h.validSignature(body, r.Header.Get("X-Signature")) {
		log.Printf("⚠️ Webhook realtime com assinatura inválida de %s", getClientIP(r))
		writeErrorResponse(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "Assinatura inválida")
		return
	}

	var event databaseWebhook
	if err := json.Unmarshal(body, &event); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return
	}

	if event.Table != "" && event.Table != "leads" {
		w.WriteHeader(http.StatusOK)
		return
	}

	change := usecase.LeadChange{Type: usecase.ChangeType(strings.ToUpper(string(event.Type)))}
	switch change.Type {
	case usecase.ChangeInsert, usecase.ChangeUpdate:
		change.Lead = event.Record
		if event.Record != nil {
			change.LeadID = event.Record.ID
		}
	case usecase.ChangeDelete:
		if event.OldRecord != nil {
			change.LeadID = event.OldRecord.ID
		}
	default:
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_EVENT", "type deve ser INSERT, UPDATE ou DELETE")
		return
	}

	applied := h.manager.ApplyRemoteChange(r.Context(), change)
	if applied {
		log.Printf("🔄 Realtime %s aplicado ao lead %s", change.Type, change.LeadID)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": applied})
}

// validSignature checks X-Signature as hex HMAC-SHA256 of the raw body. Without a
// configured secret every request is accepted.
func (h *RealtimeHandler) validSignature(body []byte, signature string) bool {
	if len(h.secret) == 0 {
		return true
	}
	got, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}
	return hmac.Equal(got, Sign(h.secret, body))
}

func Sign(secret, body []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return mac.Sum(nil)
}
