package entity

import "strings"

type LeadStatus string

// Etapas do funil, na ordem do kanban.
const (
	StatusNovo        LeadStatus = "NOVO"
	StatusLigacao     LeadStatus = "LIGACAO"
	StatusWhatsApp    LeadStatus = "WHATSAPP"
	StatusSemResposta LeadStatus = "SEM_RESPOSTA"
	StatusNegociando  LeadStatus = "NEGOCIANDO"
	StatusSinal       LeadStatus = "SINAL"
	StatusGanho       LeadStatus = "GANHO"
)

var PipelineStatuses = []LeadStatus{
	StatusNovo,
	StatusLigacao,
	StatusWhatsApp,
	StatusSemResposta,
	StatusNegociando,
	StatusSinal,
	StatusGanho,
}

var statusLabels = map[LeadStatus]string{
	StatusNovo:        "Novo Lead",
	StatusLigacao:     "Ligação",
	StatusWhatsApp:    "WhatsApp",
	StatusSemResposta: "Sem Resposta",
	StatusNegociando:  "Negociando",
	StatusSinal:       "Sinal",
	StatusGanho:       "Venda Ganha",
}

func ParseLeadStatus(s string) (LeadStatus, error) {
	status := LeadStatus(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := statusLabels[status]; !ok {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s LeadStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

func (s LeadStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsContacted reports whether the lead already got a first touch (call or WhatsApp).
func (s LeadStatus) IsContacted() bool {
	return s == StatusLigacao || s == StatusWhatsApp
}
