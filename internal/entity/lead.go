package entity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Modality string

const (
	ModalityOnline     Modality = "ONLINE"
	ModalityPresencial Modality = "PRESENCIAL"
)

// LostLeadRetention is how long a SEM_RESPOSTA lead stays in the active views.
const LostLeadRetention = 7 * 24 * time.Hour

const observationTimeLayout = "02/01/2006 15:04"

var nonDigit = regexp.MustCompile(`\D`)

type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email,omitempty"`
	Role      string     `json:"role"`
	Status    LeadStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	AssignedToID string `json:"assigned_to_id,omitempty"`

	// Venda
	SaleValue     *decimal.Decimal `json:"sale_value,omitempty"`
	PaymentMethod string           `json:"payment_method,omitempty"`
	Modality      Modality         `json:"modality,omitempty"`
	ClassID       string           `json:"class_id,omitempty"`

	// Sinal (pagamento parcial)
	HasDownPayment   bool             `json:"has_down_payment"`
	DownPaymentValue *decimal.Decimal `json:"down_payment_value,omitempty"`
	RemainingBalance *decimal.Decimal `json:"remaining_balance,omitempty"`

	LostAt *time.Time `json:"lost_at,omitempty"`
	WonAt  *time.Time `json:"won_at,omitempty"`

	NextFollowUpAt *time.Time `json:"next_follow_up_at,omitempty"`
	FollowUpNote   string     `json:"follow_up_note,omitempty"`

	Observation         string `json:"observation,omitempty"`
	CommissionPaymentID string `json:"commission_payment_id,omitempty"`
}

func NewLead(name, phone, email, role string, now time.Time) *Lead {
	return &Lead{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Phone:     strings.TrimSpace(phone),
		Email:     strings.TrimSpace(email),
		Role:      strings.TrimSpace(role),
		Status:    StatusNovo,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizePhone keeps only the digits, so "(11) 9999-0000" and "11 99990000" match.
func NormalizePhone(phone string) string {
	return nonDigit.ReplaceAllString(phone, "")
}

func (l *Lead) NormalizedPhone() string {
	return NormalizePhone(l.Phone)
}

// LastActivity falls back to CreatedAt for leads that were never touched.
func (l *Lead) LastActivity() time.Time {
	if l.UpdatedAt.IsZero() {
		return l.CreatedAt
	}
	return l.UpdatedAt
}

func (l *Lead) IsStale(now time.Time, threshold time.Duration) bool {
	return now.Sub(l.LastActivity()) > threshold
}

// AppendObservation adds a timestamped line to the observation log. Previous text is kept.
func (l *Lead) AppendObservation(now time.Time, note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	line := "[" + now.Format(observationTimeLayout) + "] " + note
	if l.Observation == "" {
		l.Observation = line
		return
	}
	l.Observation += "\n" + line
}

// VisibleInActiveViews hides leads that stayed in SEM_RESPOSTA longer than the retention window.
func (l *Lead) VisibleInActiveViews(now time.Time) bool {
	if l.Status != StatusSemResposta {
		return true
	}
	since := l.LastActivity()
	if l.LostAt != nil {
		since = *l.LostAt
	}
	return now.Sub(since) <= LostLeadRetention
}

func (l *Lead) IsWon() bool {
	return l.Status == StatusGanho
}

func (l *Lead) CommissionOpen() bool {
	return l.IsWon() && l.CommissionPaymentID == ""
}

// OpenDownPayment stores a partial payment and derives the remaining balance.
func (l *Lead) OpenDownPayment(saleValue, downPayment decimal.Decimal) {
	remaining := saleValue.Sub(downPayment)
	l.SaleValue = &saleValue
	l.HasDownPayment = true
	l.DownPaymentValue = &downPayment
	l.RemainingBalance = &remaining
}

func (l *Lead) ClearDownPayment() {
	l.HasDownPayment = false
	l.DownPaymentValue = nil
	l.RemainingBalance = nil
}

func (l *Lead) Remaining() decimal.Decimal {
	if l.RemainingBalance == nil {
		return decimal.Zero
	}
	return *l.RemainingBalance
}

func (l *Lead) SaleAmount() decimal.Decimal {
	if l.SaleValue == nil {
		return decimal.Zero
	}
	return *l.SaleValue
}

// CheckDownPayment verifies hasDownPayment <=> remaining = sale - downPayment with both set.
func (l *Lead) CheckDownPayment() error {
	consistent := l.SaleValue != nil && l.DownPaymentValue != nil && l.RemainingBalance != nil &&
		l.RemainingBalance.Equal(l.SaleValue.Sub(*l.DownPaymentValue))
	if l.HasDownPayment != consistent {
		return ErrDownPaymentState
	}
	return nil
}

func (l *Lead) Clone() Lead {
	return *l
}
