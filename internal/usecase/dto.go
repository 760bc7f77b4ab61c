package usecase

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

type LeadView string

const (
	ViewActive LeadView = "active"
	ViewLost   LeadView = "lost"
	ViewAll    LeadView = "all"
)

type AddLeadInput struct {
	Name         string       `json:"name" validate:"required,min=2,max=200"`
	Phone        string       `json:"phone" validate:"required"`
	Email        string       `json:"email" validate:"omitempty,email"`
	Role         string       `json:"role"`
	AssignedToID string       `json:"assigned_to_id"`
	ClassID      string       `json:"class_id"`
	Observation  string       `json:"observation"`
	Actor        entity.Actor `json:"-"`
}

// SaleData carries the closing details of a sale. DownPayment is only used for SINAL.
type SaleData struct {
	Value         decimal.Decimal  `json:"value"`
	DownPayment   *decimal.Decimal `json:"down_payment,omitempty"`
	Modality      entity.Modality  `json:"modality"`
	PaymentMethod string           `json:"payment_method"`
	SellerID      string           `json:"seller_id"`
	ClassID       string           `json:"class_id"`
}

type ChangeStatusInput struct {
	LeadID      string            `json:"lead_id" validate:"required"`
	NewStatus   entity.LeadStatus `json:"new_status" validate:"required"`
	Sale        *SaleData         `json:"sale,omitempty"`
	Observation string            `json:"observation"`
	Actor       entity.Actor      `json:"-"`
}

type SettleDownPaymentInput struct {
	LeadID        string          `json:"lead_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"required"`
	Observation   string          `json:"observation"`
	Actor         entity.Actor    `json:"-"`
}

type FollowUpInput struct {
	LeadID string     `json:"lead_id" validate:"required"`
	At     *time.Time `json:"at"`
	Note   string     `json:"note"`
}

// ImportRow is one spreadsheet line: name, class, phone and created date, in that order.
type ImportRow struct {
	Name      string `json:"name"`
	ClassName string `json:"class_name"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
}

type SupplierRow struct {
	Name     string           `json:"name"`
	Phone    string           `json:"phone"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type AssignmentConfig struct {
	Strategy entity.AssignmentStrategy `json:"strategy" validate:"required,oneof=NONE SINGLE EQUAL"`
	SellerID string                    `json:"seller_id"`
}

type ImportLeadsInput struct {
	Rows        []ImportRow      `json:"rows"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	Assignment  AssignmentConfig `json:"assignment"`
	SourceURL   string           `json:"source_url"`
	CostClassID string           `json:"cost_class_id"`
	Role        string           `json:"role"`
	Actor       entity.Actor     `json:"-"`
}

type ImportResult struct {
	Imported   int           `json:"imported"`
	Duplicates int           `json:"duplicates"`
	Leads      []entity.Lead `json:"leads"`
	ExpenseID  string        `json:"expense_id,omitempty"`
}

type AddTransactionInput struct {
	Type          entity.TransactionType `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Amount        decimal.Decimal        `json:"amount"`
	Description   string                 `json:"description" validate:"required,max=300"`
	Category      string                 `json:"category"`
	Date          *time.Time             `json:"date"`
	ClassID       string                 `json:"class_id"`
	PaymentMethod string                 `json:"payment_method"`
}

type AddTeamMemberInput struct {
	Name           string           `json:"name" validate:"required,min=2,max=200"`
	Email          string           `json:"email" validate:"required,email"`
	Password       string           `json:"password" validate:"required,min=6"`
	Role           entity.Role      `json:"role" validate:"required,oneof=ADMIN VENDEDOR PROFESSOR"`
	Phone          string           `json:"phone"`
	CommissionRate *decimal.Decimal `json:"commission_rate,omitempty"`
	City           string           `json:"city"`
	ClassDate      string           `json:"class_date"`
}

type ClassInput struct {
	City      string `json:"city" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Immersion string `json:"immersion"`
}

type KnowledgeInput struct {
	Title    string               `json:"title" validate:"required"`
	Content  string               `json:"content"`
	Type     entity.KnowledgeType `json:"type" validate:"required,oneof=SCRIPT DOCUMENTO"`
	Category string               `json:"category"`
	Link     string               `json:"link" validate:"omitempty,url"`
	SyncURL  string               `json:"sync_url" validate:"omitempty,url"`
}

type SupplierInput struct {
	Name     string           `json:"name" validate:"required"`
	Phone    string           `json:"phone"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

type HistoryFilter struct {
	LeadID  string
	ActorID string
	Status  entity.LeadStatus
	Viewer  *entity.TeamMember
	Limit   int
}

type ClassCAC struct {
	ClassID    string          `json:"class_id"`
	ClassName  string          `json:"class_name"`
	Investment decimal.Decimal `json:"investment"`
	WonLeads   int             `json:"won_leads"`
	CAC        decimal.Decimal `json:"cac"`
}

type Dashboard struct {
	Income         decimal.Decimal           `json:"income"`
	Expense        decimal.Decimal           `json:"expense"`
	Balance        decimal.Decimal           `json:"balance"`
	LeadInvestment decimal.Decimal           `json:"lead_investment"`
	TotalLeads     int                       `json:"total_leads"`
	WonLeads       int                       `json:"won_leads"`
	ConversionRate decimal.Decimal           `json:"conversion_rate"`
	CAC            decimal.Decimal           `json:"cac"`
	CACByClass     []ClassCAC                `json:"cac_by_class"`
	LeadsByStatus  map[entity.LeadStatus]int `json:"leads_by_status"`
}

type SellerPerformance struct {
	SellerID     string `json:"seller_id"`
	SellerName   string `json:"seller_name"`
	Contacted    int    `json:"contacted"`
	Negotiating  int    `json:"negotiating"`
	DownPayments int    `json:"down_payments"`
	Won          int    `json:"won"`
	Total        int    `json:"total"`
}

type NotificationKind string

const (
	NotificationUrgent     NotificationKind = "URGENT"
	NotificationFeedback   NotificationKind = "FEEDBACK"
	NotificationReassigned NotificationKind = "REASSIGNED"
)

type Notification struct {
	Kind     NotificationKind `json:"kind"`
	LeadID   string           `json:"lead_id"`
	LeadName string           `json:"lead_name"`
	Message  string           `json:"message"`
	IdleFor  time.Duration    `json:"idle_for"`
}
