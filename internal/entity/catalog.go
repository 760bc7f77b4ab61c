package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImmersiveClass is one sellable cohort. Leads and transactions point to it by ID.
type ImmersiveClass struct {
	ID        string `json:"id"`
	City      string `json:"city"`
	Date      string `json:"date"`
	Immersion string `json:"immersion"`
}

func NewImmersiveClass(city, date, immersion string) *ImmersiveClass {
	return &ImmersiveClass{
		ID:        uuid.New().String(),
		City:      strings.TrimSpace(city),
		Date:      strings.TrimSpace(date),
		Immersion: strings.TrimSpace(immersion),
	}
}

func (c *ImmersiveClass) IsOnline() bool {
	return strings.EqualFold(c.City, "online")
}

type KnowledgeType string

const (
	KnowledgeScript   KnowledgeType = "SCRIPT"
	KnowledgeDocument KnowledgeType = "DOCUMENTO"
)

type KnowledgeItem struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	Type      KnowledgeType `json:"type"`
	Category  string        `json:"category,omitempty"`
	Link      string        `json:"link,omitempty"`
	SyncURL   string        `json:"sync_url,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type Supplier struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Phone     string           `json:"phone"`
	Category  string           `json:"category"`
	Price     *decimal.Decimal `json:"price,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

type AssignmentStrategy string

const (
	AssignNone   AssignmentStrategy = "NONE"
	AssignSingle AssignmentStrategy = "SINGLE"
	AssignEqual  AssignmentStrategy = "EQUAL"
)

// SyncConfig remembers the last spreadsheet import so it can be repeated.
type SyncConfig struct {
	URL         string             `json:"url"`
	Strategy    AssignmentStrategy `json:"strategy"`
	SellerID    string             `json:"seller_id,omitempty"`
	CostClassID string             `json:"cost_class_id,omitempty"`
}

// Chaves da tabela settings.
const (
	SettingLastSyncConfig   = "last_sync_config"
	SettingSuppliersSyncURL = "suppliers_sync_url"
)
