package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// Categorias usadas pelo financeiro.
const (
	CategorySales       = "Vendas"
	CategoryLeads       = "Leads"
	CategoryMarketing   = "Marketing"
	CategoryRent        = "Aluguel"
	CategoryOperational = "Operacional"
	CategoryCommissions = "Comissões"
	CategoryGeneral     = "Geral"
)

// Transaction is a ledger entry. Entries are never mutated after creation.
type Transaction struct {
	ID            string          `json:"id"`
	Type          TransactionType `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Date          time.Time       `json:"date"`
	ClassID       string          `json:"class_id,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	LeadID        string          `json:"lead_id,omitempty"`
}

func NewTransaction(txType TransactionType, amount decimal.Decimal, description, category string, date time.Time) Transaction {
	if category == "" {
		category = CategoryGeneral
	}
	return Transaction{
		ID:          uuid.New().String(),
		Type:        txType,
		Amount:      amount,
		Description: description,
		Category:    category,
		Date:        date,
	}
}

func (t TransactionType) Valid() bool {
	return t == TransactionIncome || t == TransactionExpense
}
