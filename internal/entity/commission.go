package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Regra de comissão: até 25 vendas abertas no período paga 5%, acima disso 10% sobre todo o volume.
const CommissionCliff = 25

var (
	BaseCommissionRate    = decimal.RequireFromString("0.05")
	BoostedCommissionRate = decimal.RequireFromString("0.10")
)

func CommissionRateFor(openWonLeads int) decimal.Decimal {
	if openWonLeads > CommissionCliff {
		return BoostedCommissionRate
	}
	return BaseCommissionRate
}

// Period bounds a reporting window as [From, To). A zero Period covers all time.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func MonthPeriod(year int, month time.Month, loc *time.Location) Period {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return Period{From: from, To: from.AddDate(0, 1, 0)}
}

func (p Period) IsZero() bool {
	return p.From.IsZero() && p.To.IsZero()
}

func (p Period) Contains(t time.Time) bool {
	if !p.From.IsZero() && t.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && !t.Before(p.To) {
		return false
	}
	return true
}

// CommissionReport is computed on demand, never stored.
type CommissionReport struct {
	SellerID        string          `json:"seller_id"`
	SellerName      string          `json:"seller_name"`
	OpenSalesCount  int             `json:"open_sales_count"`
	OpenSalesVolume decimal.Decimal `json:"open_sales_volume"`
	CommissionRate  decimal.Decimal `json:"commission_rate"`
	CommissionValue decimal.Decimal `json:"commission_value"`
	LeadIDs         []string        `json:"lead_ids"`
	PaidSalesCount  int             `json:"paid_sales_count"`
}

type CommissionPayment struct {
	ID         string          `json:"id"`
	SellerID   string          `json:"seller_id"`
	SellerName string          `json:"seller_name"`
	Amount     decimal.Decimal `json:"amount"`
	Rate       decimal.Decimal `json:"rate"`
	SalesCount int             `json:"sales_count"`
	Volume     decimal.Decimal `json:"volume"`
	PaidByID   string          `json:"paid_by_id"`
	PaidAt     time.Time       `json:"paid_at"`
}
