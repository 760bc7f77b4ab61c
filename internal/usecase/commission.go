package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

// wonDate is the moment a sale counts for a commission period.
func wonDate(l *entity.Lead) time.Time {
	if l.WonAt != nil {
		return *l.WonAt
	}
	return l.LastActivity()
}

// CommissionReports computes one report per seller for the period. Sellers see only
// their own report.
func (m *LeadManager) CommissionReports(period entity.Period, viewer *entity.TeamMember) []entity.CommissionReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	var reports []entity.CommissionReport
	for _, seller := range m.sellers() {
		if viewer != nil && !viewer.IsAdmin() && viewer.ID != seller.ID {
			continue
		}
		reports = append(reports, m.commissionReport(seller, period))
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].OpenSalesVolume.GreaterThan(reports[j].OpenSalesVolume)
	})
	return reports
}

func (m *LeadManager) commissionReport(seller entity.TeamMember, period entity.Period) entity.CommissionReport {
	report := entity.CommissionReport{
		SellerID:        seller.ID,
		SellerName:      seller.Name,
		OpenSalesVolume: decimal.Zero,
		LeadIDs:         []string{},
	}

	for i := range m.leads {
		lead := &m.leads[i]
		if !lead.IsWon() || lead.AssignedToID != seller.ID || !period.Contains(wonDate(lead)) {
			continue
		}
		if !lead.CommissionOpen() {
			report.PaidSalesCount++
			continue
		}
		report.OpenSalesCount++
		report.OpenSalesVolume = report.OpenSalesVolume.Add(lead.SaleAmount())
		report.LeadIDs = append(report.LeadIDs, lead.ID)
	}

	// Regra de corte: acima de 25 vendas a taxa maior vale para o volume inteiro.
	report.CommissionRate = entity.CommissionRateFor(report.OpenSalesCount)
	report.CommissionValue = report.OpenSalesVolume.Mul(report.CommissionRate).Round(2)
	report.OpenSalesVolume = report.OpenSalesVolume.Round(2)
	return report
}

// PayCommission settles the seller's open sales in the period: one payment record, one
// EXPENSE and every counted lead stamped with the payment id.
func (m *LeadManager) PayCommission(ctx context.Context, sellerID string, period entity.Period, actor entity.Actor) (entity.CommissionPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seller := m.member(sellerID)
	if seller == nil || !seller.IsSeller() {
		return entity.CommissionPayment{}, domainError("SELLER_NOT_FOUND", entity.ErrSellerNotFound)
	}

	report := m.commissionReport(*seller, period)
	if report.OpenSalesCount == 0 || !report.CommissionValue.IsPositive() {
		return entity.CommissionPayment{}, domainError("NOTHING_TO_PAY", entity.ErrNothingToPay)
	}

	now := m.now()
	actor = actor.OrSystem()
	payment := entity.CommissionPayment{
		ID:         uuid.New().String(),
		SellerID:   seller.ID,
		SellerName: seller.Name,
		Amount:     report.CommissionValue,
		Rate:       report.CommissionRate,
		SalesCount: report.OpenSalesCount,
		Volume:     report.OpenSalesVolume,
		PaidByID:   actor.ID,
		PaidAt:     now,
	}

	desc := fmt.Sprintf("Comissão %s (%d vendas, %s%%)", seller.Name, report.OpenSalesCount,
		report.CommissionRate.Mul(decimal.NewFromInt(100)).String())
	expense := entity.NewTransaction(entity.TransactionExpense, payment.Amount, desc, entity.CategoryCommissions, now)

	ops := []Operation{{
		Name: "commission_payments.insert",
		Fn:   func(ctx context.Context) error { return m.repos.Commissions.Insert(ctx, &payment) },
	}}
	ops = append(ops, m.recordTransactions(expense))

	for _, id := range report.LeadIDs {
		idx := m.leadIndex(id)
		if idx < 0 {
			continue
		}
		lead := m.leads[idx].Clone()
		lead.CommissionPaymentID = payment.ID
		m.leads[idx] = lead
		ops = append(ops, m.leadUpdateOp(lead), m.publishOp(ChangeUpdate, lead))
	}

	m.payments = append([]entity.CommissionPayment{payment}, m.payments...)
	m.writer.Enqueue(ops...)
	m.mirror(ctx, cacheKeyCommissions, cacheKeyTransactions, cacheKeyLeads)
	m.metrics.CommissionPaid(payment.Amount)

	log.Printf("✅ Comissão paga para %s: R$ %s", seller.Name, payment.Amount.StringFixed(2))
	return payment, nil
}

func (m *LeadManager) CommissionPayments(sellerID string) []entity.CommissionPayment {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]entity.CommissionPayment, 0, len(m.payments))
	for _, p := range m.payments {
		if sellerID == "" || p.SellerID == sellerID {
			out = append(out, p)
		}
	}
	return out
}
