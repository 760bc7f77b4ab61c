package usecase_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

func (f *fixture) winLeads(n int, sellerID string, value int64) []string {
	f.t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		lead := f.addLead(fmt.Sprintf("Aluno %d", i), fmt.Sprintf("1190%07d", i+len(sellerID)*1000), sellerID)
		f.changeStatus(lead.ID, entity.StatusGanho, &usecase.SaleData{
			Value: dec(value), Modality: entity.ModalityPresencial, PaymentMethod: "PIX", SellerID: sellerID, ClassID: "c1",
		})
		ids = append(ids, lead.ID)
	}
	return ids
}

func reportFor(reports []entity.CommissionReport, sellerID string) entity.CommissionReport {
	for _, r := range reports {
		if r.SellerID == sellerID {
			return r
		}
	}
	return entity.CommissionReport{}
}

func TestCommissionReports_Cliff(t *testing.T) {
	f := newFixture(t)
	f.winLeads(25, "s1", 1000)
	f.winLeads(26, "s2", 1000)

	reports := f.manager.CommissionReports(entity.Period{}, nil)
	require.Len(t, reports, 2)

	bruno := reportFor(reports, "s1")
	assert.Equal(t, 25, bruno.OpenSalesCount)
	assert.True(t, bruno.CommissionRate.Equal(entity.BaseCommissionRate))
	assert.True(t, bruno.CommissionValue.Equal(dec(1250)))

	carla := reportFor(reports, "s2")
	assert.Equal(t, 26, carla.OpenSalesCount)
	assert.True(t, carla.CommissionRate.Equal(entity.BoostedCommissionRate))
	assert.True(t, carla.CommissionValue.Equal(dec(2600)), "the boosted rate applies to the whole volume")
	assert.Equal(t, "s2", reports[0].SellerID)

	seller, _ := f.manager.Member("s1")
	own := f.manager.CommissionReports(entity.Period{}, &seller)
	require.Len(t, own, 1)
	assert.Equal(t, "s1", own[0].SellerID)
}

func TestPayCommission(t *testing.T) {
	f := newFixture(t)
	ids := f.winLeads(2, "s1", 3000)

	_, err := f.manager.PayCommission(f.ctx, "s2", entity.Period{}, entity.Actor{})
	assert.Equal(t, "NOTHING_TO_PAY", errorCode(err))

	_, err = f.manager.PayCommission(f.ctx, "adm", entity.Period{}, entity.Actor{})
	assert.Equal(t, "SELLER_NOT_FOUND", errorCode(err))

	payment, err := f.manager.PayCommission(f.ctx, "s1", entity.Period{}, entity.Actor{ID: "adm", Name: "Ana"})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(dec(300)))
	assert.Equal(t, 2, payment.SalesCount)
	assert.Equal(t, "adm", payment.PaidByID)

	for _, id := range ids {
		lead, err := f.manager.Lead(id, nil)
		require.NoError(t, err)
		assert.Equal(t, payment.ID, lead.CommissionPaymentID)
	}

	txs := f.manager.Transactions()
	assert.Equal(t, entity.TransactionExpense, txs[0].Type)
	assert.Equal(t, entity.CategoryCommissions, txs[0].Category)
	assert.True(t, txs[0].Amount.Equal(dec(300)))

	report := reportFor(f.manager.CommissionReports(entity.Period{}, nil), "s1")
	assert.Zero(t, report.OpenSalesCount)
	assert.Equal(t, 2, report.PaidSalesCount)

	_, err = f.manager.PayCommission(f.ctx, "s1", entity.Period{}, entity.Actor{})
	assert.Equal(t, "NOTHING_TO_PAY", errorCode(err))
	assert.Len(t, f.manager.CommissionPayments("s1"), 1)
	assert.Empty(t, f.manager.CommissionPayments("s2"))
}

func TestPayCommission_OnlyThePeriod(t *testing.T) {
	f := newFixture(t)
	march := f.winLeads(1, "s1", 1000)
	f.clock.Advance(31 * 24 * time.Hour)
	april := f.winLeads(1, "s1", 2000)

	period := entity.MonthPeriod(2025, time.March, time.UTC)
	payment, err := f.manager.PayCommission(f.ctx, "s1", period, entity.Actor{})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(dec(50)))

	paid, _ := f.manager.Lead(march[0], nil)
	open, _ := f.manager.Lead(april[0], nil)
	assert.Equal(t, payment.ID, paid.CommissionPaymentID)
	assert.Empty(t, open.CommissionPaymentID)
}

func TestDashboardAndSalesAnalysis(t *testing.T) {
	f := newFixture(t)
	f.winLeads(2, "s1", 1500)
	lead := f.addLead("Negociando", "11955550000", "s2")
	f.changeStatus(lead.ID, entity.StatusNegociando, nil)
	contacted := f.addLead("Contato", "11955550001", "s2")
	f.changeStatus(contacted.ID, entity.StatusWhatsApp, nil)

	_, err := f.manager.AddTransaction(f.ctx, usecase.AddTransactionInput{
		Type: entity.TransactionExpense, Amount: dec(400), Description: "Anúncios", Category: entity.CategoryLeads, ClassID: "c1",
	})
	require.NoError(t, err)
	_, err = f.manager.AddTransaction(f.ctx, usecase.AddTransactionInput{
		Type: entity.TransactionExpense, Amount: dec(0), Description: "Zero",
	})
	assert.Equal(t, "VALIDATION_ERROR", errorCode(err))

	d := f.manager.Dashboard()
	assert.True(t, d.Income.Equal(dec(3000)))
	assert.True(t, d.Expense.Equal(dec(400)))
	assert.True(t, d.Balance.Equal(dec(2600)))
	assert.Equal(t, 4, d.TotalLeads)
	assert.Equal(t, 2, d.WonLeads)
	assert.True(t, d.ConversionRate.Equal(dec(50)))
	assert.True(t, d.CAC.Equal(dec(200)))
	assert.Equal(t, 1, d.LeadsByStatus[entity.StatusNegociando])
	assert.Zero(t, d.LeadsByStatus[entity.StatusSinal])
	require.Len(t, d.CACByClass, 1)
	assert.True(t, d.CACByClass[0].CAC.Equal(dec(200)))

	perf := f.manager.SalesAnalysis()
	require.Len(t, perf, 2)
	assert.Equal(t, "s2", perf[0].SellerID)
	assert.Equal(t, 1, perf[0].Contacted)
	assert.Equal(t, 1, perf[0].Negotiating)
	assert.Equal(t, 2, perf[1].Won)
}
