package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

var hundred = decimal.NewFromInt(100)

func (m *LeadManager) Transactions() []entity.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Transaction(nil), m.transactions...)
}

func (m *LeadManager) AddTransaction(ctx context.Context, in AddTransactionInput) (entity.Transaction, error) {
	if err := validationFailure(ValidateAddTransactionInput(in)); err != nil {
		return entity.Transaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if in.ClassID != "" && m.class(in.ClassID) == nil {
		return entity.Transaction{}, domainError("CLASS_NOT_FOUND", entity.ErrClassNotFound)
	}

	date := m.now()
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = entity.CategoryGeneral
	}

	tx := entity.NewTransaction(in.Type, in.Amount, in.Description, category, date)
	tx.ClassID = in.ClassID
	tx.PaymentMethod = strings.TrimSpace(in.PaymentMethod)

	m.writer.Enqueue(m.recordTransactions(tx))
	m.mirror(ctx, cacheKeyTransactions)
	return tx, nil
}

// Dashboard summarizes cash flow and acquisition cost. CAC is lead spend divided by won leads.
func (m *LeadManager) Dashboard() Dashboard {
	m.mu.Lock()
	defer m.mu.Unlock()

	d := Dashboard{
		Income:         decimal.Zero,
		Expense:        decimal.Zero,
		LeadInvestment: decimal.Zero,
		ConversionRate: decimal.Zero,
		CAC:            decimal.Zero,
		LeadsByStatus:  make(map[entity.LeadStatus]int, len(entity.PipelineStatuses)),
	}
	for _, s := range entity.PipelineStatuses {
		d.LeadsByStatus[s] = 0
	}

	investmentByClass := make(map[string]decimal.Decimal)
	for _, tx := range m.transactions {
		switch tx.Type {
		case entity.TransactionIncome:
			d.Income = d.Income.Add(tx.Amount)
		case entity.TransactionExpense:
			d.Expense = d.Expense.Add(tx.Amount)
			if tx.Category == entity.CategoryLeads {
				d.LeadInvestment = d.LeadInvestment.Add(tx.Amount)
				if tx.ClassID != "" {
					investmentByClass[tx.ClassID] = investmentByClass[tx.ClassID].Add(tx.Amount)
				}
			}
		}
	}
	d.Balance = d.Income.Sub(d.Expense)

	wonByClass := make(map[string]int)
	for i := range m.leads {
		lead := &m.leads[i]
		d.TotalLeads++
		d.LeadsByStatus[lead.Status]++
		if lead.IsWon() {
			d.WonLeads++
			if lead.ClassID != "" {
				wonByClass[lead.ClassID]++
			}
		}
	}

	if d.TotalLeads > 0 {
		d.ConversionRate = decimal.NewFromInt(int64(d.WonLeads)).
			Div(decimal.NewFromInt(int64(d.TotalLeads))).Mul(hundred).Round(2)
	}
	d.CAC = costPerWin(d.LeadInvestment, d.WonLeads)

	for _, c := range m.classes {
		investment := investmentByClass[c.ID]
		won := wonByClass[c.ID]
		if investment.IsZero() && won == 0 {
			continue
		}
		d.CACByClass = append(d.CACByClass, ClassCAC{
			ClassID:    c.ID,
			ClassName:  c.City,
			Investment: investment,
			WonLeads:   won,
			CAC:        costPerWin(investment, won),
		})
	}
	return d
}

func costPerWin(investment decimal.Decimal, won int) decimal.Decimal {
	if won == 0 {
		return decimal.Zero
	}
	return investment.Div(decimal.NewFromInt(int64(won))).Round(2)
}

// SalesAnalysis ranks sellers by leads in progress (contacted plus negotiating).
func (m *LeadManager) SalesAnalysis() []SellerPerformance {
	m.mu.Lock()
	defer m.mu.Unlock()

	sellers := m.sellers()
	bySeller := make(map[string]*SellerPerformance, len(sellers))
	out := make([]SellerPerformance, len(sellers))
	for i, s := range sellers {
		out[i] = SellerPerformance{SellerID: s.ID, SellerName: s.Name}
		bySeller[s.ID] = &out[i]
	}

	for i := range m.leads {
		lead := &m.leads[i]
		perf, ok := bySeller[lead.AssignedToID]
		if !ok {
			continue
		}
		perf.Total++
		switch {
		case lead.Status.IsContacted():
			perf.Contacted++
		case lead.Status == entity.StatusNegociando:
			perf.Negotiating++
		case lead.Status == entity.StatusSinal:
			perf.DownPayments++
		case lead.Status == entity.StatusGanho:
			perf.Won++
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Contacted+out[i].Negotiating > out[j].Contacted+out[j].Negotiating
	})
	return out
}
