package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

// Leads returns copies of the leads the viewer may see. A nil viewer sees everything.
func (m *LeadManager) Leads(viewer *entity.TeamMember, view LeadView) []entity.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]entity.Lead, 0, len(m.leads))
	for i := range m.leads {
		lead := &m.leads[i]
		if viewer != nil && !viewer.CanSee(lead) {
			continue
		}
		switch view {
		case ViewLost:
			if lead.Status != entity.StatusSemResposta {
				continue
			}
		case ViewAll:
		default:
			if !lead.VisibleInActiveViews(now) {
				continue
			}
		}
		out = append(out, lead.Clone())
	}

	if view == ViewLost {
		sort.SliceStable(out, func(i, j int) bool { return lostSince(&out[i]).After(lostSince(&out[j])) })
	}
	return out
}

func lostSince(l *entity.Lead) time.Time {
	if l.LostAt != nil {
		return *l.LostAt
	}
	return l.LastActivity()
}

func (m *LeadManager) Lead(id string, viewer *entity.TeamMember) (entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.leadIndex(id)
	if idx < 0 || (viewer != nil && !viewer.CanSee(&m.leads[idx])) {
		return entity.Lead{}, domainError("LEAD_NOT_FOUND", entity.ErrLeadNotFound)
	}
	return m.leads[idx].Clone(), nil
}

// History lists entries newest first. Non-admin viewers only get entries of their own leads.
func (m *LeadManager) History(filter HistoryFilter) []entity.LeadHistoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var visible map[string]bool
	if filter.Viewer != nil && !filter.Viewer.IsAdmin() {
		visible = make(map[string]bool)
		for i := range m.leads {
			if filter.Viewer.CanSee(&m.leads[i]) {
				visible[m.leads[i].ID] = true
			}
		}
	}

	var out []entity.LeadHistoryEntry
	for _, h := range m.history {
		if filter.LeadID != "" && h.LeadID != filter.LeadID {
			continue
		}
		if filter.ActorID != "" && h.ChangedByID != filter.ActorID {
			continue
		}
		if filter.Status != "" && h.NewStatus != filter.Status {
			continue
		}
		if visible != nil && !visible[h.LeadID] && h.ChangedByID != filter.Viewer.ID {
			continue
		}
		out = append(out, h)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out
}

func (m *LeadManager) AddLead(ctx context.Context, in AddLeadInput) (entity.Lead, error) {
	if err := validationFailure(Validate(in)); err != nil {
		return entity.Lead{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if in.AssignedToID != "" && m.member(in.AssignedToID) == nil {
		return entity.Lead{}, domainError("MEMBER_NOT_FOUND", entity.ErrMemberNotFound)
	}
	if in.ClassID != "" && m.class(in.ClassID) == nil {
		return entity.Lead{}, domainError("CLASS_NOT_FOUND", entity.ErrClassNotFound)
	}

	now := m.now()
	lead := entity.NewLead(in.Name, in.Phone, in.Email, in.Role, now)
	lead.AssignedToID = in.AssignedToID
	lead.ClassID = in.ClassID
	lead.AppendObservation(now, in.Observation)

	entry := entity.NewLeadHistoryEntry(lead, nil, "Lead criado", in.Actor, now)
	m.leads = append([]entity.Lead{*lead}, m.leads...)
	m.history = append([]entity.LeadHistoryEntry{entry}, m.history...)

	m.writer.Enqueue(
		m.leadInsertOp(*lead),
		m.historyInsertOp(entry),
		m.publishOp(ChangeInsert, *lead),
	)
	m.mirror(ctx, cacheKeyLeads, cacheKeyHistory)

	return lead.Clone(), nil
}

// ChangeStatus moves a lead through the pipeline, applying the financial side effects of
// SINAL and GANHO. The in-memory state is authoritative: remote writes are queued and
// never rolled back.
func (m *LeadManager) ChangeStatus(ctx context.Context, in ChangeStatusInput) (entity.Lead, error) {
	if !in.NewStatus.Valid() {
		return entity.Lead{}, domainError("INVALID_STATUS", entity.ErrInvalidStatus)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.leadIndex(in.LeadID)
	if idx < 0 {
		return entity.Lead{}, domainError("LEAD_NOT_FOUND", entity.ErrLeadNotFound)
	}

	lead := m.leads[idx].Clone()
	oldStatus := lead.Status
	observation := strings.TrimSpace(in.Observation)
	if oldStatus == entity.StatusNovo && in.NewStatus != entity.StatusNovo && observation == "" {
		return entity.Lead{}, domainError("OBSERVATION_REQUIRED", entity.ErrObservationRequired)
	}

	now := m.now()
	var txs []entity.Transaction

	switch in.NewStatus {
	case entity.StatusSemResposta:
		lead.LostAt = &now
	case entity.StatusSinal:
		if lead.HasDownPayment {
			return entity.Lead{}, domainError("DOWN_PAYMENT_OPEN", entity.ErrDownPaymentOpen)
		}
		tx, err := m.applyDownPayment(&lead, in.Sale, now)
		if err != nil {
			return entity.Lead{}, err
		}
		txs = append(txs, tx)
	case entity.StatusGanho:
		var (
			tx  *entity.Transaction
			err error
		)
		// sinal em aberto: GANHO só quita o saldo, mesmo depois de voltar para NEGOCIANDO
		if lead.HasDownPayment {
			tx = m.applySettlement(&lead, in.Sale, now)
		} else {
			tx, err = m.applyFullSale(&lead, in.Sale, now)
			if err != nil {
				return entity.Lead{}, err
			}
		}
		if tx != nil {
			txs = append(txs, *tx)
		}
	}
	if in.NewStatus != entity.StatusSemResposta {
		lead.LostAt = nil
	}

	lead.Status = in.NewStatus
	lead.UpdatedAt = now
	if observation != "" {
		lead.AppendObservation(now, in.NewStatus.Label()+": "+observation)
	}

	entry := entity.NewLeadHistoryEntry(&lead, &oldStatus, observation, in.Actor, now)
	m.leads[idx] = lead
	m.history = append([]entity.LeadHistoryEntry{entry}, m.history...)
	txOp := m.recordTransactions(txs...)

	m.writer.Enqueue(
		m.leadUpdateOp(lead),
		txOp,
		m.historyInsertOp(entry),
		m.publishOp(ChangeUpdate, lead),
	)
	m.mirror(ctx, cacheKeyLeads, cacheKeyTransactions, cacheKeyHistory)
	m.metrics.StatusChanged(in.NewStatus)

	return lead.Clone(), nil
}

func (m *LeadManager) applyDownPayment(lead *entity.Lead, sale *SaleData, now time.Time) (entity.Transaction, error) {
	if sale == nil || !sale.Value.IsPositive() || sale.DownPayment == nil {
		return entity.Transaction{}, domainError("SALE_DATA_REQUIRED", entity.ErrSaleDataRequired)
	}
	down := *sale.DownPayment
	if !down.IsPositive() || down.GreaterThan(sale.Value) {
		return entity.Transaction{}, domainError("INVALID_DOWN_PAYMENT", entity.ErrInvalidDownPayment)
	}
	if err := m.applySaleDetails(lead, sale, false); err != nil {
		return entity.Transaction{}, err
	}

	lead.OpenDownPayment(sale.Value, down)
	lead.WonAt = &now

	tx := m.saleTransaction(lead, down, "Sinal Imersão", now)
	return tx, nil
}

// applySettlement turns a lead with an open down payment into GANHO, recording only
// what was still owed.
func (m *LeadManager) applySettlement(lead *entity.Lead, sale *SaleData, now time.Time) *entity.Transaction {
	remaining := lead.Remaining()
	if sale != nil && sale.PaymentMethod != "" {
		lead.PaymentMethod = sale.PaymentMethod
	}

	zero := decimal.Zero
	lead.HasDownPayment = false
	lead.DownPaymentValue = nil
	lead.RemainingBalance = &zero
	lead.WonAt = &now

	if !remaining.IsPositive() {
		return nil
	}
	tx := m.saleTransaction(lead, remaining, "Quitação Imersão", now)
	return &tx
}

func (m *LeadManager) applyFullSale(lead *entity.Lead, sale *SaleData, now time.Time) (*entity.Transaction, error) {
	if sale == nil || !sale.Value.IsPositive() || sale.Modality == "" ||
		strings.TrimSpace(sale.PaymentMethod) == "" || sale.SellerID == "" || sale.ClassID == "" {
		return nil, domainError("SALE_DATA_REQUIRED", entity.ErrSaleDataRequired)
	}
	if err := m.applySaleDetails(lead, sale, true); err != nil {
		return nil, err
	}

	value := sale.Value
	lead.SaleValue = &value
	lead.ClearDownPayment()
	lead.WonAt = &now

	tx := m.saleTransaction(lead, value, "Venda Imersão", now)
	return &tx, nil
}

// applySaleDetails copies modality, payment, seller and class onto the lead after
// checking the references exist.
func (m *LeadManager) applySaleDetails(lead *entity.Lead, sale *SaleData, required bool) error {
	if sale.SellerID != "" {
		if m.member(sale.SellerID) == nil {
			return domainError("SELLER_NOT_FOUND", entity.ErrSellerNotFound)
		}
		lead.AssignedToID = sale.SellerID
	} else if required {
		return domainError("SALE_DATA_REQUIRED", entity.ErrSaleDataRequired)
	}
	if sale.ClassID != "" {
		if m.class(sale.ClassID) == nil {
			return domainError("CLASS_NOT_FOUND", entity.ErrClassNotFound)
		}
		lead.ClassID = sale.ClassID
	}
	if sale.Modality != "" {
		lead.Modality = sale.Modality
	}
	if sale.PaymentMethod != "" {
		lead.PaymentMethod = strings.TrimSpace(sale.PaymentMethod)
	}
	return nil
}

func (m *LeadManager) saleTransaction(lead *entity.Lead, amount decimal.Decimal, prefix string, now time.Time) entity.Transaction {
	desc := prefix + " - " + lead.Name
	if name := m.className(lead.ClassID); name != "" {
		desc += " (" + name + ")"
	}
	tx := entity.NewTransaction(entity.TransactionIncome, amount, desc, entity.CategorySales, now)
	tx.ClassID = lead.ClassID
	tx.PaymentMethod = lead.PaymentMethod
	tx.LeadID = lead.ID
	return tx
}

// SettleDownPayment completes a SINAL sale outside the status transition.
func (m *LeadManager) SettleDownPayment(ctx context.Context, in SettleDownPaymentInput) (entity.Lead, error) {
	if !in.Amount.IsPositive() {
		return entity.Lead{}, domainError("INVALID_AMOUNT", entity.ErrInvalidAmount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.leadIndex(in.LeadID)
	if idx < 0 {
		return entity.Lead{}, domainError("LEAD_NOT_FOUND", entity.ErrLeadNotFound)
	}
	lead := m.leads[idx].Clone()
	if !lead.HasDownPayment {
		return entity.Lead{}, domainError("NO_DOWN_PAYMENT", entity.ErrNoDownPayment)
	}

	now := m.now()
	if method := strings.TrimSpace(in.PaymentMethod); method != "" {
		lead.PaymentMethod = method
	}
	tx := m.saleTransaction(&lead, in.Amount, "Quitação Imersão", now)

	lead.ClearDownPayment()
	lead.Status = entity.StatusGanho
	lead.WonAt = &now
	lead.UpdatedAt = now
	lead.LostAt = nil

	note := fmt.Sprintf("Saldo quitado: R$ %s via %s", in.Amount.StringFixed(2), lead.PaymentMethod)
	if obs := strings.TrimSpace(in.Observation); obs != "" {
		note += ". " + obs
	}
	lead.AppendObservation(now, note)

	won := entity.StatusGanho
	entry := entity.NewLeadHistoryEntry(&lead, &won, note, in.Actor, now)

	m.leads[idx] = lead
	m.history = append([]entity.LeadHistoryEntry{entry}, m.history...)
	txOp := m.recordTransactions(tx)

	m.writer.Enqueue(
		m.leadUpdateOp(lead),
		txOp,
		m.historyInsertOp(entry),
		m.publishOp(ChangeUpdate, lead),
	)
	m.mirror(ctx, cacheKeyLeads, cacheKeyTransactions, cacheKeyHistory)

	return lead.Clone(), nil
}

func (m *LeadManager) UpdateFollowUp(ctx context.Context, in FollowUpInput) (entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := m.leadIndex(in.LeadID)
	if idx < 0 {
		return entity.Lead{}, domainError("LEAD_NOT_FOUND", entity.ErrLeadNotFound)
	}

	lead := m.leads[idx].Clone()
	lead.NextFollowUpAt = in.At
	lead.FollowUpNote = strings.TrimSpace(in.Note)
	lead.UpdatedAt = m.now()

	m.leads[idx] = lead
	m.writer.Enqueue(m.leadUpdateOp(lead), m.publishOp(ChangeUpdate, lead))
	m.mirror(ctx, cacheKeyLeads)

	return lead.Clone(), nil
}

// ReassignLeads hands the given leads to another member. Unknown ids are skipped.
func (m *LeadManager) ReassignLeads(ctx context.Context, ids []string, sellerID string, actor entity.Actor) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seller := m.member(sellerID)
	if seller == nil {
		return 0, domainError("SELLER_NOT_FOUND", entity.ErrSellerNotFound)
	}

	now := m.now()
	actor = actor.OrSystem()
	var ops []Operation
	moved := 0
	for _, id := range ids {
		idx := m.leadIndex(id)
		if idx < 0 || m.leads[idx].AssignedToID == seller.ID {
			continue
		}
		lead := m.leads[idx].Clone()
		previous := m.memberName(lead.AssignedToID)
		if previous == "" {
			previous = "ninguém"
		}
		lead.AssignedToID = seller.ID
		lead.UpdatedAt = now
		lead.AppendObservation(now, fmt.Sprintf("[%s] Transferido de %s para %s", actor.Name, previous, seller.Name))

		m.leads[idx] = lead
		ops = append(ops, m.leadUpdateOp(lead), m.publishOp(ChangeUpdate, lead))
		moved++
	}

	if moved > 0 {
		m.writer.Enqueue(ops...)
		m.mirror(ctx, cacheKeyLeads)
	}
	return moved, nil
}

func (m *LeadManager) DeleteLeads(ctx context.Context, ids []string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := m.leads[:0]
	var removed []string
	for _, lead := range m.leads {
		if drop[lead.ID] {
			removed = append(removed, lead.ID)
			continue
		}
		kept = append(kept, lead)
	}
	m.leads = kept
	if len(removed) == 0 {
		return 0
	}

	ops := []Operation{{
		Name: "leads.delete",
		Fn:   func(ctx context.Context) error { return m.repos.Leads.Delete(ctx, removed) },
	}}
	for _, id := range removed {
		ops = append(ops, m.publishOp(ChangeDelete, entity.Lead{ID: id}))
	}
	m.writer.Enqueue(ops...)
	m.mirror(ctx, cacheKeyLeads)

	return len(removed)
}

// ClearLeads removes every lead and drops the cached collection.
func (m *LeadManager) ClearLeads(ctx context.Context) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.leads)
	m.leads = nil

	m.writer.Enqueue(Operation{
		Name: "leads.delete_all",
		Fn:   func(ctx context.Context) error { return m.repos.Leads.DeleteAll(ctx) },
	})
	if err := m.cache.Delete(ctx, cacheKeyLeads); err != nil {
		m.mirror(ctx, cacheKeyLeads)
	}
	return n
}

func (m *LeadManager) leadInsertOp(leads ...entity.Lead) Operation {
	return Operation{
		Name: "leads.insert",
		Fn:   func(ctx context.Context) error { return m.repos.Leads.Insert(ctx, leads...) },
	}
}

func (m *LeadManager) leadUpdateOp(lead entity.Lead) Operation {
	return Operation{
		Name: "leads.update",
		Fn:   func(ctx context.Context) error { return m.repos.Leads.Update(ctx, &lead) },
	}
}

func (m *LeadManager) historyInsertOp(entries ...entity.LeadHistoryEntry) Operation {
	if len(entries) == 0 {
		return Operation{}
	}
	return Operation{
		Name: "lead_history.insert",
		Fn:   func(ctx context.Context) error { return m.repos.History.Insert(ctx, entries...) },
	}
}

// recordTransactions prepends txs to the ledger and returns the remote insert.
func (m *LeadManager) recordTransactions(txs ...entity.Transaction) Operation {
	if len(txs) == 0 {
		return Operation{}
	}
	for i := len(txs) - 1; i >= 0; i-- {
		m.transactions = append([]entity.Transaction{txs[i]}, m.transactions...)
		m.metrics.TransactionRecorded(txs[i].Type, txs[i].Amount)
	}
	return Operation{
		Name: "transactions.insert",
		Fn:   func(ctx context.Context) error { return m.repos.Transactions.Insert(ctx, txs...) },
	}
}
