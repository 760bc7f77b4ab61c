package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

const (
	RoleImported = "Importado"
	RoleSynced   = "Sincronizado"
)

var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
}

func parseCreatedAt(raw string, loc *time.Location, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t
		}
	}
	return fallback
}

// ImportLeads turns spreadsheet rows into NOVO leads. Rows whose phone digits already
// exist in the collection are dropped. Repeats inside the same sheet are kept.
func (m *LeadManager) ImportLeads(ctx context.Context, in ImportLeadsInput) (ImportResult, error) {
	if err := validationFailure(ValidateImportLeadsInput(in)); err != nil {
		return ImportResult{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var sellers []entity.TeamMember
	switch in.Assignment.Strategy {
	case entity.AssignSingle:
		seller := m.member(in.Assignment.SellerID)
		if seller == nil {
			return ImportResult{}, domainError("SELLER_NOT_FOUND", entity.ErrSellerNotFound)
		}
		sellers = []entity.TeamMember{*seller}
	case entity.AssignEqual:
		sellers = m.sellers()
	}
	if in.CostClassID != "" && m.class(in.CostClassID) == nil {
		return ImportResult{}, domainError("CLASS_NOT_FOUND", entity.ErrClassNotFound)
	}

	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = RoleImported
	}

	now := m.now()
	known := make(map[string]bool, len(m.leads))
	for i := range m.leads {
		if p := m.leads[i].NormalizedPhone(); p != "" {
			known[p] = true
		}
	}

	var result ImportResult
	var created []entity.Lead
	var entries []entity.LeadHistoryEntry
	for _, row := range in.Rows {
		name := strings.TrimSpace(row.Name)
		phone := entity.NormalizePhone(row.Phone)
		if name == "" || phone == "" {
			continue
		}
		if known[phone] {
			result.Duplicates++
			continue
		}

		rowRole := role
		if r := strings.TrimSpace(row.Role); r != "" {
			rowRole = r
		}
		lead := entity.NewLead(name, row.Phone, row.Email, rowRole, now)
		lead.CreatedAt = parseCreatedAt(row.CreatedAt, now.Location(), now)

		if className := strings.TrimSpace(row.ClassName); className != "" {
			if id := m.classIDByName(className); id != "" {
				lead.ClassID = id
			} else {
				lead.AppendObservation(now, "Turma informada na planilha: "+className)
			}
		}

		if len(sellers) > 0 {
			lead.AssignedToID = sellers[len(created)%len(sellers)].ID
		}

		created = append(created, *lead)
		entries = append(entries, entity.NewLeadHistoryEntry(lead, nil, "Importado da planilha", in.Actor, now))
	}

	if in.SourceURL != "" && in.Assignment.Strategy != "" {
		m.rememberSync(ctx, entity.SyncConfig{
			URL:         in.SourceURL,
			Strategy:    in.Assignment.Strategy,
			SellerID:    in.Assignment.SellerID,
			CostClassID: in.CostClassID,
		})
	}

	if len(created) == 0 {
		log.Printf("⚠️ Importação sem leads novos (%d duplicado(s))", result.Duplicates)
		return result, nil
	}

	m.leads = append(append([]entity.Lead{}, created...), m.leads...)
	for i := len(entries) - 1; i >= 0; i-- {
		m.history = append([]entity.LeadHistoryEntry{entries[i]}, m.history...)
	}

	ops := []Operation{m.leadInsertOp(created...), m.historyInsertOp(entries...)}
	if in.TotalCost.IsPositive() {
		desc := fmt.Sprintf("Importação de Leads (%d novos leads)", len(created))
		expense := entity.NewTransaction(entity.TransactionExpense, in.TotalCost, desc, entity.CategoryLeads, now)
		expense.ClassID = in.CostClassID
		ops = append(ops, m.recordTransactions(expense))
		result.ExpenseID = expense.ID
	}
	for _, lead := range created {
		ops = append(ops, m.publishOp(ChangeInsert, lead))
	}
	m.writer.Enqueue(ops...)
	m.mirror(ctx, cacheKeyLeads, cacheKeyHistory, cacheKeyTransactions)
	m.metrics.LeadsImported(len(created))

	result.Imported = len(created)
	result.Leads = created
	log.Printf("✅ %d lead(s) importado(s), %d duplicado(s) ignorado(s)", result.Imported, result.Duplicates)
	return result, nil
}

func (m *LeadManager) classIDByName(name string) string {
	for _, c := range m.classes {
		if strings.EqualFold(strings.TrimSpace(c.City), name) {
			return c.ID
		}
	}
	return ""
}

func (m *LeadManager) rememberSync(ctx context.Context, cfg entity.SyncConfig) {
	m.lastSync = &cfg
	m.mirror(ctx, cacheKeyLastSync)

	body, err := json.Marshal(cfg)
	if err != nil {
		return
	}
	m.writer.Enqueue(Operation{
		Name: "settings.put",
		Fn: func(ctx context.Context) error {
			return m.repos.Settings.Put(ctx, entity.SettingLastSyncConfig, string(body))
		},
	})
}

func (m *LeadManager) LastSyncConfig() *entity.SyncConfig {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastSync == nil {
		return nil
	}
	cfg := *m.lastSync
	return &cfg
}

// PreviewSheet fetches and parses a spreadsheet without importing anything.
func (m *LeadManager) PreviewSheet(ctx context.Context, url string) ([]ImportRow, error) {
	if m.sheets == nil {
		return nil, &TechnicalError{Code: "SHEETS_UNAVAILABLE", Message: "Importação por planilha não configurada"}
	}
	rows, err := m.sheets.FetchLeadRows(ctx, url)
	if err != nil {
		log.Printf("❌ Erro ao buscar planilha %s: %v", url, err)
		return nil, &TechnicalError{
			Code:    "SHEET_FETCH_FAILED",
			Message: "Não foi possível ler a planilha. Verifique se o link está público.",
			Err:     err,
		}
	}
	return rows, nil
}

// SyncFromLastSource re-reads the saved spreadsheet and imports new rows with the saved
// assignment policy. No cost is recorded on a repeat sync.
func (m *LeadManager) SyncFromLastSource(ctx context.Context, actor entity.Actor) (ImportResult, error) {
	cfg := m.LastSyncConfig()
	if cfg == nil {
		return ImportResult{}, domainError("NO_SYNC_CONFIG", entity.ErrNoSyncConfig)
	}
	if cfg.URL == "" {
		return ImportResult{}, domainError("NO_SYNC_URL", entity.ErrNoSyncURL)
	}

	rows, err := m.PreviewSheet(ctx, cfg.URL)
	if err != nil {
		return ImportResult{}, err
	}

	return m.ImportLeads(ctx, ImportLeadsInput{
		Rows:        rows,
		TotalCost:   decimal.Zero,
		Assignment:  AssignmentConfig{Strategy: cfg.Strategy, SellerID: cfg.SellerID},
		SourceURL:   cfg.URL,
		CostClassID: cfg.CostClassID,
		Role:        RoleSynced,
		Actor:       actor,
	})
}
