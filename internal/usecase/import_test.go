package usecase_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

const sheetURL = "https://docs.google.com/spreadsheets/d/abc/export?format=csv"

func TestImportLeads_DedupesAndSplitsEqually(t *testing.T) {
	f := newFixture(t)
	f.addLead("Já Existe", "(11) 90000-0001", "s1")

	result, err := f.manager.ImportLeads(f.ctx, usecase.ImportLeadsInput{
		Rows: []usecase.ImportRow{
			{Name: "Duplicado", Phone: "11900000001"},
			{Name: "Ana", ClassName: "curitiba", Phone: "11 90000-0002", CreatedAt: "05/03/2025"},
			{Name: "Bia", ClassName: "Floripa", Phone: "11900000003"},
			{Name: "", Phone: "11900000009"},
			{Name: "Caio", Phone: "11900000004"},
		},
		TotalCost:   dec(300),
		Assignment:  usecase.AssignmentConfig{Strategy: entity.AssignEqual},
		CostClassID: "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	require.Len(t, result.Leads, 3)

	ana, bia, caio := result.Leads[0], result.Leads[1], result.Leads[2]
	assert.Equal(t, "s1", ana.AssignedToID)
	assert.Equal(t, "s2", bia.AssignedToID)
	assert.Equal(t, "s1", caio.AssignedToID)

	assert.Equal(t, "c1", ana.ClassID)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), ana.CreatedAt)
	assert.Equal(t, usecase.RoleImported, ana.Role)
	assert.Empty(t, bia.ClassID)
	assert.Contains(t, bia.Observation, "Turma informada na planilha: Floripa")

	txs := f.manager.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, result.ExpenseID, txs[0].ID)
	assert.Equal(t, entity.TransactionExpense, txs[0].Type)
	assert.Equal(t, entity.CategoryLeads, txs[0].Category)
	assert.Equal(t, "Importação de Leads (3 novos leads)", txs[0].Description)
	assert.Len(t, f.manager.Leads(nil, usecase.ViewAll), 4)
}

func TestImportLeads_KeepsRepeatsWithinSheet(t *testing.T) {
	f := newFixture(t)
	f.addLead("Já Existe", "11900000001", "s1")

	result, err := f.manager.ImportLeads(f.ctx, usecase.ImportLeadsInput{
		Rows: []usecase.ImportRow{
			{Name: "Bia", Phone: "11900000003"},
			{Name: "Bia de novo", Phone: "(11)90000-0003"},
			{Name: "Outra", Phone: "(11) 90000-0001"},
		},
		Assignment: usecase.AssignmentConfig{Strategy: entity.AssignSingle, SellerID: "s2"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Len(t, f.manager.Leads(nil, usecase.ViewAll), 3)

	again, err := f.manager.ImportLeads(f.ctx, usecase.ImportLeadsInput{
		Rows:       []usecase.ImportRow{{Name: "Bia", Phone: "11900000003"}},
		Assignment: usecase.AssignmentConfig{Strategy: entity.AssignSingle, SellerID: "s2"},
	})
	require.NoError(t, err)
	assert.Zero(t, again.Imported)
	assert.Equal(t, 1, again.Duplicates)
}

func TestImportLeads_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.manager.ImportLeads(f.ctx, usecase.ImportLeadsInput{
		Assignment: usecase.AssignmentConfig{Strategy: entity.AssignSingle},
	})
	assert.Equal(t, "VALIDATION_ERROR", errorCode(err))

	_, err = f.manager.ImportLeads(f.ctx, usecase.ImportLeadsInput{
		Assignment: usecase.AssignmentConfig{Strategy: entity.AssignSingle, SellerID: "ghost"},
	})
	assert.Equal(t, "SELLER_NOT_FOUND", errorCode(err))

	_, err = f.manager.ImportLeads(f.ctx, usecase.ImportLeadsInput{
		TotalCost:  dec(-1),
		Assignment: usecase.AssignmentConfig{Strategy: entity.AssignNone},
	})
	assert.Equal(t, "VALIDATION_ERROR", errorCode(err))
}

func TestImportLeads_NoNewRowsRecordsNoCost(t *testing.T) {
	f := newFixture(t)
	f.addLead("Já Existe", "11900000001", "s1")

	result, err := f.manager.ImportLeads(f.ctx, usecase.ImportLeadsInput{
		Rows:       []usecase.ImportRow{{Name: "Duplicado", Phone: "11900000001"}},
		TotalCost:  dec(100),
		Assignment: usecase.AssignmentConfig{Strategy: entity.AssignNone},
		SourceURL:  sheetURL,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Imported)
	assert.Empty(t, f.manager.Transactions())

	cfg := f.manager.LastSyncConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, sheetURL, cfg.URL)
}

func TestSyncFromLastSource(t *testing.T) {
	sheets := &fakeSheets{}
	f := newFixture(t, usecase.WithSheetFetcher(sheets))

	_, err := f.manager.SyncFromLastSource(f.ctx, entity.Actor{})
	assert.Equal(t, "NO_SYNC_CONFIG", errorCode(err))

	_, err = f.manager.ImportLeads(f.ctx, usecase.ImportLeadsInput{
		Rows:       []usecase.ImportRow{{Name: "Ana", Phone: "11900000002"}},
		TotalCost:  dec(50),
		Assignment: usecase.AssignmentConfig{Strategy: entity.AssignSingle, SellerID: "s2"},
		SourceURL:  sheetURL,
	})
	require.NoError(t, err)

	sheets.rows = []usecase.ImportRow{
		{Name: "Ana", Phone: "11900000002"},
		{Name: "Nova", Phone: "11900000010"},
	}
	result, err := f.manager.SyncFromLastSource(f.ctx, entity.Actor{ID: "adm", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, "s2", result.Leads[0].AssignedToID)
	assert.Equal(t, usecase.RoleSynced, result.Leads[0].Role)
	assert.Equal(t, []string{sheetURL}, sheets.calls)
	assert.Len(t, f.manager.Transactions(), 1, "repeat syncs book no cost")

	// A configuração sobrevive a um novo carregamento pelo cache.
	reloaded := loadFixture(t, f.store, f.cache)
	require.NotNil(t, reloaded.manager.LastSyncConfig())
	assert.Equal(t, entity.AssignSingle, reloaded.manager.LastSyncConfig().Strategy)
}

func TestPreviewSheet_FetchFailure(t *testing.T) {
	f := newFixture(t, usecase.WithSheetFetcher(&fakeSheets{err: errors.New("403")}))

	_, err := f.manager.PreviewSheet(f.ctx, sheetURL)
	var te *usecase.TechnicalError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "SHEET_FETCH_FAILED", te.Code)

	bare := newFixture(t)
	_, err = bare.manager.PreviewSheet(bare.ctx, sheetURL)
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "SHEETS_UNAVAILABLE", te.Code)
}
