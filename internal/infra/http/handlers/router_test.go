package handlers

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/imersao-crm/internal/entity"
	"github.com/xavierca1/imersao-crm/internal/infra/http/middleware"
	"github.com/xavierca1/imersao-crm/internal/infra/memory"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

const (
	adminEmail    = "admin@imersao.test"
	adminPassword = "segredo123"
	webhookSecret = "webhook-secret"
)

type testAPI struct {
	t       *testing.T
	handler http.Handler
	manager *usecase.LeadManager
	admin   string
	seller  string
	sellerM entity.TeamMember
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.NewStore()
	repos := usecase.Repositories{
		Leads:        store.Leads(),
		Transactions: store.Transactions(),
		Team:         store.Team(),
		Classes:      store.Classes(),
		Knowledge:    store.Knowledge(),
		History:      store.History(),
		Commissions:  store.Commissions(),
		Suppliers:    store.Suppliers(),
		Settings:     store.Settings(),
	}
	manager := usecase.NewLeadManager(repos, memory.NewCache(),
		usecase.WithSynchronousWrites(),
		usecase.WithBootstrapAdmin(usecase.AdminSeed{Name: "Ana", Email: adminEmail, Password: adminPassword}),
	)
	require.NoError(t, manager.Load(context.Background()))

	api := &testAPI{
		t:       t,
		manager: manager,
		handler: NewRouter(RouterConfig{
			Manager:       manager,
			Issuer:        middleware.NewTokenIssuer("jwt-secret", time.Hour),
			WebhookSecret: webhookSecret,
		}),
	}
	api.admin = api.login(adminEmail, adminPassword)

	rec := api.do(http.MethodPost, "/team", api.admin, usecase.AddTeamMemberInput{
		Name: "Bruno", Email: "bruno@imersao.test", Password: "vendas123", Role: entity.RoleSeller,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &api.sellerM))
	api.seller = api.login("bruno@imersao.test", "vendas123")
	return api
}

func (a *testAPI) login(email, password string) string {
	rec := a.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: email, Password: password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) createLead(token, name, phone string) entity.Lead {
	rec := a.do(http.MethodPost, "/leads", token, usecase.AddLeadInput{Name: name, Phone: phone})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var lead entity.Lead
	require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &lead))
	return lead
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/auth/login", "", LoginRequest{Email: adminEmail, Password: "errada"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error)
}

func TestLeads_RequireAuthentication(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/leads", "", nil).Code)
}

func TestLeads_SellerSeesOnlyOwnLeads(t *testing.T) {
	api := newTestAPI(t)

	own := api.createLead(api.seller, "Maria", "11 98888-0001")
	assert.Equal(t, api.sellerM.ID, own.AssignedToID)
	other := api.createLead(api.admin, "João", "11 98888-0002")

	rec := api.do(http.MethodGet, "/leads?view=all", api.seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var leads []entity.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, own.ID, leads[0].ID)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/leads/"+other.ID, api.seller, nil).Code)
	assert.Equal(t, http.StatusNotFound,
		api.do(http.MethodPost, "/leads/"+other.ID+"/status", api.seller, changeStatusRequest{NewStatus: entity.StatusLigacao, Observation: "x"}).Code)
}

func TestLeads_ChangeStatus(t *testing.T) {
	api := newTestAPI(t)
	lead := api.createLead(api.seller, "Maria", "11 98888-0001")

	rec := api.do(http.MethodPost, "/leads/"+lead.ID+"/status", api.seller, changeStatusRequest{NewStatus: entity.StatusLigacao})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "OBSERVATION_REQUIRED", errResp.Error)

	rec = api.do(http.MethodPost, "/leads/"+lead.ID+"/status", api.seller, changeStatusRequest{
		NewStatus:   entity.StatusLigacao,
		Observation: "Atendeu, pediu retorno amanhã",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated entity.Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, entity.StatusLigacao, updated.Status)
	assert.Contains(t, updated.Observation, "Atendeu")

	rec = api.do(http.MethodGet, "/leads/"+lead.ID+"/history", api.seller, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []entity.LeadHistoryEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, entity.StatusLigacao, history[0].NewStatus)
	assert.Equal(t, "Bruno", history[0].ChangedByName)
}

func TestLeads_AdminOnlyRoutes(t *testing.T) {
	api := newTestAPI(t)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodGet, "/dashboard", api.seller, nil).Code)
	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, "/leads?confirm=true", api.seller, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/dashboard", api.admin, nil).Code)
}

func TestLeads_ClearRequiresConfirmation(t *testing.T) {
	api := newTestAPI(t)
	api.createLead(api.admin, "Maria", "11 98888-0001")

	assert.Equal(t, http.StatusPreconditionRequired, api.do(http.MethodDelete, "/leads", api.admin, nil).Code)

	rec := api.do(http.MethodDelete, "/leads?confirm=true", api.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"deleted":1}`, rec.Body.String())
}

func TestLeads_ImportRows(t *testing.T) {
	api := newTestAPI(t)
	api.createLead(api.admin, "Existente", "(11) 98888-0001")

	rec := api.do(http.MethodPost, "/leads/import", api.admin, map[string]interface{}{
		"rows": []usecase.ImportRow{
			{Name: "Duplicado", Phone: "11988880001"},
			{Name: "Nova", Phone: "11 97777-0000"},
		},
		"total_cost": "150.00",
		"assignment": map[string]string{"strategy": "SINGLE", "seller_id": api.sellerM.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result usecase.ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.NotEmpty(t, result.ExpenseID)
	assert.Equal(t, api.sellerM.ID, result.Leads[0].AssignedToID)
}

func TestValidation_ReturnsFields(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/team", api.admin, map[string]string{"name": "X", "email": "invalido"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error)
	fields := make(map[string]bool)
	for _, f := range resp.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
}

func TestCommissions_InvalidMonth(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/commissions?month=marco", api.admin, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/commissions?month=2025-03", api.admin, nil).Code)
}

func TestRealtimeWebhook(t *testing.T) {
	api := newTestAPI(t)

	now := time.Now().UTC().Truncate(time.Second)
	payload, err := json.Marshal(map[string]interface{}{
		"type":  "INSERT",
		"table": "leads",
		"record": entity.Lead{
			ID: "f4b3c2a1-0000-4000-8000-000000000001", Name: "Remota", Phone: "21999990000",
			Status: entity.StatusNovo, CreatedAt: now, UpdatedAt: now,
		},
	})
	require.NoError(t, err)

	send := func(signature string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/realtime/leads", bytes.NewReader(payload))
		req.Header.Set("X-Signature", signature)
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, send("deadbeef").Code)

	rec := send(hex.EncodeToString(Sign([]byte(webhookSecret), payload)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"applied":true}`, rec.Body.String())

	lead, err := api.manager.Lead("f4b3c2a1-0000-4000-8000-000000000001", nil)
	require.NoError(t, err)
	assert.Equal(t, "Remota", lead.Name)
}

func TestHealth(t *testing.T) {
	h := NewHealthHandler(nil, nil, map[string]HealthCheck{
		"cache": func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	h.Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "not configured", resp.Dependencies["database"])
	assert.Equal(t, "healthy", resp.Dependencies["cache"])
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Now()
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))
}
