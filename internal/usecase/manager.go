package usecase

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

// Chaves do cache local, uma por coleção.
const (
	cacheKeyLeads            = "leads"
	cacheKeyTransactions     = "transactions"
	cacheKeyTeam             = "team"
	cacheKeyClasses          = "immersiveClasses"
	cacheKeyKnowledge        = "knowledgeItems"
	cacheKeyHistory          = "leadHistory"
	cacheKeyCommissions      = "commissionPayments"
	cacheKeySuppliers        = "suppliers"
	cacheKeyLastSync         = "lastSyncConfig"
	cacheKeySuppliersSyncURL = "suppliersSyncUrl"
)

const DefaultStaleThreshold = 72 * time.Hour

// LeadManager owns every collection for the session. The hosted store and the
// local cache are downstream mirrors; all mutations go through its methods and
// are serialized by mu.
type LeadManager struct {
	mu sync.Mutex

	repos     Repositories
	cache     LocalCache
	writer    *remoteWriter
	publisher ChangePublisher
	notifier  ReassignmentNotifier
	sheets    SheetFetcher
	metrics   MetricsRecorder

	now        func() time.Time
	staleAfter time.Duration
	origin     string
	admin      *AdminSeed
	inline     bool

	leads            []entity.Lead
	transactions     []entity.Transaction
	team             []entity.TeamMember
	history          []entity.LeadHistoryEntry
	payments         []entity.CommissionPayment
	classes          []entity.ImmersiveClass
	knowledge        []entity.KnowledgeItem
	suppliers        []entity.Supplier
	lastSync         *entity.SyncConfig
	suppliersSyncURL string
}

// AdminSeed is created on load when the team has no administrator.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
}

type Option func(*LeadManager)

func WithPublisher(p ChangePublisher) Option {
	return func(m *LeadManager) { m.publisher = p }
}

func WithNotifier(n ReassignmentNotifier) Option {
	return func(m *LeadManager) { m.notifier = n }
}

func WithSheetFetcher(f SheetFetcher) Option {
	return func(m *LeadManager) { m.sheets = f }
}

func WithMetrics(r MetricsRecorder) Option {
	return func(m *LeadManager) { m.metrics = r }
}

func WithClock(now func() time.Time) Option {
	return func(m *LeadManager) { m.now = now }
}

func WithStaleThreshold(d time.Duration) Option {
	return func(m *LeadManager) {
		if d > 0 {
			m.staleAfter = d
		}
	}
}

// WithOrigin sets the instance id stamped on published changes.
func WithOrigin(origin string) Option {
	return func(m *LeadManager) { m.origin = origin }
}

func WithBootstrapAdmin(seed AdminSeed) Option {
	return func(m *LeadManager) {
		if seed.Email != "" && seed.Password != "" {
			m.admin = &seed
		}
	}
}

// WithSynchronousWrites runs remote writes inline. Used by tests and one-shot tools.
func WithSynchronousWrites() Option {
	return func(m *LeadManager) { m.inline = true }
}

func NewLeadManager(repos Repositories, cache LocalCache, opts ...Option) *LeadManager {
	m := &LeadManager{
		repos:      repos,
		cache:      cache,
		metrics:    noopMetrics{},
		now:        time.Now,
		staleAfter: DefaultStaleThreshold,
		origin:     uuid.New().String(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.writer = newRemoteWriter(m.inline, m.metrics)
	return m
}

func (m *LeadManager) Origin() string {
	return m.origin
}

// Flush waits for queued remote writes. Call it on shutdown.
func (m *LeadManager) Flush(ctx context.Context) error {
	return m.writer.Close(ctx)
}

// Load fills every collection from the hosted store, falling back to the local
// cache when a read fails or comes back empty. It never fails on store errors.
func (m *LeadManager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leads = loadCollection(ctx, m.cache, cacheKeyLeads, m.repos.Leads.FindAll)
	m.transactions = loadCollection(ctx, m.cache, cacheKeyTransactions, m.repos.Transactions.FindAll)
	m.classes = loadCollection(ctx, m.cache, cacheKeyClasses, m.repos.Classes.FindAll)
	m.knowledge = loadCollection(ctx, m.cache, cacheKeyKnowledge, m.repos.Knowledge.FindAll)
	m.history = loadCollection(ctx, m.cache, cacheKeyHistory, m.repos.History.FindAll)
	m.payments = loadCollection(ctx, m.cache, cacheKeyCommissions, m.repos.Commissions.FindAll)
	m.suppliers = loadCollection(ctx, m.cache, cacheKeySuppliers, m.repos.Suppliers.FindAll)

	records := loadCollection(ctx, m.cache, cacheKeyTeam, func(ctx context.Context) ([]memberRecord, error) {
		members, err := m.repos.Team.FindAll(ctx)
		return toMemberRecords(members), err
	})
	m.team = fromMemberRecords(records)

	sort.SliceStable(m.leads, func(i, j int) bool { return m.leads[i].CreatedAt.After(m.leads[j].CreatedAt) })
	sort.SliceStable(m.transactions, func(i, j int) bool { return m.transactions[i].Date.After(m.transactions[j].Date) })
	sort.SliceStable(m.history, func(i, j int) bool { return m.history[i].CreatedAt.After(m.history[j].CreatedAt) })

	m.lastSync = m.loadLastSync(ctx)
	m.suppliersSyncURL = m.loadSetting(ctx, cacheKeySuppliersSyncURL, entity.SettingSuppliersSyncURL)

	if err := m.seedAdmin(); err != nil {
		log.Printf("⚠️ Não foi possível criar o administrador inicial: %v", err)
	}

	m.mirror(ctx, cacheKeyLeads, cacheKeyTransactions, cacheKeyTeam, cacheKeyClasses,
		cacheKeyKnowledge, cacheKeyHistory, cacheKeyCommissions, cacheKeySuppliers)

	log.Printf("✅ Estado carregado: %d leads, %d transações, %d membros", len(m.leads), len(m.transactions), len(m.team))
	return ctx.Err()
}

func loadCollection[T any](ctx context.Context, cache LocalCache, key string, fetch func(context.Context) ([]T, error)) []T {
	items, err := fetch(ctx)
	if err == nil && len(items) > 0 {
		return items
	}
	if err != nil {
		log.Printf("⚠️ Erro ao ler '%s' do banco remoto: %v. Usando cache local", key, err)
	}

	raw, ok, cerr := cache.Get(ctx, key)
	if cerr != nil {
		log.Printf("⚠️ Erro ao ler '%s' do cache local: %v", key, cerr)
		return nil
	}
	if !ok || raw == "" {
		return items
	}

	var cached []T
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		log.Printf("⚠️ Cache local '%s' corrompido: %v", key, err)
		return items
	}
	return cached
}

func (m *LeadManager) loadLastSync(ctx context.Context) *entity.SyncConfig {
	raw := m.loadSetting(ctx, cacheKeyLastSync, entity.SettingLastSyncConfig)
	if raw == "" {
		return nil
	}
	var cfg entity.SyncConfig
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		log.Printf("⚠️ Configuração de sincronização inválida: %v", err)
		return nil
	}
	return &cfg
}

// loadSetting prefers the local cache, then the settings table.
func (m *LeadManager) loadSetting(ctx context.Context, cacheKey, settingKey string) string {
	if raw, ok, err := m.cache.Get(ctx, cacheKey); err == nil && ok && raw != "" {
		return raw
	}
	raw, ok, err := m.repos.Settings.Get(ctx, settingKey)
	if err != nil {
		log.Printf("⚠️ Erro ao ler configuração '%s': %v", settingKey, err)
		return ""
	}
	if !ok {
		return ""
	}
	return raw
}

// mirror rewrites the given collections in the local cache. Failures are only logged.
func (m *LeadManager) mirror(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var value any
		switch key {
		case cacheKeyLeads:
			value = m.leads
		case cacheKeyTransactions:
			value = m.transactions
		case cacheKeyTeam:
			value = toMemberRecords(m.team)
		case cacheKeyClasses:
			value = m.classes
		case cacheKeyKnowledge:
			value = m.knowledge
		case cacheKeyHistory:
			value = m.history
		case cacheKeyCommissions:
			value = m.payments
		case cacheKeySuppliers:
			value = m.suppliers
		case cacheKeyLastSync:
			if m.lastSync == nil {
				continue
			}
			value = m.lastSync
		case cacheKeySuppliersSyncURL:
			if err := m.cache.Set(ctx, key, m.suppliersSyncURL); err != nil {
				log.Printf("⚠️ Falha ao gravar cache local '%s': %v", key, err)
			}
			continue
		default:
			continue
		}

		body, err := json.Marshal(value)
		if err != nil {
			log.Printf("⚠️ Falha ao serializar '%s': %v", key, err)
			continue
		}
		if err := m.cache.Set(ctx, key, string(body)); err != nil {
			log.Printf("⚠️ Falha ao gravar cache local '%s': %v", key, err)
		}
	}
}

// memberRecord keeps the password hash in the local cache, which the API JSON omits.
type memberRecord struct {
	entity.TeamMember
	PasswordHash string `json:"password_hash,omitempty"`
}

func toMemberRecords(members []entity.TeamMember) []memberRecord {
	out := make([]memberRecord, 0, len(members))
	for _, mb := range members {
		out = append(out, memberRecord{TeamMember: mb, PasswordHash: mb.PasswordHash})
	}
	return out
}

func fromMemberRecords(records []memberRecord) []entity.TeamMember {
	out := make([]entity.TeamMember, 0, len(records))
	for _, r := range records {
		mb := r.TeamMember
		mb.PasswordHash = r.PasswordHash
		out = append(out, mb)
	}
	return out
}

func (m *LeadManager) leadIndex(id string) int {
	for i := range m.leads {
		if m.leads[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *LeadManager) member(id string) *entity.TeamMember {
	for i := range m.team {
		if m.team[i].ID == id {
			return &m.team[i]
		}
	}
	return nil
}

func (m *LeadManager) memberName(id string) string {
	if mb := m.member(id); mb != nil {
		return mb.Name
	}
	return ""
}

// sellers keeps team order; the round robin depends on it.
func (m *LeadManager) sellers() []entity.TeamMember {
	var out []entity.TeamMember
	for _, mb := range m.team {
		if mb.IsSeller() {
			out = append(out, mb)
		}
	}
	return out
}

func (m *LeadManager) class(id string) *entity.ImmersiveClass {
	for i := range m.classes {
		if m.classes[i].ID == id {
			return &m.classes[i]
		}
	}
	return nil
}

func (m *LeadManager) className(id string) string {
	if c := m.class(id); c != nil {
		return c.City
	}
	return ""
}
