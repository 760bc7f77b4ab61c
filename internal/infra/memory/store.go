// Package memory keeps the hosted-store tables in process. It backs the offline mode
// (no DATABASE_URL) and the tests.
package memory

import (
	"context"
	"sync"

	"github.com/xavierca1/imersao-crm/internal/entity"
)

type Store struct {
	mu       sync.Mutex
	readErr  error
	writeErr error
	writes   []string

	leads        []entity.Lead
	transactions []entity.Transaction
	team         []entity.TeamMember
	classes      []entity.ImmersiveClass
	knowledge    []entity.KnowledgeItem
	history      []entity.LeadHistoryEntry
	commissions  []entity.CommissionPayment
	suppliers    []entity.Supplier
	settings     map[string]string
}

func NewStore() *Store {
	return &Store{settings: make(map[string]string)}
}

// FailReads makes every FindAll/Get return err. Nil restores normal behavior.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// FailWrites makes every mutation return err without applying it.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

// Writes lists the applied mutations in order, as "table.op".
func (s *Store) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

func (s *Store) read() (func(), error) {
	s.mu.Lock()
	if s.readErr != nil {
		err := s.readErr
		s.mu.Unlock()
		return nil, err
	}
	return s.mu.Unlock, nil
}

func (s *Store) write(op string) (func(), error) {
	s.mu.Lock()
	if s.writeErr != nil {
		err := s.writeErr
		s.mu.Unlock()
		return nil, err
	}
	s.writes = append(s.writes, op)
	return s.mu.Unlock, nil
}

func (s *Store) Leads() *LeadRepository               { return &LeadRepository{s} }
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{s} }
func (s *Store) Team() *TeamRepository                { return &TeamRepository{s} }
func (s *Store) Classes() *ClassRepository            { return &ClassRepository{s} }
func (s *Store) Knowledge() *KnowledgeRepository      { return &KnowledgeRepository{s} }
func (s *Store) History() *HistoryRepository          { return &HistoryRepository{s} }
func (s *Store) Commissions() *CommissionRepository   { return &CommissionRepository{s} }
func (s *Store) Suppliers() *SupplierRepository       { return &SupplierRepository{s} }
func (s *Store) Settings() *SettingsRepository        { return &SettingsRepository{s} }

func indexOf[T any](rows []T, id string, key func(T) string) int {
	for i := range rows {
		if key(rows[i]) == id {
			return i
		}
	}
	return -1
}

func without[T any](rows []T, keep func(T) bool) []T {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

type LeadRepository struct{ s *Store }

func leadID(l entity.Lead) string { return l.ID }

func (r *LeadRepository) FindAll(context.Context) ([]entity.Lead, error) {
	unlock, err := r.s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]entity.Lead, len(r.s.leads))
	for i := range r.s.leads {
		out[i] = r.s.leads[i].Clone()
	}
	return out, nil
}

func (r *LeadRepository) Insert(_ context.Context, leads ...entity.Lead) error {
	unlock, err := r.s.write("leads.insert")
	if err != nil {
		return err
	}
	defer unlock()
	for _, l := range leads {
		if indexOf(r.s.leads, l.ID, leadID) >= 0 {
			continue
		}
		r.s.leads = append(r.s.leads, l.Clone())
	}
	return nil
}

func (r *LeadRepository) Update(_ context.Context, lead *entity.Lead) error {
	unlock, err := r.s.write("leads.update")
	if err != nil {
		return err
	}
	defer unlock()
	idx := indexOf(r.s.leads, lead.ID, leadID)
	if idx < 0 {
		return entity.ErrLeadNotFound
	}
	r.s.leads[idx] = lead.Clone()
	return nil
}

func (r *LeadRepository) Delete(_ context.Context, ids []string) error {
	unlock, err := r.s.write("leads.delete")
	if err != nil {
		return err
	}
	defer unlock()
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	r.s.leads = without(r.s.leads, func(l entity.Lead) bool { return !drop[l.ID] })
	return nil
}

func (r *LeadRepository) DeleteAll(context.Context) error {
	unlock, err := r.s.write("leads.delete_all")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.leads = nil
	return nil
}

type TransactionRepository struct{ s *Store }

func (r *TransactionRepository) FindAll(context.Context) ([]entity.Transaction, error) {
	unlock, err := r.s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]entity.Transaction(nil), r.s.transactions...), nil
}

func (r *TransactionRepository) Insert(_ context.Context, txs ...entity.Transaction) error {
	unlock, err := r.s.write("transactions.insert")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.transactions = append(r.s.transactions, txs...)
	return nil
}

type TeamRepository struct{ s *Store }

func (r *TeamRepository) FindAll(context.Context) ([]entity.TeamMember, error) {
	unlock, err := r.s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]entity.TeamMember(nil), r.s.team...), nil
}

func (r *TeamRepository) Insert(_ context.Context, member *entity.TeamMember) error {
	unlock, err := r.s.write("team.insert")
	if err != nil {
		return err
	}
	defer unlock()
	for _, m := range r.s.team {
		if m.Email == member.Email {
			return entity.ErrEmailTaken
		}
	}
	r.s.team = append(r.s.team, *member)
	return nil
}

func (r *TeamRepository) Delete(_ context.Context, id string) error {
	unlock, err := r.s.write("team.delete")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.team = without(r.s.team, func(m entity.TeamMember) bool { return m.ID != id })
	return nil
}

type ClassRepository struct{ s *Store }

func classID(c entity.ImmersiveClass) string { return c.ID }

func (r *ClassRepository) FindAll(context.Context) ([]entity.ImmersiveClass, error) {
	unlock, err := r.s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]entity.ImmersiveClass(nil), r.s.classes...), nil
}

func (r *ClassRepository) Insert(_ context.Context, class *entity.ImmersiveClass) error {
	unlock, err := r.s.write("immersive_classes.insert")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.classes = append(r.s.classes, *class)
	return nil
}

func (r *ClassRepository) Update(_ context.Context, class *entity.ImmersiveClass) error {
	unlock, err := r.s.write("immersive_classes.update")
	if err != nil {
		return err
	}
	defer unlock()
	idx := indexOf(r.s.classes, class.ID, classID)
	if idx < 0 {
		return entity.ErrClassNotFound
	}
	r.s.classes[idx] = *class
	return nil
}

func (r *ClassRepository) Delete(_ context.Context, id string) error {
	unlock, err := r.s.write("immersive_classes.delete")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.classes = without(r.s.classes, func(c entity.ImmersiveClass) bool { return c.ID != id })
	return nil
}

type KnowledgeRepository struct{ s *Store }

func knowledgeID(k entity.KnowledgeItem) string { return k.ID }

func (r *KnowledgeRepository) FindAll(context.Context) ([]entity.KnowledgeItem, error) {
	unlock, err := r.s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]entity.KnowledgeItem(nil), r.s.knowledge...), nil
}

func (r *KnowledgeRepository) Insert(_ context.Context, item *entity.KnowledgeItem) error {
	unlock, err := r.s.write("knowledge_items.insert")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.knowledge = append(r.s.knowledge, *item)
	return nil
}

func (r *KnowledgeRepository) Update(_ context.Context, item *entity.KnowledgeItem) error {
	unlock, err := r.s.write("knowledge_items.update")
	if err != nil {
		return err
	}
	defer unlock()
	idx := indexOf(r.s.knowledge, item.ID, knowledgeID)
	if idx < 0 {
		return entity.ErrKnowledgeNotFound
	}
	r.s.knowledge[idx] = *item
	return nil
}

func (r *KnowledgeRepository) Delete(_ context.Context, id string) error {
	unlock, err := r.s.write("knowledge_items.delete")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.knowledge = without(r.s.knowledge, func(k entity.KnowledgeItem) bool { return k.ID != id })
	return nil
}

type HistoryRepository struct{ s *Store }

func (r *HistoryRepository) FindAll(context.Context) ([]entity.LeadHistoryEntry, error) {
	unlock, err := r.s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]entity.LeadHistoryEntry(nil), r.s.history...), nil
}

func (r *HistoryRepository) Insert(_ context.Context, entries ...entity.LeadHistoryEntry) error {
	unlock, err := r.s.write("lead_history.insert")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.history = append(r.s.history, entries...)
	return nil
}

type CommissionRepository struct{ s *Store }

func (r *CommissionRepository) FindAll(context.Context) ([]entity.CommissionPayment, error) {
	unlock, err := r.s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]entity.CommissionPayment(nil), r.s.commissions...), nil
}

func (r *CommissionRepository) Insert(_ context.Context, payment *entity.CommissionPayment) error {
	unlock, err := r.s.write("commission_payments.insert")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.commissions = append(r.s.commissions, *payment)
	return nil
}

type SupplierRepository struct{ s *Store }

func (r *SupplierRepository) FindAll(context.Context) ([]entity.Supplier, error) {
	unlock, err := r.s.read()
	if err != nil {
		return nil, err
	}
	defer unlock()
	return append([]entity.Supplier(nil), r.s.suppliers...), nil
}

func (r *SupplierRepository) Insert(_ context.Context, suppliers ...entity.Supplier) error {
	unlock, err := r.s.write("suppliers.insert")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.suppliers = append(r.s.suppliers, suppliers...)
	return nil
}

func (r *SupplierRepository) Delete(_ context.Context, id string) error {
	unlock, err := r.s.write("suppliers.delete")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.suppliers = without(r.s.suppliers, func(s entity.Supplier) bool { return s.ID != id })
	return nil
}

func (r *SupplierRepository) DeleteAll(context.Context) error {
	unlock, err := r.s.write("suppliers.delete_all")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.suppliers = nil
	return nil
}

type SettingsRepository struct{ s *Store }

func (r *SettingsRepository) Get(_ context.Context, key string) (string, bool, error) {
	unlock, err := r.s.read()
	if err != nil {
		return "", false, err
	}
	defer unlock()
	v, ok := r.s.settings[key]
	return v, ok, nil
}

func (r *SettingsRepository) Put(_ context.Context, key, value string) error {
	unlock, err := r.s.write("settings.put")
	if err != nil {
		return err
	}
	defer unlock()
	r.s.settings[key] = value
	return nil
}

// Cache is an in-process LocalCache.
type Cache struct {
	mu      sync.Mutex
	entries map[string]string
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string]string)}
}

func (c *Cache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *Cache) Set(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}
