package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

// Turmas

func (m *LeadManager) Classes() []entity.ImmersiveClass {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.ImmersiveClass(nil), m.classes...)
}

func (m *LeadManager) AddClass(ctx context.Context, in ClassInput) (entity.ImmersiveClass, error) {
	if err := validationFailure(Validate(in)); err != nil {
		return entity.ImmersiveClass{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	class := entity.NewImmersiveClass(in.City, in.Date, in.Immersion)
	m.classes = append(m.classes, *class)
	saved := *class
	m.writer.Enqueue(Operation{
		Name: "immersive_classes.insert",
		Fn:   func(ctx context.Context) error { return m.repos.Classes.Insert(ctx, &saved) },
	})
	m.mirror(ctx, cacheKeyClasses)
	return *class, nil
}

// UpdateClass renames a class in place. Leads keep pointing at it by id.
func (m *LeadManager) UpdateClass(ctx context.Context, id string, in ClassInput) (entity.ImmersiveClass, error) {
	if err := validationFailure(Validate(in)); err != nil {
		return entity.ImmersiveClass{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	class := m.class(id)
	if class == nil {
		return entity.ImmersiveClass{}, domainError("CLASS_NOT_FOUND", entity.ErrClassNotFound)
	}
	class.City = strings.TrimSpace(in.City)
	class.Date = strings.TrimSpace(in.Date)
	class.Immersion = strings.TrimSpace(in.Immersion)

	saved := *class
	m.writer.Enqueue(Operation{
		Name: "immersive_classes.update",
		Fn:   func(ctx context.Context) error { return m.repos.Classes.Update(ctx, &saved) },
	})
	m.mirror(ctx, cacheKeyClasses)
	return saved, nil
}

func (m *LeadManager) RemoveClass(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.classes {
		if m.classes[i].ID != id {
			continue
		}
		m.classes = append(m.classes[:i], m.classes[i+1:]...)
		m.writer.Enqueue(Operation{
			Name: "immersive_classes.delete",
			Fn:   func(ctx context.Context) error { return m.repos.Classes.Delete(ctx, id) },
		})
		m.mirror(ctx, cacheKeyClasses)
		return nil
	}
	return domainError("CLASS_NOT_FOUND", entity.ErrClassNotFound)
}

// ClassStudents lists the leads that bought a seat in the class (SINAL or GANHO).
func (m *LeadManager) ClassStudents(classID string, viewer *entity.TeamMember) ([]entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.class(classID) == nil {
		return nil, domainError("CLASS_NOT_FOUND", entity.ErrClassNotFound)
	}

	var out []entity.Lead
	for i := range m.leads {
		lead := &m.leads[i]
		if lead.ClassID != classID {
			continue
		}
		if lead.Status != entity.StatusGanho && lead.Status != entity.StatusSinal {
			continue
		}
		if viewer != nil && !viewer.CanSee(lead) {
			continue
		}
		out = append(out, lead.Clone())
	}
	return out, nil
}

// Base de conhecimento

func (m *LeadManager) KnowledgeItems() []entity.KnowledgeItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.KnowledgeItem(nil), m.knowledge...)
}

func (m *LeadManager) AddKnowledgeItem(ctx context.Context, in KnowledgeInput) (entity.KnowledgeItem, error) {
	if err := validationFailure(Validate(in)); err != nil {
		return entity.KnowledgeItem{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item := entity.KnowledgeItem{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(in.Title),
		Content:   in.Content,
		Type:      in.Type,
		Category:  strings.TrimSpace(in.Category),
		Link:      strings.TrimSpace(in.Link),
		SyncURL:   strings.TrimSpace(in.SyncURL),
		UpdatedAt: m.now(),
	}
	m.knowledge = append([]entity.KnowledgeItem{item}, m.knowledge...)
	m.writer.Enqueue(Operation{
		Name: "knowledge_items.insert",
		Fn:   func(ctx context.Context) error { return m.repos.Knowledge.Insert(ctx, &item) },
	})
	m.mirror(ctx, cacheKeyKnowledge)
	return item, nil
}

func (m *LeadManager) RemoveKnowledgeItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.knowledge {
		if m.knowledge[i].ID != id {
			continue
		}
		m.knowledge = append(m.knowledge[:i], m.knowledge[i+1:]...)
		m.writer.Enqueue(Operation{
			Name: "knowledge_items.delete",
			Fn:   func(ctx context.Context) error { return m.repos.Knowledge.Delete(ctx, id) },
		})
		m.mirror(ctx, cacheKeyKnowledge)
		return nil
	}
	return domainError("KNOWLEDGE_NOT_FOUND", entity.ErrKnowledgeNotFound)
}

// SyncKnowledgeItem replaces the item content with the current text of its linked document.
func (m *LeadManager) SyncKnowledgeItem(ctx context.Context, id string) (entity.KnowledgeItem, error) {
	m.mu.Lock()
	var source string
	found := false
	for _, k := range m.knowledge {
		if k.ID == id {
			found = true
			source = k.SyncURL
			if source == "" {
				source = k.Link
			}
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return entity.KnowledgeItem{}, domainError("KNOWLEDGE_NOT_FOUND", entity.ErrKnowledgeNotFound)
	}
	if source == "" {
		return entity.KnowledgeItem{}, domainError("NO_SYNC_URL", entity.ErrNoSyncURL)
	}
	if m.sheets == nil {
		return entity.KnowledgeItem{}, &TechnicalError{Code: "SHEETS_UNAVAILABLE", Message: "Sincronização de documentos não configurada"}
	}

	content, err := m.sheets.FetchDocument(ctx, source)
	if err != nil {
		log.Printf("❌ Erro ao sincronizar documento %s: %v", source, err)
		return entity.KnowledgeItem{}, &TechnicalError{
			Code:    "DOCUMENT_FETCH_FAILED",
			Message: "Não foi possível ler o documento. Verifique se o link está público.",
			Err:     err,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.knowledge {
		if m.knowledge[i].ID != id {
			continue
		}
		m.knowledge[i].Content = content
		m.knowledge[i].UpdatedAt = m.now()
		saved := m.knowledge[i]
		m.writer.Enqueue(Operation{
			Name: "knowledge_items.update",
			Fn:   func(ctx context.Context) error { return m.repos.Knowledge.Update(ctx, &saved) },
		})
		m.mirror(ctx, cacheKeyKnowledge)
		return saved, nil
	}
	// Removido enquanto o documento era baixado.
	return entity.KnowledgeItem{}, domainError("KNOWLEDGE_NOT_FOUND", entity.ErrKnowledgeNotFound)
}

// Fornecedores

func (m *LeadManager) Suppliers() []entity.Supplier {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Supplier(nil), m.suppliers...)
}

func (m *LeadManager) SuppliersSyncURL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.suppliersSyncURL
}

func (m *LeadManager) AddSupplier(ctx context.Context, in SupplierInput) (entity.Supplier, error) {
	if err := validationFailure(Validate(in)); err != nil {
		return entity.Supplier{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	supplier := newSupplier(in.Name, in.Phone, in.Category, m.now())
	supplier.Price = in.Price
	m.suppliers = append(m.suppliers, supplier)
	m.writer.Enqueue(Operation{
		Name: "suppliers.insert",
		Fn:   func(ctx context.Context) error { return m.repos.Suppliers.Insert(ctx, supplier) },
	})
	m.mirror(ctx, cacheKeySuppliers)
	return supplier, nil
}

func (m *LeadManager) RemoveSupplier(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.suppliers {
		if m.suppliers[i].ID != id {
			continue
		}
		m.suppliers = append(m.suppliers[:i], m.suppliers[i+1:]...)
		m.writer.Enqueue(Operation{
			Name: "suppliers.delete",
			Fn:   func(ctx context.Context) error { return m.repos.Suppliers.Delete(ctx, id) },
		})
		m.mirror(ctx, cacheKeySuppliers)
		return nil
	}
	return domainError("SUPPLIER_NOT_FOUND", entity.ErrSupplierNotFound)
}

// SyncSuppliers replaces the supplier list with the rows of a shared spreadsheet.
// An empty url repeats the last one.
func (m *LeadManager) SyncSuppliers(ctx context.Context, url string) ([]entity.Supplier, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		url = m.SuppliersSyncURL()
	}
	if url == "" {
		return nil, domainError("NO_SYNC_URL", entity.ErrNoSyncURL)
	}
	if m.sheets == nil {
		return nil, &TechnicalError{Code: "SHEETS_UNAVAILABLE", Message: "Importação por planilha não configurada"}
	}

	rows, err := m.sheets.FetchSupplierRows(ctx, url)
	if err != nil {
		log.Printf("❌ Erro ao buscar fornecedores em %s: %v", url, err)
		return nil, &TechnicalError{
			Code:    "SHEET_FETCH_FAILED",
			Message: "Não foi possível ler a planilha de fornecedores. Verifique se o link está público.",
			Err:     err,
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	suppliers := make([]entity.Supplier, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		s := newSupplier(row.Name, row.Phone, row.Category, now)
		s.Price = row.Price
		suppliers = append(suppliers, s)
	}

	m.suppliers = suppliers
	m.suppliersSyncURL = url
	replaced := append([]entity.Supplier(nil), suppliers...)
	m.writer.Enqueue(
		Operation{Name: "suppliers.delete_all", Fn: m.repos.Suppliers.DeleteAll},
		Operation{
			Name: "suppliers.insert",
			Fn: func(ctx context.Context) error {
				if len(replaced) == 0 {
					return nil
				}
				return m.repos.Suppliers.Insert(ctx, replaced...)
			},
		},
		Operation{
			Name: "settings.put",
			Fn: func(ctx context.Context) error {
				return m.repos.Settings.Put(ctx, entity.SettingSuppliersSyncURL, url)
			},
		},
	)
	m.mirror(ctx, cacheKeySuppliers, cacheKeySuppliersSyncURL)

	log.Printf("✅ %d fornecedor(es) sincronizado(s)", len(suppliers))
	return append([]entity.Supplier(nil), suppliers...), nil
}

func newSupplier(name, phone, category string, now time.Time) entity.Supplier {
	return entity.Supplier{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Phone:     strings.TrimSpace(phone),
		Category:  strings.TrimSpace(category),
		CreatedAt: now,
	}
}
