package entity

import "context"

// Ports for the hosted store. Every table gets plain CRUD filtered by id.

type LeadRepositoryInterface interface {
	FindAll(ctx context.Context) ([]Lead, error)
	Insert(ctx context.Context, leads ...Lead) error
	Update(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, ids []string) error
	DeleteAll(ctx context.Context) error
}

type TransactionRepositoryInterface interface {
	FindAll(ctx context.Context) ([]Transaction, error)
	Insert(ctx context.Context, txs ...Transaction) error
}

type TeamRepositoryInterface interface {
	FindAll(ctx context.Context) ([]TeamMember, error)
	Insert(ctx context.Context, member *TeamMember) error
	Delete(ctx context.Context, id string) error
}

type ClassRepositoryInterface interface {
	FindAll(ctx context.Context) ([]ImmersiveClass, error)
	Insert(ctx context.Context, class *ImmersiveClass) error
	Update(ctx context.Context, class *ImmersiveClass) error
	Delete(ctx context.Context, id string) error
}

type KnowledgeRepositoryInterface interface {
	FindAll(ctx context.Context) ([]KnowledgeItem, error)
	Insert(ctx context.Context, item *KnowledgeItem) error
	Update(ctx context.Context, item *KnowledgeItem) error
	Delete(ctx context.Context, id string) error
}

type HistoryRepositoryInterface interface {
	FindAll(ctx context.Context) ([]LeadHistoryEntry, error)
	Insert(ctx context.Context, entries ...LeadHistoryEntry) error
}

type CommissionRepositoryInterface interface {
	FindAll(ctx context.Context) ([]CommissionPayment, error)
	Insert(ctx context.Context, payment *CommissionPayment) error
}

type SupplierRepositoryInterface interface {
	FindAll(ctx context.Context) ([]Supplier, error)
	Insert(ctx context.Context, suppliers ...Supplier) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
}

type SettingsRepositoryInterface interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}
