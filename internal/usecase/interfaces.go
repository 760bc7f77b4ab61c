package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/xavierca1/imersao-crm/internal/entity"
)

// Repositories groups the hosted-store tables the manager mirrors to.
type Repositories struct {
	Leads        entity.LeadRepositoryInterface
	Transactions entity.TransactionRepositoryInterface
	Team         entity.TeamRepositoryInterface
	Classes      entity.ClassRepositoryInterface
	Knowledge    entity.KnowledgeRepositoryInterface
	History      entity.HistoryRepositoryInterface
	Commissions  entity.CommissionRepositoryInterface
	Suppliers    entity.SupplierRepositoryInterface
	Settings     entity.SettingsRepositoryInterface
}

// LocalCache is the key/value fallback, one JSON document per collection.
type LocalCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type ChangePublisher interface {
	PublishLeadChange(ctx context.Context, change LeadChange) error
}

type ReassignmentNotifier interface {
	NotifyReassignment(ctx context.Context, seller entity.TeamMember, lead entity.Lead, previousOwner string) error
}

type SheetFetcher interface {
	FetchLeadRows(ctx context.Context, url string) ([]ImportRow, error)
	FetchSupplierRows(ctx context.Context, url string) ([]SupplierRow, error)
	FetchDocument(ctx context.Context, url string) (string, error)
}

type MetricsRecorder interface {
	StatusChanged(to entity.LeadStatus)
	LeadsReassigned(n int)
	LeadsImported(n int)
	TransactionRecorded(txType entity.TransactionType, amount decimal.Decimal)
	CommissionPaid(amount decimal.Decimal)
	RemoteWriteFailed(operation string)
}

type noopMetrics struct{}

func (noopMetrics) StatusChanged(entity.LeadStatus) {}
func (noopMetrics) LeadsReassigned(int) {}
func (noopMetrics) LeadsImported(int) {}
func (noopMetrics) TransactionRecorded(entity.TransactionType, decimal.Decimal) {}
func (noopMetrics) CommissionPaid(decimal.Decimal) {}
func (noopMetrics) RemoteWriteFailed(string) {}
