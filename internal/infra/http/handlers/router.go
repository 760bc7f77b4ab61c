package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xavierca1/imersao-crm/internal/infra/http/middleware"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type RouterConfig struct {
	Manager       *usecase.LeadManager
	Issuer        *middleware.TokenIssuer
	Health        *HealthHandler
	WebhookSecret string
	CORSOrigins   []string
	Location      *time.Location
}

func NewRouter(cfg RouterConfig) http.Handler {
	auth := NewAuthHandler(cfg.Manager, cfg.Issuer)
	leads := NewLeadHandler(cfg.Manager)
	imports := NewImportHandler(cfg.Manager)
	finance := NewFinanceHandler(cfg.Manager, cfg.Location)
	team := NewTeamHandler(cfg.Manager)
	catalog := NewCatalogHandler(cfg.Manager)
	realtime := NewRealtimeHandler(cfg.Manager, cfg.WebhookSecret)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Signature"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Públicas
	if cfg.Health != nil {
		r.Get("/health", cfg.Health.Handle)
	}
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/login", auth.Login)
	r.Post("/realtime/leads", realtime.Handle)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Issuer, cfg.Manager))

		r.Get("/auth/me", auth.Me)
		r.Get("/notifications", leads.Notifications)
		r.Get("/history", leads.History)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", leads.List)
			r.Post("/", leads.Create)
			r.Get("/{id}", leads.Get)
			r.Get("/{id}/history", leads.LeadHistory)
			r.Post("/{id}/status", leads.ChangeStatus)
			r.Post("/{id}/settle", leads.SettleDownPayment)
			r.Put("/{id}/follow-up", leads.UpdateFollowUp)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/reassign", leads.Reassign)
				r.Post("/bulk-delete", leads.BulkDelete)
				r.Delete("/", leads.Clear)
				r.Post("/import", imports.Import)
				r.Post("/import/preview", imports.Preview)
				r.Post("/import/sync", imports.Sync)
				r.Get("/import/last", imports.LastSync)
			})
		})

		r.Get("/commissions", finance.Commissions)
		r.Get("/commissions/payments", finance.CommissionPayments)
		r.Get("/team/sellers", team.Sellers)
		r.Get("/classes", catalog.Classes)
		r.Get("/classes/{id}/students", catalog.ClassStudents)
		r.Get("/knowledge", catalog.KnowledgeItems)
		r.Get("/suppliers", catalog.Suppliers)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/transactions", finance.Transactions)
			r.Post("/transactions", finance.AddTransaction)
			r.Get("/dashboard", finance.Dashboard)
			r.Get("/sales-analysis", finance.SalesAnalysis)
			r.Post("/commissions/{sellerId}/pay", finance.PayCommission)

			r.Get("/team", team.List)
			r.Post("/team", team.Add)
			r.Delete("/team/{id}", team.Remove)

			r.Post("/classes", catalog.AddClass)
			r.Put("/classes/{id}", catalog.UpdateClass)
			r.Delete("/classes/{id}", catalog.RemoveClass)

			r.Post("/knowledge", catalog.AddKnowledgeItem)
			r.Delete("/knowledge/{id}", catalog.RemoveKnowledgeItem)
			r.Post("/knowledge/{id}/sync", catalog.SyncKnowledgeItem)

			r.Post("/suppliers", catalog.AddSupplier)
			r.Delete("/suppliers/{id}", catalog.RemoveSupplier)
			r.Post("/suppliers/sync", catalog.SyncSuppliers)
		})
	})

	return r
}
