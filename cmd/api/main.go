package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/imersao-crm/internal/config"
	"github.com/xavierca1/imersao-crm/internal/infra/cache"
	"github.com/xavierca1/imersao-crm/internal/infra/database"
	"github.com/xavierca1/imersao-crm/internal/infra/http/handlers"
	"github.com/xavierca1/imersao-crm/internal/infra/http/middleware"
	"github.com/xavierca1/imersao-crm/internal/infra/integration/whatsapp"
	"github.com/xavierca1/imersao-crm/internal/infra/kafka"
	"github.com/xavierca1/imersao-crm/internal/infra/mail"
	"github.com/xavierca1/imersao-crm/internal/infra/memory"
	"github.com/xavierca1/imersao-crm/internal/infra/queue"
	"github.com/xavierca1/imersao-crm/internal/infra/sheets"
	"github.com/xavierca1/imersao-crm/internal/infra/worker"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Banco hospedado (opcional) e cache local
	var (
		db    *sql.DB
		repos usecase.Repositories
	)
	if !cfg.Offline() {
		db, err = database.NewDBConnection(cfg.Database.URL)
		if err != nil {
			log.Printf("⚠️ %v", err)
			db = nil
		}
	}
	if db != nil {
		defer db.Close()
		if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
			log.Fatalf("❌ Erro nas migrations: %v", err)
		}
		repos = remoteRepositories(db)
	} else {
		log.Println("⚠️ Banco remoto indisponível: rodando apenas com o cache local")
		repos = memoryRepositories(memory.NewStore())
	}

	localCache, err := cache.Open(cfg.CachePath)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer localCache.Close()

	// 2. Notificações de realocação
	emailSender := mail.NewEmailSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password, cfg.Mail.From)
	var whatsAppSender *mail.WhatsAppSender
	if waClient := whatsapp.NewClient(cfg.WhatsApp.AccessToken, cfg.WhatsApp.PhoneID, cfg.WhatsApp.BaseURL); waClient.Configured() {
		whatsAppSender = mail.NewWhatsAppSender(waClient, cfg.WhatsApp.Template)
	}

	metrics := middleware.NewRecorder()
	opts := []usecase.Option{
		usecase.WithNotifier(mail.NewNotifier(emailSender, whatsAppSender)),
		usecase.WithSheetFetcher(sheets.NewFetcher(cfg.SheetsTimeout)),
		usecase.WithMetrics(metrics),
		usecase.WithStaleThreshold(cfg.StaleThreshold),
		usecase.WithBootstrapAdmin(usecase.AdminSeed{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}),
	}

	// 3. Change feed entre instâncias
	host := hostName()
	instanceID := host + "-" + uuidSuffix()
	opts = append(opts, usecase.WithOrigin(instanceID))

	var (
		rabbitMQ        *queue.RabbitMQ
		kafkaPublisher  *kafka.Publisher
		startChangeFeed func(ctx context.Context, manager *usecase.LeadManager)
	)
	switch cfg.Driver {
	case config.ChangeFeedRabbitMQ:
		rabbitMQ, err = queue.NewRabbitMQ(cfg.RabbitMQURL, instanceID)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer rabbitMQ.Close()

		opts = append(opts, usecase.WithPublisher(queue.NewProducer(rabbitMQ.Ch)))
		startChangeFeed = func(ctx context.Context, manager *usecase.LeadManager) {
			if err := queue.NewWorker(rabbitMQ.Ch, manager).Start(ctx, rabbitMQ.QueueName); err != nil {
				log.Printf("❌ Consumidor RabbitMQ parou: %v", err)
			}
		}
	case config.ChangeFeedKafka:
		kafkaPublisher = kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()

		opts = append(opts, usecase.WithPublisher(kafkaPublisher))
		startChangeFeed = func(ctx context.Context, manager *usecase.LeadManager) {
			if err := kafka.NewSubscriber(cfg.KafkaBrokers, cfg.KafkaTopic, kafka.GroupID(cfg.KafkaGroupID, host), manager).Start(ctx); err != nil {
				log.Printf("❌ Consumidor Kafka parou: %v", err)
			}
		}
	}

	// 4. Estado
	manager := usecase.NewLeadManager(repos, localCache, opts...)
	if err := manager.Load(ctx); err != nil {
		log.Fatalf("❌ Erro ao carregar estado: %v", err)
	}

	// 5. Workers
	if startChangeFeed != nil {
		go startChangeFeed(ctx, manager)
	}
	go worker.NewReassignmentWorker(manager, cfg.Sweep.Interval).Start(ctx)

	// 6. HTTP
	var amqpConn *amqp091.Connection
	if rabbitMQ != nil {
		amqpConn = rabbitMQ.Conn
	}
	health := handlers.NewHealthHandler(db, amqpConn, map[string]handlers.HealthCheck{
		"cache": localCache.Ping,
	})

	router := handlers.NewRouter(handlers.RouterConfig{
		Manager:       manager,
		Issuer:        middleware.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		Health:        health,
		WebhookSecret: cfg.WebhookSecret,
		CORSOrigins:   cfg.CORSOrigins,
		Location:      cfg.Location(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🔥 Imersão CRM rodando na porta %s (instância %s)", cfg.Port, instanceID)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Erro no servidor HTTP: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("⚠️ Encerrando...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Erro ao encerrar HTTP: %v", err)
	}
	if err := manager.Flush(shutdownCtx); err != nil {
		log.Printf("⚠️ Escritas remotas pendentes não concluídas: %v", err)
	}
	log.Println("✅ Servidor encerrado")
}

func remoteRepositories(db *sql.DB) usecase.Repositories {
	return usecase.Repositories{
		Leads:        database.NewLeadRepository(db),
		Transactions: database.NewTransactionRepository(db),
		Team:         database.NewTeamRepository(db),
		Classes:      database.NewClassRepository(db),
		Knowledge:    database.NewKnowledgeRepository(db),
		History:      database.NewHistoryRepository(db),
		Commissions:  database.NewCommissionRepository(db),
		Suppliers:    database.NewSupplierRepository(db),
		Settings:     database.NewSettingsRepository(db),
	}
}

func memoryRepositories(store *memory.Store) usecase.Repositories {
	return usecase.Repositories{
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
}

func hostName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "crm"
	}
	return host
}
