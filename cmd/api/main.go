package main

import (
	"context"
	"log"
	"time"

	"wcbsale/internal/api"
	"wcbsale/internal/audit"
	"wcbsale/internal/bsale"
	"wcbsale/internal/config"
	"wcbsale/internal/database"
	"wcbsale/internal/logger"
	"wcbsale/internal/store"
	syncengine "wcbsale/internal/sync"

	"github.com/segmentio/kafka-go"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Load sync settings
	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		logger.Fatal("Failed to load settings:", err)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Fatal("Invalid timezone:", err)
	}

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	// Initialize operation log store
	auditStore, err := audit.NewStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to open operation log store:", err)
	}
	defer auditStore.Close()

	// Initialize Bsale client
	client := bsale.NewClient(settings.Main.AccessToken, settings.Main.ProductIdentifier, logger)
	client.SetBaseURL(cfg.BsaleAPIURL)

	catalog := store.NewCatalog(db.DB)
	orders := store.NewOrders(db.DB)

	// Sync components, each reporting into the operation log
	reconciler := syncengine.NewStockReconciler(client, catalog, settings.Stock, logger)
	reconciler.AddObserver(auditStore)

	cronRunner := syncengine.NewCronRunner(client, catalog, settings.Stock, settings.Cron, logger)
	cronRunner.AddObserver(auditStore)

	invoices := syncengine.NewInvoiceGenerator(client, orders, settings.Invoice, location, logger)
	invoices.AddObserver(auditStore)

	// Order events go through Kafka to the worker
	orderWriter := &kafka.Writer{
		Addr:     kafka.TCP(cfg.KafkaBrokers),
		Topic:    cfg.OrderTopic,
		Balancer: &kafka.LeastBytes{},
	}
	defer orderWriter.Close()

	// In schedule mode the catalog sync runs on its own daily timer instead
	// of waiting for the external trigger.
	if settings.Cron.Enabled && settings.Cron.Mode == "schedule" {
		go cronRunner.RunDaily(context.Background(), location)
	}

	// Initialize API server
	server := api.New(cfg, logger, api.Deps{
		Settings:    settings,
		Reconciler:  reconciler,
		CronRunner:  cronRunner,
		Invoices:    invoices,
		AuditStore:  auditStore,
		OrderWriter: orderWriter,
	})

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server:", err)
	}
}
