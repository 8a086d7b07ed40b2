package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wcbsale/internal/audit"
	"wcbsale/internal/bsale"
	"wcbsale/internal/config"
	"wcbsale/internal/database"
	"wcbsale/internal/logger"
	"wcbsale/internal/store"
	syncengine "wcbsale/internal/sync"
	"wcbsale/internal/worker"
	"wcbsale/internal/worker/processors"
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

	orders := store.NewOrders(db.DB)

	tracker := syncengine.NewStockConsumptionTracker(client, orders, settings.Stock, cfg.StoreName, logger)
	tracker.AddObserver(auditStore)

	invoices := syncengine.NewInvoiceGenerator(client, orders, settings.Invoice, location, logger)
	invoices.AddObserver(auditStore)

	processor := processors.NewEventProcessor(settings, logger, tracker, invoices)

	// Initialize worker
	w := worker.New(cfg, logger, processor)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}
