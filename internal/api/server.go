package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"wcbsale/internal/api/handlers"
	"wcbsale/internal/api/middleware"
	"wcbsale/internal/audit"
	"wcbsale/internal/config"
	"wcbsale/internal/logger"
	syncengine "wcbsale/internal/sync"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

// Deps carries the wired components the handlers need.
type Deps struct {
	Settings    *config.Settings
	Reconciler  *syncengine.StockReconciler
	CronRunner  *syncengine.CronRunner
	Invoices    *syncengine.InvoiceGenerator
	AuditStore  *audit.Store
	OrderWriter *kafka.Writer
}

func New(cfg *config.Config, logger *logger.Logger, deps Deps) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	stockHandler := handlers.NewStockHandler(deps.Reconciler, logger)
	cronHandler := handlers.NewCronHandler(deps.CronRunner, deps.Settings.Cron.SecretKey, logger)
	orderHandler := handlers.NewOrderHandler(deps.OrderWriter, deps.Invoices, logger)
	logHandler := handlers.NewLogHandler(deps.AuditStore, logger)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Storefront stock sync
		sync := v1.Group("/sync")
		{
			sync.POST("/cart", stockHandler.CartAdd)
			sync.POST("/checkout", stockHandler.Checkout)
		}

		// Admin stock check
		products := v1.Group("/products")
		{
			products.POST("/:id/stock-check", stockHandler.AdminCheck)
		}

		// Catalog sync trigger
		cron := v1.Group("/cron")
		{
			cron.GET("/run", cronHandler.Run)
		}

		// Orders
		orders := v1.Group("/orders")
		{
			orders.POST("/events", orderHandler.Event)
			orders.POST("/:id/invoice", orderHandler.Invoice)
		}

		// Operation log
		logs := v1.Group("/logs")
		{
			logs.GET("", logHandler.List)
			logs.DELETE("", logHandler.Clear)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}
