package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/retail-platform/sales-service/pkg/api"
	"github.com/retail-platform/sales-service/pkg/errors"
	"github.com/retail-platform/sales-service/pkg/idempotency"
	"github.com/retail-platform/sales-service/pkg/kafka"
	"github.com/retail-platform/sales-service/pkg/logging"
	"github.com/retail-platform/sales-service/pkg/metrics"
	"github.com/retail-platform/sales-service/pkg/middleware"
	"github.com/retail-platform/sales-service/pkg/mongodb"
	"github.com/retail-platform/sales-service/pkg/outbox"
	"github.com/retail-platform/sales-service/pkg/tracing"

	"github.com/retail-platform/sales-service/internal/application"
	"github.com/retail-platform/sales-service/internal/domain"
	mongoRepo "github.com/retail-platform/sales-service/internal/infrastructure/mongodb"
	"github.com/retail-platform/sales-service/internal/infrastructure/receipts"
)

const serviceName = "sales-service"

func main() {
	// Setup enhanced logger
	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting sales-service API")

	// Load configuration
	config := loadConfig()
	ctx := context.Background()

	// Initialize OpenTelemetry tracing
	tracingConfig := tracing.DefaultConfig(serviceName)
	tracingConfig.OTLPEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	tracingConfig.Environment = getEnv("ENVIRONMENT", "development")
	tracingConfig.Enabled = getEnv("TRACING_ENABLED", "true") == "true"

	tracerProvider, err := tracing.Initialize(ctx, tracingConfig)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize tracing")
		// Continue without tracing - don't exit
	} else if tracerProvider != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				logger.WithError(err).Error("Failed to shutdown tracer")
			}
		}()
		logger.Info("Tracing initialized", "endpoint", tracingConfig.OTLPEndpoint)
	}

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB with instrumentation and circuit breaker protection
	mongoClient, err := mongodb.NewProductionClient(ctx, config.MongoDB, m, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize idempotency indexes
	if err := idempotency.InitializeIndexes(ctx, mongoClient.Database()); err != nil {
		logger.WithError(err).Warn("Failed to initialize idempotency indexes")
	}

	// Initialize Kafka producer with instrumentation
	kafkaProducer := kafka.NewProducer(config.Kafka)
	var tracer trace.Tracer
	if tracerProvider != nil {
		tracer = tracerProvider.Tracer()
	}
	instrumentedProducer := kafka.NewInstrumentedProducer(kafkaProducer, logger, m, tracer)
	defer instrumentedProducer.Close()
	logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)

	// Wire repositories and the transactional unit of work
	db := mongoClient.Database()
	uow := mongoRepo.NewUnitOfWork(db)
	repos := uow.Repositories()
	catalog := mongoRepo.NewProductCatalog(db)
	receiptService := receipts.NewService(config.ReceiptBaseURL)

	// Start the outbox publisher draining committed events to Kafka
	outboxPublisher := outbox.NewPublisher(
		repos.Outbox,
		instrumentedProducer,
		logger,
		m,
		&outbox.PublisherConfig{
			PollInterval: 1 * time.Second,
			BatchSize:    100,
		},
	)
	if err := outboxPublisher.Start(ctx); err != nil {
		logger.WithError(err).Error("Failed to start outbox publisher")
		os.Exit(1)
	}
	defer outboxPublisher.Stop()
	logger.Info("Outbox publisher started")

	// Application services
	cartValidator := application.NewCartValidator(catalog, repos.Ledgers)
	saleService := application.NewSaleApplicationService(cartValidator, uow, repos.Sales, receiptService, m, logger)
	inventoryService := application.NewInventoryApplicationService(uow, repos.Ledgers, repos.Movements, logger)

	// Setup Gin router with middleware
	router := gin.New()

	middlewareConfig := middleware.DefaultConfig(serviceName, logger.Logger)
	middleware.Setup(router, middlewareConfig)

	router.Use(middleware.MetricsMiddleware(m))
	router.Use(middleware.SimpleTracingMiddleware(serviceName))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	// Health check endpoints
	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))

	// Metrics endpoint
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// Idempotency middleware guards the sale commit against client retries
	keyRepository := idempotency.NewMongoKeyRepository(db)
	idempotencyConfig := idempotency.DefaultConfig(serviceName, keyRepository)
	idempotencyConfig.Metrics = idempotency.NewMetrics(m.Registry())

	api := router.Group("/api/v1")

	sales := api.Group("/sales")
	sales.Use(idempotency.Middleware(idempotencyConfig))
	{
		sales.POST("", commitSaleHandler(saleService, keyRepository, logger))
		sales.GET("", listSalesHandler(saleService, logger))
		sales.GET("/:transactionId", getSaleHandler(saleService, logger))
	}

	inventory := api.Group("/inventory")
	{
		inventory.POST("/transfer", transferStockHandler(inventoryService, logger))

		inventory.GET("/:storeId", listLedgersHandler(inventoryService, logger))
		inventory.GET("/:storeId/low-stock", stockStatusHandler(inventoryService.GetLowStock, logger))
		inventory.GET("/:storeId/out-of-stock", stockStatusHandler(inventoryService.GetOutOfStock, logger))
		inventory.GET("/:storeId/overstock", stockStatusHandler(inventoryService.GetOverstock, logger))

		inventory.GET("/:storeId/:productId", getLedgerHandler(inventoryService, logger))
		inventory.GET("/:storeId/:productId/movements", listMovementsHandler(inventoryService, logger))
		inventory.POST("/:storeId/:productId/receive", receiveStockHandler(inventoryService, logger))
		inventory.POST("/:storeId/:productId/adjust", adjustStockHandler(inventoryService, logger))
		inventory.PUT("/:storeId/:productId/thresholds", updateThresholdsHandler(inventoryService, logger))
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr     string
	ReceiptBaseURL string
	MongoDB        *mongodb.Config
	Kafka          *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8010"),
		ReceiptBaseURL: getEnv("RECEIPT_BASE_URL", "http://localhost:8011"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "sales_db"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: &kafka.Config{
			Brokers:      []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			ClientID:     serviceName,
			BatchSize:    100,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: -1,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// mapDomainError translates domain sentinel errors into the HTTP error
// taxonomy. Unknown errors stay internal.
func mapDomainError(err error) *errors.AppError {
	switch {
	case stderrors.Is(err, domain.ErrMalformedProductID),
		stderrors.Is(err, domain.ErrInvalidQuantity),
		stderrors.Is(err, domain.ErrInvalidMovementType),
		stderrors.Is(err, domain.ErrEmptyCart),
		stderrors.Is(err, domain.ErrInvalidAmount),
		stderrors.Is(err, domain.ErrInvalidCurrency),
		stderrors.Is(err, domain.ErrCurrencyMismatch),
		stderrors.Is(err, domain.ErrPriceMismatch),
		stderrors.Is(err, domain.ErrTotalMismatch):
		return errors.ErrValidation(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrProductNotFound),
		stderrors.Is(err, domain.ErrProductNotStocked),
		stderrors.Is(err, domain.ErrLedgerNotFound),
		stderrors.Is(err, domain.ErrSaleNotFound):
		return errors.ErrNotFound(err.Error()).Wrap(err)
	case stderrors.Is(err, domain.ErrInsufficientStock),
		stderrors.Is(err, domain.ErrStockUnderflow),
		stderrors.Is(err, domain.ErrConflict):
		return errors.ErrConflict(err.Error()).Wrap(err)
	default:
		return nil
	}
}

func respond(c *gin.Context, logger *logging.Logger, err error) {
	responder := middleware.NewErrorResponder(c, logger.Logger)
	if appErr := mapDomainError(err); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}
	responder.RespondInternalError(err)
}

func commitSaleHandler(service *application.SaleApplicationService, keys idempotency.KeyRepository, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			StoreID       string `json:"storeId" binding:"required"`
			StaffID       string `json:"staffId"`
			CustomerID    string `json:"customerId"`
			Currency      string `json:"currency"`
			TotalAmount   *int64 `json:"totalAmount" binding:"required"`
			Items         []struct {
				ProductID string `json:"productId" binding:"required"`
				Quantity  int    `json:"quantity" binding:"required"`
				UnitPrice int64  `json:"unitPrice"`
			} `json:"items" binding:"required,min=1"`
		}
		if appErr := api.BindAndValidate(c, &req); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}

		lines := make([]application.CartLineInput, len(req.Items))
		for i, item := range req.Items {
			lines[i] = application.CartLineInput{
				ProductID:      item.ProductID,
				Quantity:       item.Quantity,
				UnitPriceCents: item.UnitPrice,
			}
		}

		cmd := application.CommitSaleCommand{
			StoreID:            req.StoreID,
			StaffID:            req.StaffID,
			CustomerID:         req.CustomerID,
			Currency:           req.Currency,
			Lines:              lines,
			AssertedTotalCents: req.TotalAmount,
		}

		sale, err := service.CommitSale(c.Request.Context(), cmd)
		if err != nil {
			respond(c, logger, err)
			return
		}

		// The sale is durable here; checkpoint before the response is
		// cached so a keyed replay can tell a committed sale from a
		// fresh request.
		phases := idempotency.NewPhaseManager(c, keys)
		if err := phases.Checkpoint(c.Request.Context(), "sale_committed"); err != nil {
			logger.WithError(err).Warn("Failed to record sale commit checkpoint")
		}

		c.JSON(http.StatusCreated, sale)
	}
}

func getSaleHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := application.GetSaleQuery{TransactionID: c.Param("transactionId")}

		sale, err := service.GetSale(c.Request.Context(), query)
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, sale)
	}
}

func listSalesHandler(service *application.SaleApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID := c.Query("storeId")
		if storeID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "storeId is required"})
			return
		}
		page := api.ParsePagination(c)

		sales, err := service.ListSales(c.Request.Context(), application.ListSalesQuery{
			StoreID: storeID,
			Limit:   int(page.GetLimit()),
			Offset:  int(page.GetOffset()),
		})
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"sales": sales, "count": len(sales)})
	}
}

func receiveStockHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Quantity     int    `json:"quantity" binding:"required"`
			Reason       string `json:"reason"`
			Reference    string `json:"reference"`
			ReorderLevel int    `json:"reorderLevel"`
			MaxStock     int    `json:"maxStock"`
			PerformedBy  string `json:"performedBy" binding:"required"`
		}
		if appErr := api.BindAndValidate(c, &req); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}

		cmd := application.ReceiveStockCommand{
			StoreID:      c.Param("storeId"),
			ProductID:    c.Param("productId"),
			Quantity:     req.Quantity,
			Reason:       req.Reason,
			Reference:    req.Reference,
			ReorderLevel: req.ReorderLevel,
			MaxStock:     req.MaxStock,
			PerformedBy:  req.PerformedBy,
		}

		ledger, err := service.ReceiveStock(c.Request.Context(), cmd)
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, ledger)
	}
}

func adjustStockHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			NewQuantity *int   `json:"newQuantity" binding:"required"`
			Reason      string `json:"reason"`
			Reference   string `json:"reference"`
			PerformedBy string `json:"performedBy" binding:"required"`
		}
		if appErr := api.BindAndValidate(c, &req); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}

		cmd := application.AdjustStockCommand{
			StoreID:     c.Param("storeId"),
			ProductID:   c.Param("productId"),
			NewQuantity: *req.NewQuantity,
			Reason:      req.Reason,
			Reference:   req.Reference,
			PerformedBy: req.PerformedBy,
		}

		ledger, err := service.AdjustStock(c.Request.Context(), cmd)
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, ledger)
	}
}

func transferStockHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			FromStoreID string `json:"fromStoreId" binding:"required"`
			ToStoreID   string `json:"toStoreId" binding:"required"`
			ProductID   string `json:"productId" binding:"required"`
			Quantity    int    `json:"quantity" binding:"required"`
			PerformedBy string `json:"performedBy" binding:"required"`
		}
		if appErr := api.BindAndValidate(c, &req); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}

		cmd := application.TransferStockCommand{
			FromStoreID: req.FromStoreID,
			ToStoreID:   req.ToStoreID,
			ProductID:   req.ProductID,
			Quantity:    req.Quantity,
			PerformedBy: req.PerformedBy,
		}

		ledger, err := service.TransferStock(c.Request.Context(), cmd)
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, ledger)
	}
}

func updateThresholdsHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			ReorderLevel int    `json:"reorderLevel" binding:"required"`
			MaxStock     int    `json:"maxStock" binding:"required"`
			PerformedBy  string `json:"performedBy" binding:"required"`
		}
		if appErr := api.BindAndValidate(c, &req); appErr != nil {
			middleware.NewErrorResponder(c, logger.Logger).RespondWithAppError(appErr)
			return
		}

		cmd := application.UpdateThresholdsCommand{
			StoreID:      c.Param("storeId"),
			ProductID:    c.Param("productId"),
			ReorderLevel: req.ReorderLevel,
			MaxStock:     req.MaxStock,
			PerformedBy:  req.PerformedBy,
		}

		ledger, err := service.UpdateThresholds(c.Request.Context(), cmd)
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, ledger)
	}
}

func getLedgerHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := application.GetLedgerQuery{
			StoreID:   c.Param("storeId"),
			ProductID: c.Param("productId"),
		}

		ledger, err := service.GetLedger(c.Request.Context(), query)
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, ledger)
	}
}

func listLedgersHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := api.ParsePagination(c)

		ledgers, err := service.ListLedgers(c.Request.Context(), application.ListLedgersQuery{
			StoreID: c.Param("storeId"),
			Limit:   int(page.GetLimit()),
			Offset:  int(page.GetOffset()),
		})
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ledgers": ledgers, "count": len(ledgers)})
	}
}

func listMovementsHandler(service *application.InventoryApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		movements, err := service.ListMovements(c.Request.Context(), application.ListMovementsQuery{
			StoreID:   c.Param("storeId"),
			ProductID: c.Param("productId"),
			Limit:     limit,
		})
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"movements": movements, "count": len(movements)})
	}
}

// stockStatusHandler serves the low-stock / out-of-stock / overstock views
func stockStatusHandler(query func(ctx context.Context, storeID string) ([]application.LedgerDTO, error), logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ledgers, err := query(c.Request.Context(), c.Param("storeId"))
		if err != nil {
			respond(c, logger, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ledgers": ledgers, "count": len(ledgers)})
	}
}
