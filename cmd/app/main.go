package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch/cmd"
	httpin "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/in/http/openapi"
	kafkain "dispatch/internal/adapters/in/kafka"
	kafkaout "dispatch/internal/adapters/out/kafka"
	"dispatch/internal/adapters/out/ledger"
	"dispatch/internal/adapters/out/lognotify"
	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/proofstore"
	"dispatch/internal/adapters/out/redis"
	"dispatch/internal/core/ports"
	"dispatch/internal/jobs"
	"dispatch/internal/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: configs.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := gorm.Open(gormpostgres.Open(configs.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	if err = postgres.Migrate(gormDB); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	internalFeed := openLedger(ctx, configs, logger)

	proofStorage, err := proofstore.NewFileStore(configs.ProofDir, configs.ProofBaseURL)
	if err != nil {
		log.Fatalf("Error preparing proof storage: %v", err)
	}

	notifier, closeNotifier := newNotifier(configs, logger)
	defer closeNotifier()

	app, err := cmd.NewCompositionRoot(configs, gormDB, internalFeed, proofStorage, notifier, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}
	defer app.WaitNotifications()

	metrics.Register()

	lease, closeLease := newLease(configs, logger)
	defer closeLease()

	jobManager := jobs.NewJobManager(app.CreateSyncJob(lease))
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startVendorConsumer(ctx, configs, &app, logger)

	startWebServer(ctx, &app, configs, logger)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	notificationTimeout, err := cmd.ParseDuration("NOTIFICATION_TIMEOUT", os.Getenv("NOTIFICATION_TIMEOUT"), cmd.DefaultNotificationTimeout)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	storageTimeout, err := cmd.ParseDuration("STORAGE_TIMEOUT", os.Getenv("STORAGE_TIMEOUT"), cmd.DefaultStorageTimeout)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	config := cmd.Config{
		HTTPPort:                os.Getenv("HTTP_PORT"),
		DBHost:                  os.Getenv("DB_HOST"),
		DBPort:                  os.Getenv("DB_PORT"),
		DBUser:                  os.Getenv("DB_USER"),
		DBPassword:              os.Getenv("DB_PASSWORD"),
		DBName:                  os.Getenv("DB_NAME"),
		DBSslMode:               os.Getenv("DB_SSLMODE"),
		LedgerDSN:               os.Getenv("LEDGER_DSN"),
		LedgerTable:             os.Getenv("LEDGER_TABLE"),
		LedgerReadyStatus:       os.Getenv("LEDGER_READY_STATUS"),
		LedgerCanceledStatus:    os.Getenv("LEDGER_CANCELED_STATUS"),
		KafkaHost:               os.Getenv("KAFKA_HOST"),
		KafkaConsumerGroup:      os.Getenv("KAFKA_CONSUMER_GROUP"),
		KafkaVendorOrdersTopic:  os.Getenv("KAFKA_VENDOR_ORDERS_TOPIC"),
		KafkaNotificationsTopic: os.Getenv("KAFKA_NOTIFICATIONS_TOPIC"),
		RedisURL:                os.Getenv("REDIS_URL"),
		SyncSchedule:            getEnvOrDefault("SYNC_SCHEDULE", cmd.DefaultSyncSchedule),
		ProofDir:                getEnvOrDefault("PROOF_DIR", cmd.DefaultProofDir),
		ProofBaseURL:            os.Getenv("PROOF_BASE_URL"),
		NotificationTemplates:   os.Getenv("NOTIFICATION_TEMPLATES"),
		NotificationTimeout:     notificationTimeout,
		StorageTimeout:          storageTimeout,
		LogLevel:                os.Getenv("LOG_LEVEL"),
	}
	if config.ProofBaseURL == "" {
		config.ProofBaseURL = fmt.Sprintf("http://localhost:%s/proofs", config.HTTPPort)
	}
	return config
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// openLedger returns nil when no internal ledger is configured.
func openLedger(ctx context.Context, configs cmd.Config, logger *slog.Logger) ports.OrderFeed {
	if configs.LedgerDSN == "" {
		logger.Info("No LEDGER_DSN configured, internal intake disabled")
		return nil
	}
	db, err := ledger.Open(ctx, configs.LedgerDSN)
	if err != nil {
		log.Fatalf("Error connecting to order ledger: %v", err)
	}
	reader, err := ledger.NewReader(db, ledger.Config{
		Table:          configs.LedgerTable,
		ReadyStatus:    configs.LedgerReadyStatus,
		CanceledStatus: configs.LedgerCanceledStatus,
	})
	if err != nil {
		log.Fatalf("Invalid order ledger configuration: %v", err)
	}
	return reader
}

func newNotifier(configs cmd.Config, logger *slog.Logger) (ports.Notifier, func()) {
	brokers := configs.KafkaBrokers()
	if len(brokers) == 0 || configs.KafkaNotificationsTopic == "" {
		logger.Info("No Kafka notifications topic configured, notifications are logged only")
		return lognotify.NewNotifier(logger), func() {}
	}
	notifier, err := kafkaout.NewNotifier(brokers, configs.KafkaNotificationsTopic)
	if err != nil {
		log.Fatalf("Error creating Kafka notifier: %v", err)
	}
	return notifier, func() {
		if err := notifier.Close(); err != nil {
			logger.Error("Failed to close Kafka notifier", "error", err)
		}
	}
}

func newLease(configs cmd.Config, logger *slog.Logger) (ports.Lease, func()) {
	if configs.RedisURL == "" {
		return nil, func() {}
	}
	lease, err := redis.NewLease(configs.RedisURL)
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	return lease, func() {
		if err := lease.Close(); err != nil {
			logger.Error("Failed to close Redis client", "error", err)
		}
	}
}

func startVendorConsumer(ctx context.Context, configs cmd.Config, app *cmd.CompositionRoot, logger *slog.Logger) {
	brokers := configs.KafkaBrokers()
	if len(brokers) == 0 || configs.KafkaVendorOrdersTopic == "" {
		logger.Info("No Kafka vendor orders topic configured, vendor intake disabled")
		return
	}
	handler := app.CreateStageVendorOrderCommandHandler()
	consumer, err := kafkain.NewVendorOrdersConsumer(
		brokers,
		configs.KafkaConsumerGroup,
		configs.KafkaVendorOrdersTopic,
		handler,
		logger,
	)
	if err != nil {
		log.Fatalf("Error creating vendor orders consumer: %v", err)
	}

	go func() {
		defer consumer.Close()
		if err := consumer.Run(ctx); err != nil {
			logger.Error("Vendor orders consumer stopped", "error", err)
		}
	}()
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(gommonLevel(configs.SlogLevel()))
	e.HTTPErrorHandler = httpin.ErrorHandler(logger)
	e.Use(middleware.Recover())
	e.Use(httpin.Metrics)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	doc, err := openapi.Load(ctx)
	if err != nil {
		e.Logger.Fatal(err)
	}
	validator, err := openapi.RequestValidator(doc)
	if err != nil {
		e.Logger.Fatal(err)
	}
	if err = openapi.RegisterSwagger(doc); err != nil {
		e.Logger.Fatal(err)
	}
	e.GET("/openapi.yaml", openapi.Handler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	proofPath, err := configs.ProofPath()
	if err != nil {
		e.Logger.Fatal(err)
	}
	e.Static(proofPath, configs.ProofDir)

	server, err := app.CreateHTTPServer()
	if err != nil {
		e.Logger.Fatal(err)
	}
	server.Register(e, validator)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
}

func gommonLevel(level slog.Level) log.Lvl {
	switch {
	case level <= slog.LevelDebug:
		return log.DEBUG
	case level <= slog.LevelInfo:
		return log.INFO
	case level <= slog.LevelWarn:
		return log.WARN
	default:
		return log.ERROR
	}
}
