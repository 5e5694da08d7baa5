// File: bookinghub/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"bookinghub/config"
	"bookinghub/database"
	bookingRepo "bookinghub/database/repository/booking"
	"bookinghub/handlers"
	"bookinghub/middleware"
	"bookinghub/routes"
	"bookinghub/services/booking"
	"bookinghub/services/calendar"
	"bookinghub/services/notification"
	"bookinghub/services/payment"
	"bookinghub/services/tasks"
	"bookinghub/utils"
	"bookinghub/worker"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("main: %v", err)
	}

	logger, err := utils.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("main: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Lock store.
	redisClient, err := utils.NewLockStoreClient(ctx, cfg)
	if err != nil {
		logger.Fatal("main: lock store unavailable", zap.Error(err))
	}
	defer redisClient.Close()

	// Booking store.
	store, closeStore := openBookingStore(ctx, cfg, logger)
	defer closeStore()

	// Payments and fan-out side effects.
	gateway, err := payment.NewStripeGateway(cfg.StripeSecretKey)
	if err != nil {
		logger.Fatal("main: failed to initialize payment gateway", zap.Error(err))
	}
	emailSender, err := notification.NewResendSender(cfg.ResendAPIKey, cfg.EmailFrom)
	if err != nil {
		logger.Fatal("main: failed to initialize email sender", zap.Error(err))
	}
	var pushSender notification.PushSender
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := utils.NewFCMClient(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatal("main: failed to initialize firebase messaging", zap.Error(err))
		}
		pushSender = notification.NewFCMPushSender(fcm)
	} else {
		logger.Warn("main: FIREBASE_CREDENTIALS_FILE not set, vendor push notifications disabled")
	}
	notifier := notification.NewNotifier(emailSender, pushSender, cfg.AppURL, logger)

	var providers []calendar.Provider
	if cfg.GoogleClientID != "" {
		providers = append(providers, calendar.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret))
	}
	if cfg.MicrosoftClientID != "" {
		providers = append(providers, calendar.NewOutlookProvider(cfg.MicrosoftClientID, cfg.MicrosoftClientSecret, cfg.MicrosoftTenantID))
	}
	syncer := calendar.NewSyncer(logger, providers...)

	queueOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	queueClient := asynq.NewClient(queueOpt)
	defer queueClient.Close()
	dispatcher := tasks.NewAsynqDispatcher(queueClient, cfg.FanoutMaxRetry, logger)

	fanoutWorker := worker.New(queueOpt, cfg.WorkerConcurrency, worker.NewHandlers(store, notifier, syncer, logger), logger)
	if err := fanoutWorker.Start(); err != nil {
		logger.Fatal("main: failed to start fan-out worker", zap.Error(err))
	}

	// Booking core.
	lockStore := booking.NewRedisLockStore(redisClient)
	conflicts := booking.NewConflictChecker(store)
	locks := booking.NewSlotLockManager(lockStore, conflicts, cfg.LockTTL(), cfg.SlotStride(), logger)
	availability := booking.NewAvailabilityCalculator(store, locks, cfg.SlotStride())
	coordinator := booking.NewCoordinator(store, locks, conflicts, gateway, dispatcher, logger)

	health := utils.NewHealthMonitor(map[string]utils.Pinger{
		"lockStore":    lockStore,
		"bookingStore": store,
	}, 30*time.Second, logger)
	health.Start(ctx)

	// Create the Gin router.
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RequestLogger(logger))

	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		Booking:           handlers.NewBookingHandler(availability, coordinator, locks, store),
		Health:            health,
		JWTSecret:         []byte(cfg.JWTSecret),
		MaxRequestsPerMin: cfg.MaxRequestsPerMin,
	})

	srv := &http.Server{
		Addr:    "0.0.0.0:" + cfg.AppPort,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	// In-flight reservations may still be enqueueing fan-out tasks.
	dispatcher.Wait()
	fanoutWorker.Shutdown()

	logger.Sugar().Info("main: server stopped gracefully")
}

// openBookingStore connects the configured booking store and prepares its
// indexes or schema.
func openBookingStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (bookingRepo.BookingRepository, func()) {
	switch cfg.StoreDriver {
	case "postgres":
		db, err := database.NewPostgresDB(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatal("main: booking store unavailable", zap.Error(err))
		}
		if err := database.EnsurePostgresSchema(ctx, db); err != nil {
			logger.Fatal("main: failed to prepare booking schema", zap.Error(err))
		}
		return bookingRepo.NewPostgresBookingRepo(db), func() { _ = db.Close() }
	default:
		client, err := database.NewMongoClient(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("main: booking store unavailable", zap.Error(err))
		}
		repo := bookingRepo.NewMongoBookingRepo(client, cfg.DatabaseName)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Fatal("main: failed to create booking indexes", zap.Error(err))
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }
	}
}
