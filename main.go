package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookify/config"
	"bookify/cron"
	"bookify/database"
	bookingRepoPkg "bookify/database/repository/booking"
	payoutRepoPkg "bookify/database/repository/payout"
	providerRepoPkg "bookify/database/repository/provider"
	"bookify/handlers"
	"bookify/routes"
	"bookify/services/availability"
	"bookify/services/booking"
	"bookify/services/notification"
	"bookify/services/payout"
	"bookify/services/slotlock"
	"bookify/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"golang.org/x/time/rate"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	provRepo := providerRepoPkg.NewMongoProviderRepo()
	bookRepo := bookingRepoPkg.NewMongoBookingRepo()
	payRepo := payoutRepoPkg.NewMongoPayoutRepo()

	for _, ensure := range []func() error{
		provRepo.EnsureIndexes, bookRepo.EnsureIndexes, payRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
		}
	}

	clock := utils.NewSystemClock()
	cfg := config.AppConfig

	// services.
	availabilitySvc := &availability.DefaultAvailabilityService{
		Providers:       provRepo,
		Bookings:        bookRepo,
		Cache:           availability.NewSlotCache(utils.GetCacheClient(), time.Duration(cfg.SlotCacheTTLSeconds)*time.Second),
		DefaultDuration: cfg.SlotDurationMinutes,
	}

	lockTTL := time.Duration(cfg.SlotLockTTLSeconds) * time.Second
	lockSvc := &slotlock.DefaultLockManager{
		Store:        &slotlock.RedisLockStore{Client: utils.GetLockCacheClient()},
		Availability: availabilitySvc,
		Clock:        clock,
		DefaultTTL:   lockTTL,
	}

	notificationSvc := notification.NewNotificationService()

	payoutSvc := &payout.DefaultPayoutService{
		Repo:       payRepo,
		Providers:  provRepo,
		Transfer:   payout.NewStripeTransferClient(time.Duration(cfg.TransferTimeoutSecs) * time.Second),
		Backoff:    payout.NewDefaultBackoff(),
		Notifier:   notificationSvc,
		Clock:      clock,
		EscrowDays: cfg.EscrowDays,
		BatchSize:  cfg.PayoutBatchSize,
		MaxRetries: cfg.PayoutMaxRetries,
		Limiter:    rate.NewLimiter(rate.Limit(cfg.TransferRatePerSec), 1),
	}

	bookingSvc := &booking.DefaultBookingService{
		Repo:                    bookRepo,
		Providers:               provRepo,
		Availability:            availabilitySvc,
		Locks:                   lockSvc,
		Payments:                booking.NewStripePaymentHandler(),
		Payouts:                 payoutSvc,
		Notifier:                notificationSvc,
		Clock:                   clock,
		PlatformFeeRate:         cfg.PlatformFeeRate,
		CancellationWindowHours: cfg.CancellationWindowHours,
		CancellationFeeRate:     cfg.CancellationFeeRate,
	}

	// handlers.
	availabilityHandler := handlers.NewAvailabilityHandler(availabilitySvc)
	lockHandler := handlers.NewSlotLockHandler(lockSvc, lockTTL)
	bookingHandler := handlers.NewBookingHandler(bookingSvc, availabilitySvc)
	providerHandler := handlers.NewProviderHandler(provRepo, availabilitySvc)
	payoutHandler := handlers.NewPayoutHandler(payoutSvc)

	handlerBundle := &handlers.HandlerBundle{
		GetSlotsHandler:        availabilityHandler.GetSlotsHandler,
		GetAlternativesHandler: availabilityHandler.GetAlternativesHandler,

		AcquireLockHandler:   lockHandler.AcquireLockHandler,
		ReleaseLockHandler:   lockHandler.ReleaseLockHandler,
		CheckSlotFreeHandler: lockHandler.CheckSlotFreeHandler,

		CreateBookingHandler:         bookingHandler.CreateBookingHandler,
		GetBookingHandler:            bookingHandler.GetBookingHandler,
		GetByConfirmationCodeHandler: bookingHandler.GetByConfirmationCodeHandler,
		TransitionBookingHandler:     bookingHandler.TransitionBookingHandler,
		CancelBookingHandler:         bookingHandler.CancelBookingHandler,
		ListTransitionsHandler:       bookingHandler.ListTransitionsHandler,

		RegisterProviderHandler:  providerHandler.RegisterProviderHandler,
		GetProviderHandler:       providerHandler.GetProviderHandler,
		UpdateWindowsHandler:     providerHandler.UpdateWindowsHandler,
		CreateBlockedSlotHandler: providerHandler.CreateBlockedSlotHandler,
		RemoveBlockedSlotHandler: providerHandler.RemoveBlockedSlotHandler,

		GetPayoutHandler:           payoutHandler.GetPayoutHandler,
		ListProviderPayoutsHandler: payoutHandler.ListProviderPayoutsHandler,
		MarkPayoutManualHandler:    payoutHandler.MarkPayoutManualHandler,
		ProcessDueHandler:          payoutHandler.ProcessDueHandler,
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background workers: periodic payout processing and lock sweeping.
	cron.InitWorkers(payoutSvc, lockSvc, availabilitySvc, provRepo)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
