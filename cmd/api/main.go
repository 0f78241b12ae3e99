package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/format"
	"github.com/hudemas/api/internal/handlers"
	"github.com/hudemas/api/internal/payments"
	"github.com/hudemas/api/internal/platform/auth"
	"github.com/hudemas/api/internal/platform/config"
	pfirestore "github.com/hudemas/api/internal/platform/firestore"
	"github.com/hudemas/api/internal/platform/jobs"
	"github.com/hudemas/api/internal/platform/observability"
	firestoreRepo "github.com/hudemas/api/internal/repositories/firestore"
	"github.com/hudemas/api/internal/services"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	firestoreProvider := pfirestore.NewProvider(cfg.Firestore)
	firestoreClient, err := firestoreProvider.Client(ctx)
	if err != nil {
		logger.Fatal("failed to initialise firestore client", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := firestoreProvider.Close(closeCtx); err != nil {
			logger.Warn("firestore close error", zap.Error(err))
		}
	}()

	if host := strings.TrimSpace(cfg.PubSub.EmulatorHost); host != "" {
		if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
			_ = os.Setenv("PUBSUB_EMULATOR_HOST", host)
		}
	}
	pubsubClient, err := pubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		logger.Fatal("failed to initialise pubsub client", zap.Error(err))
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logger.Warn("pubsub close error", zap.Error(err))
		}
	}()

	fiscalTopic := pubsubClient.Topic(cfg.PubSub.FiscalEventsTopic)
	defer fiscalTopic.Stop()
	eventPublisher, err := jobs.NewPubSubFiscalEventPublisher(fiscalTopic)
	if err != nil {
		logger.Fatal("failed to initialise fiscal event publisher", zap.Error(err))
	}

	firebaseVerifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		logger.Fatal("failed to initialise firebase verifier", zap.Error(err))
	}
	authenticator := auth.NewAuthenticator(firebaseVerifier)

	orderRepo, err := firestoreRepo.NewOrderRepository(firestoreProvider, cfg.Firestore.OrdersCollection)
	if err != nil {
		logger.Fatal("failed to initialise order repository", zap.Error(err))
	}
	couponRepo, err := firestoreRepo.NewCouponRepository(firestoreProvider, cfg.Firestore.CouponsCollection)
	if err != nil {
		logger.Fatal("failed to initialise coupon repository", zap.Error(err))
	}

	if strings.TrimSpace(cfg.PSP.StripeAPIKey) == "" {
		logger.Fatal("stripe api key is required for checkout sessions")
	}
	stripeProvider, err := payments.NewStripeProvider(payments.StripeProviderConfig{
		APIKey: cfg.PSP.StripeAPIKey,
		Logger: observability.EventLogger(logger.Named("payments")),
		Clock:  time.Now,
	})
	if err != nil {
		logger.Fatal("failed to initialise stripe payment provider", zap.Error(err))
	}

	pricingEngine, err := services.NewPricingEngine(services.PricingEngineDeps{
		Now:    time.Now,
		Logger: observability.EventLogger(logger.Named("pricing")),
	})
	if err != nil {
		logger.Fatal("failed to initialise pricing engine", zap.Error(err))
	}

	couponService, err := services.NewCouponService(services.CouponServiceDeps{
		Coupons:      couponRepo,
		SeasonalRate: cfg.Pricing.SeasonalDiscountRate,
		Now:          time.Now,
		Logger:       observability.EventLogger(logger.Named("coupons")),
	})
	if err != nil {
		logger.Fatal("failed to initialise coupon service", zap.Error(err))
	}

	builder, err := services.NewFiscalDocumentBuilder(services.FiscalDocumentBuilderDeps{
		Supplier: supplierFromConfig(cfg.Supplier),
		Now:      time.Now,
		Logger:   observability.EventLogger(logger.Named("fiscal")),
	})
	if err != nil {
		logger.Fatal("failed to initialise fiscal document builder", zap.Error(err))
	}

	exporter, err := services.NewAccountingExporter(services.AccountingExporterDeps{
		Now:    time.Now,
		Logger: observability.EventLogger(logger.Named("export")),
	})
	if err != nil {
		logger.Fatal("failed to initialise accounting exporter", zap.Error(err))
	}

	orderService, err := services.NewOrderService(services.OrderServiceDeps{
		Orders:   orderRepo,
		Pricing:  pricingEngine,
		Builder:  builder,
		Exporter: exporter,
		Events:   eventPublisher,
		Now:      time.Now,
		Logger:   observability.EventLogger(logger.Named("orders")),
	})
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	checkoutService, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Pricing:    pricingEngine,
		Coupons:    couponService,
		Payments:   stripeProvider,
		Orders:     orderRepo,
		Currency:   cfg.Pricing.Currency,
		SuccessURL: cfg.Checkout.SuccessURL,
		CancelURL:  cfg.Checkout.CancelURL,
		Now:        time.Now,
		Logger:     observability.EventLogger(logger.Named("checkout")),
	})
	if err != nil {
		logger.Fatal("failed to initialise checkout service", zap.Error(err))
	}

	formatter := format.NewFormatter(cfg.Pricing.Currency)
	checkoutHandlers := handlers.NewCheckoutHandlers(checkoutService)
	orderHandlers := handlers.NewOrderHandlers(authenticator, orderService, formatter)
	exportHandlers := handlers.NewExportHandlers(authenticator, orderService, time.Now)

	healthHandlers := handlers.NewHealthHandlers(
		handlers.WithReadinessCheck("firestore", func(ctx context.Context) error {
			iter := firestoreClient.Collections(ctx)
			_, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}),
	)

	projectID := traceProjectID(cfg)
	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(projectID),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(projectID),
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithHealthHandlers(healthHandlers),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithAdminRoutes(exportHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("hudemas api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func supplierFromConfig(cfg config.SupplierConfig) domain.SupplierInfo {
	return domain.SupplierInfo{
		LegalName:       cfg.LegalName,
		TradeRegisterNo: cfg.TradeRegisterNo,
		TaxID:           cfg.TaxID,
		ShareCapital:    cfg.ShareCapital,
		Address:         cfg.Address,
		City:            cfg.City,
		County:          cfg.County,
		BankName:        cfg.BankName,
		IBAN:            cfg.IBAN,
		Email:           cfg.Email,
		Phone:           cfg.Phone,
	}
}

func traceProjectID(cfg config.Config) string {
	if id := strings.TrimSpace(cfg.Firebase.ProjectID); id != "" {
		return id
	}
	return strings.TrimSpace(cfg.Firestore.ProjectID)
}
