package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/credentials"

	"github.com/Nathan-Yinka/autochek-API/internal/application/usecase"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/config"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/kafka"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/metrics"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/notification"
	pgstore "github.com/Nathan-Yinka/autochek-API/internal/infrastructure/persistence/postgres"
	"github.com/Nathan-Yinka/autochek-API/internal/infrastructure/valuation"
	grpcPresentation "github.com/Nathan-Yinka/autochek-API/internal/presentation/grpc"
	"github.com/Nathan-Yinka/autochek-API/internal/presentation/rest"
	"github.com/Nathan-Yinka/autochek-API/pkg/auth"
	pkgkafka "github.com/Nathan-Yinka/autochek-API/pkg/kafka"
	"github.com/Nathan-Yinka/autochek-API/pkg/observability"
	pgutil "github.com/Nathan-Yinka/autochek-API/pkg/postgres"
	redisutil "github.com/Nathan-Yinka/autochek-API/pkg/redis"
	"github.com/Nathan-Yinka/autochek-API/pkg/tlsutil"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gRPC API and the operational HTTP endpoints",
	RunE: func(cmd *cobra.Command, _ []string) error {
		migrate, _ := cmd.Flags().GetBool("migrate")
		reflect, _ := cmd.Flags().GetBool("reflection")
		return serve(cmd.Context(), migrate, reflect)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")
	serveCmd.Flags().Bool("reflection", false, "Register the gRPC reflection service")
}

func serve(parent context.Context, runMigrations, reflection bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := slog.Default()
	logger.Info("starting financed", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	// Tracing.
	if cfg.Tracing.Endpoint != "" {
		shutdown, err := observability.InitTracer(ctx, cfg.Tracing)
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }() //nolint:errcheck // best-effort tracer shutdown
		}
	}

	// Metrics: business counters and RPC histograms share one registry.
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	meterProvider, metricsHandler, err := observability.InitMetrics(registry)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }() //nolint:errcheck // best-effort flush
	recorder := metrics.NewRecorder(registry)

	// Database.
	if runMigrations {
		if err := pgutil.RunMigrations(cfg.DB.DSN(), pgstore.Migrations, pgstore.MigrationsDir); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()
	pool, err := pgutil.NewPool(dbCtx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	// Redis.
	rdb, err := redisutil.NewClient(ctx, cfg.Redis.Config)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// Kafka.
	producer, err := pkgkafka.NewProducer(cfg.Kafka.Config)
	if err != nil {
		return fmt.Errorf("create kafka producer: %w", err)
	}
	defer producer.Close()

	jwtSvc, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}

	handler := grpcPresentation.NewFinancingHandler(wire(cfg, pool, rdb, producer, recorder, logger), logger)

	var creds credentials.TransportCredentials
	if cfg.TLS.Enabled() {
		if creds, err = tlsutil.ServerTLSConfig(cfg.TLS.CertFile, cfg.TLS.KeyFile); err != nil {
			return fmt.Errorf("load tls credentials: %w", err)
		}
	}
	grpcServer, err := grpcPresentation.NewServer(handler, jwtSvc, grpcPresentation.ServerOptions{
		Creds:      creds,
		Reflection: reflection,
	}, logger)
	if err != nil {
		return err
	}

	health := rest.NewHealthHandler(cfg.ServiceName, map[string]rest.Check{
		"postgres": func(ctx context.Context) error { return pgutil.HealthCheck(ctx, pool) },
		"redis":    func(ctx context.Context) error { return redisutil.HealthCheck(ctx, rdb) },
	}, metricsHandler, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           health.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := grpcServer.ListenAndServe(cfg.GRPCAddr()); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	grpcServer.GracefulStop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("financed stopped")
	return runErr
}

// wire builds the use cases over the production adapters.
func wire(
	cfg config.Config,
	db pgutil.Beginner,
	rdb *goredis.Client,
	producer kafka.MessageProducer,
	recorder *metrics.Recorder,
	logger *slog.Logger,
) grpcPresentation.UseCases {
	policy := cfg.Policy()
	clock := usecase.SystemClock
	uow := pgstore.NewUnitOfWork(db)

	inbox := notification.NewRedisSink(rdb, cfg.Redis.InboxSize)
	dispatcher := usecase.NewDispatcher(
		kafka.NewEventPublisher(producer, cfg.Kafka.Topic, logger),
		inbox,
		recorder,
		logger,
	)

	lookup := valuation.NewCachedProvider(
		valuation.NewVINLookupClient(cfg.Valuation.Lookup, nil, logger),
		rdb, cfg.Valuation.CacheTTL, logger,
	)
	twoTier := valuation.NewTwoTierProvider(lookup, clock, logger)

	return grpcPresentation.UseCases{
		CheckEligibility:        usecase.NewCheckEligibilityUseCase(uow, policy, clock),
		SubmitApplication:       usecase.NewSubmitLoanApplicationUseCase(uow, policy, dispatcher, clock),
		GetApplication:          usecase.NewGetApplicationUseCase(uow),
		ListApplications:        usecase.NewListApplicationsUseCase(uow),
		ListUnclaimed:           usecase.NewListUnclaimedApplicationsUseCase(uow),
		ClaimApplication:        usecase.NewClaimApplicationUseCase(uow, dispatcher, clock),
		UpdateApplicationStatus: usecase.NewUpdateApplicationStatusUseCase(uow, dispatcher, clock),
		DeleteApplication:       usecase.NewDeleteApplicationUseCase(uow, dispatcher, clock),
		CreateOffer:             usecase.NewCreateOfferUseCase(uow, dispatcher, clock),
		GetOffer:                usecase.NewGetOfferUseCase(uow, dispatcher, clock),
		ListUserOffers:          usecase.NewListUserOffersUseCase(uow, dispatcher, clock),
		ListApplicationOffers:   usecase.NewListApplicationOffersUseCase(uow, dispatcher, clock),
		AcceptOffer:             usecase.NewAcceptOfferUseCase(uow, dispatcher, clock),
		DeclineOffer:            usecase.NewDeclineOfferUseCase(uow, dispatcher, clock),
		UpdateOfferStatus:       usecase.NewUpdateOfferStatusUseCase(uow, dispatcher, clock),
		RequestValuation:        usecase.NewRequestValuationUseCase(uow, twoTier, dispatcher, clock, logger),
		ValuationHistory:        usecase.NewValuationHistoryUseCase(uow),
		EvaluateVehicle:         usecase.NewEvaluateVehicleUseCase(uow, lookup, policy, clock),
		UpdateVehiclePricing:    usecase.NewUpdateVehiclePricingUseCase(uow),
		ListNotifications:       usecase.NewListNotificationsUseCase(inbox),
		MarkNotificationsRead:   usecase.NewMarkNotificationsReadUseCase(inbox, clock),
	}
}
