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

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/invoicedesk/invoicedesk/cmd/invoicedesk/cli"
	"github.com/invoicedesk/invoicedesk/internal/app"
	"github.com/invoicedesk/invoicedesk/internal/documents"
	"github.com/invoicedesk/invoicedesk/internal/invoices"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/clients"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/contacts"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/items"
	"github.com/invoicedesk/invoicedesk/internal/masterdata/vendors"
	"github.com/invoicedesk/invoicedesk/internal/numbering"
	"github.com/invoicedesk/invoicedesk/internal/observability"
	"github.com/invoicedesk/invoicedesk/internal/payments"
	"github.com/invoicedesk/invoicedesk/internal/platform/cache"
	"github.com/invoicedesk/invoicedesk/internal/platform/db"
	"github.com/invoicedesk/invoicedesk/internal/profile"
	"github.com/invoicedesk/invoicedesk/internal/reconcile"
	"github.com/invoicedesk/invoicedesk/internal/shared"
	"github.com/invoicedesk/invoicedesk/internal/users"
	"github.com/invoicedesk/invoicedesk/jobs"
)

const usage = "usage: invoicedesk [serve | migrate | jobs stats | jobs requeue]"

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if cfg.TestMode {
		logger.Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "serve":
		err = serve(ctx, stop, cfg, logger)
	case "migrate":
		err = migrate(ctx, cfg, logger)
	case "jobs":
		err = jobsCommand(ctx, cfg, os.Args[2:])
	default:
		err = errors.New(usage)
	}
	if err != nil {
		logger.Error(cmd, slog.Any("error", err))
		os.Exit(1)
	}
}

func migrate(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 2})
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.Migrate(pool); err != nil {
		return err
	}
	logger.Info("migrations applied")
	return nil
}

func jobsCommand(ctx context.Context, cfg *app.Config, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	jobsCLI := cli.NewJobsCLI(cfg.RedisAddr)
	defer func() { _ = jobsCLI.Close() }()

	switch args[0] {
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, stats)
	case "requeue":
		n, err := jobsCLI.RequeueArchived(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "requeued %d archived tasks\n", n)
	default:
		return errors.New(usage)
	}
	return nil
}

func serve(ctx context.Context, stop context.CancelFunc, cfg *app.Config, logger *slog.Logger) error {
	strategy, err := cfg.Strategy()
	if err != nil {
		return err
	}

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(pool); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	router, closeJobs := buildRouter(cfg, logger, pool, redisClient, strategy)
	defer closeJobs()

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("numbering", string(strategy)))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

func buildRouter(cfg *app.Config, logger *slog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, strategy numbering.Strategy) (http.Handler, func()) {
	metrics := observability.NewMetrics()
	resolver := numbering.NewResolver(strategy, metrics)
	reconciler := reconcile.New(logger, reconcile.WithObserver(metrics))

	sessions := shared.NewSessionManager(redisClient, cfg.SessionTTL)

	profileService := profile.NewService(
		profile.NewRepository(pool),
		cache.NewJSONCache(redisClient, "profile", cfg.ProfileCacheTTL),
		logger,
	)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	receipts := jobs.NewClient(redisOpts, cfg.DefaultCurrency)
	inspector := asynq.NewInspector(redisOpts)

	usersService := users.NewService(users.NewRepository(pool), sessions, logger)
	invoiceService := invoices.NewService(invoices.NewRepository(pool), resolver, profileService, logger)
	paymentService := payments.NewService(payments.NewRepository(pool), resolver, profileService, reconciler, receipts, logger)
	documentService := documents.NewService(documents.NewRepository(pool), resolver, profileService, logger)
	clientContacts := contacts.NewService(contacts.NewRepository(pool, contacts.ClientOwner), contacts.ClientOwner, logger)
	vendorContacts := contacts.NewService(contacts.NewRepository(pool, contacts.VendorOwner), contacts.VendorOwner, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:                logger,
		Config:                cfg,
		Metrics:               metrics,
		SessionManager:        sessions,
		UsersHandler:          users.NewHandler(logger, usersService),
		ProfileHandler:        profile.NewHandler(logger, profileService),
		ClientsHandler:        clients.NewHandler(logger, clients.NewService(clients.NewRepository(pool), logger)),
		ClientContactsHandler: contacts.NewHandler(logger, clientContacts),
		VendorsHandler:        vendors.NewHandler(logger, vendors.NewService(vendors.NewRepository(pool), logger)),
		VendorContactsHandler: contacts.NewHandler(logger, vendorContacts),
		ItemsHandler:          items.NewHandler(logger, items.NewService(items.NewRepository(pool), logger)),
		InvoicesHandler:       invoices.NewHandler(logger, invoiceService),
		PaymentsHandler:       payments.NewHandler(logger, paymentService),
		DocumentsHandler:      documents.NewHandler(logger, documentService),
		NumberingHandler:      numbering.NewHandler(logger, resolver, numbering.NewPGStore(pool), profileService),
		JobHandler:            jobs.NewHandler(inspector, logger),
	})

	closeJobs := func() {
		if err := receipts.Close(); err != nil {
			logger.Warn("asynq client close", slog.Any("error", err))
		}
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}
	return router, closeJobs
}
