package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/corebank/account-service/internal/config"
	"github.com/corebank/account-service/internal/events"
	"github.com/corebank/account-service/internal/handler"
	"github.com/corebank/account-service/internal/logging"
	"github.com/corebank/account-service/internal/middleware"
	"github.com/corebank/account-service/internal/repository"
	"github.com/corebank/account-service/internal/service"
	"github.com/corebank/account-service/internal/service/transaction"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("account-service", cfg.LogLevel, cfg.AppEnv)

	db, err := connectDB(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	accountRepo := repository.NewAccountRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	shadowRepo := repository.NewCustomerShadowRepository(db)
	processedRepo := repository.NewProcessedEventRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	publisher := events.NewPublisher(redisClient, cfg.AccountEventsStream)

	accountService := service.NewAccountService(accountRepo, movementRepo, transactionRepo, publisher, db)
	transactionService := transaction.NewService(accountRepo, movementRepo, transactionRepo, publisher, db, cfg.TxMaxAttempts)
	statementService := service.NewStatementService(accountRepo, movementRepo, shadowRepo)
	projector := service.NewProjector(accountRepo, shadowRepo, processedRepo, movementRepo, transactionRepo, db, slog.Default())

	subCtx, stopSubscriber := context.WithCancel(context.Background())
	defer stopSubscriber()

	subscriber := events.NewSubscriber(redisClient, events.SubscriberConfig{
		Stream:   cfg.CustomerEventsStream,
		Group:    cfg.EventConsumerGroup,
		Consumer: cfg.EventConsumerName,
		Handler:  projector.HandleEvent,
	})
	go func() {
		if err := subscriber.Start(subCtx); err != nil && subCtx.Err() == nil {
			slog.Error("event subscriber exited", "error", err)
		}
	}()

	mux := newRouter(routerDeps{
		db:           db,
		cfg:          cfg,
		accounts:     accountService,
		transactions: transactionService,
		statements:   statementService,
		idempotency:  idempotencyRepo,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	stopSubscriber()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

type routerDeps struct {
	db           *sql.DB
	cfg          *config.Config
	accounts     *service.AccountService
	transactions *transaction.Service
	statements   *service.StatementService
	idempotency  *repository.IdempotencyRepository
}

func newRouter(deps routerDeps) http.Handler {
	accountHandler := handler.NewAccountHandler(deps.accounts)
	transactionHandler := handler.NewTransactionHandler(deps.transactions)
	statementHandler := handler.NewStatementHandler(deps.statements)
	healthHandler := handler.NewHealthHandler(deps.db)

	auth := middleware.Auth(deps.cfg.JWTSecret)
	idempotency := middleware.Idempotency(deps.idempotency)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health/live", healthHandler.Liveness)
	mux.HandleFunc("GET /health/ready", healthHandler.Readiness)

	mux.Handle("POST /v1/accounts", auth(http.HandlerFunc(accountHandler.Create)))
	mux.Handle("GET /v1/accounts/{id}", auth(http.HandlerFunc(accountHandler.Get)))
	mux.Handle("POST /v1/accounts/{id}/activate", auth(http.HandlerFunc(accountHandler.Activate)))
	mux.Handle("POST /v1/accounts/{id}/deactivate", auth(http.HandlerFunc(accountHandler.Deactivate)))
	mux.Handle("GET /v1/accounts/{id}/transactions", auth(http.HandlerFunc(transactionHandler.ListByAccount)))
	mux.Handle("GET /v1/customers/{id}/accounts", auth(http.HandlerFunc(accountHandler.ListByCustomer)))
	mux.Handle("GET /v1/customers/{id}/statement", auth(http.HandlerFunc(statementHandler.Get)))

	mux.Handle("POST /v1/transactions", auth(idempotency(http.HandlerFunc(transactionHandler.Execute))))
	mux.Handle("GET /v1/transactions/{id}", auth(http.HandlerFunc(transactionHandler.Get)))

	return middleware.Tracing(middleware.Logging(middleware.Recovery(mux)))
}

func connectDB(cfg *config.Config) (*sql.DB, error) {
	pool := repository.PoolConfig{
		MaxOpenConns:     cfg.DBMaxOpenConns,
		MaxIdleConns:     cfg.DBMaxIdleConns,
		ConnMaxLifetimeS: cfg.DBConnMaxLifetimeS,
		ConnMaxIdleTimeS: cfg.DBConnMaxIdleTimeS,
	}

	var lastErr error
	for i := range 30 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		db, err := repository.NewPostgresDB(ctx, cfg.DatabaseURL, pool)
		cancel()
		if err == nil {
			return db, nil
		}
		lastErr = err
		slog.Info("waiting for database", "attempt", i+1)
		time.Sleep(time.Second)
	}

	return nil, fmt.Errorf("connectDB: gave up after 30 attempts: %w", lastErr)
}
