package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/prime-apparel/backend/internal/app"
	"github.com/prime-apparel/backend/internal/auth"
	"github.com/prime-apparel/backend/internal/costings"
	"github.com/prime-apparel/backend/internal/leads"
	"github.com/prime-apparel/backend/internal/observability"
	"github.com/prime-apparel/backend/internal/orders"
	"github.com/prime-apparel/backend/internal/platform/cache"
	"github.com/prime-apparel/backend/internal/platform/db"
	"github.com/prime-apparel/backend/internal/procurement"
	"github.com/prime-apparel/backend/internal/production"
	"github.com/prime-apparel/backend/internal/products"
	"github.com/prime-apparel/backend/internal/rbac"
	"github.com/prime-apparel/backend/internal/shared"
	"github.com/prime-apparel/backend/internal/suppliers"
	"github.com/prime-apparel/backend/internal/users"
	"github.com/prime-apparel/backend/jobs"
	"github.com/prime-apparel/backend/scripts/migrations"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, migrations.Files); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewJWTService(auth.JWTConfig{
		Secret:        cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		Issuer:        cfg.JWTIssuer,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	denylist := auth.NewTokenDenylist(redisClient)
	otpStore := auth.NewOTPStore(redisClient, cfg.OTPTTL, cfg.ResetTokenTTL)

	auditLogger := shared.NewAuditLogger(pool)
	metrics := observability.NewMetrics()
	rbacMiddleware := rbac.Middleware{Logger: logger}

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	authService := auth.NewService(usersRepo, tokens, otpStore, jobClient)
	authHandler := auth.NewHandler(logger, authService, usersService, tokens, denylist)

	leadsService := leads.NewService(leads.NewRepository(pool))
	leadsHandler := leads.NewHandler(logger, leadsService, rbacMiddleware)

	costingsService := costings.NewService(costings.NewRepository(pool))
	costingsHandler := costings.NewHandler(logger, costingsService, rbacMiddleware)

	ordersService := orders.NewService(orders.NewRepository(pool))
	ordersHandler := orders.NewHandler(logger, ordersService, rbacMiddleware)

	productionService := production.NewService(production.NewRepository(pool), ordersService, logger)
	productionHandler := production.NewHandler(logger, productionService, rbacMiddleware)

	productsService := products.NewService(products.NewRepository(pool))
	productsHandler := products.NewHandler(logger, productsService, rbacMiddleware)

	suppliersService := suppliers.NewService(suppliers.NewRepository(pool))
	suppliersHandler := suppliers.NewHandler(logger, suppliersService, rbacMiddleware)

	procurementService := procurement.NewService(procurement.NewRepository(pool), auditLogger)
	procurementHandler := procurement.NewHandler(logger, procurementService, rbacMiddleware)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		AuthMiddleware:     auth.Middleware(tokens, denylist),
		AuthHandler:        authHandler,
		UsersHandler:       usersHandler,
		LeadsHandler:       leadsHandler,
		CostingsHandler:    costingsHandler,
		OrdersHandler:      ordersHandler,
		ProductionHandler:  productionHandler,
		ProductsHandler:    productsHandler,
		SuppliersHandler:   suppliersHandler,
		ProcurementHandler: procurementHandler,
		Metrics:            metrics,
		Pool:               pool,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
