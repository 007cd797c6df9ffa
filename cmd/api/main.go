package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/atlasmedina/medina-backend/api/controllers"
	"github.com/atlasmedina/medina-backend/api/routes"
	authsvc "github.com/atlasmedina/medina-backend/internal/auth"
	cartsvc "github.com/atlasmedina/medina-backend/internal/cart"
	categorysvc "github.com/atlasmedina/medina-backend/internal/categories"
	checkoutsvc "github.com/atlasmedina/medina-backend/internal/checkout"
	"github.com/atlasmedina/medina-backend/internal/notifications"
	ordersvc "github.com/atlasmedina/medina-backend/internal/orders"
	productsvc "github.com/atlasmedina/medina-backend/internal/products"
	statsvc "github.com/atlasmedina/medina-backend/internal/stats"
	"github.com/atlasmedina/medina-backend/pkg/auth/session"
	"github.com/atlasmedina/medina-backend/pkg/config"
	"github.com/atlasmedina/medina-backend/pkg/db"
	"github.com/atlasmedina/medina-backend/pkg/events"
	"github.com/atlasmedina/medina-backend/pkg/logger"
	"github.com/atlasmedina/medina-backend/pkg/metrics"
	"github.com/atlasmedina/medina-backend/pkg/migrate"
	"github.com/atlasmedina/medina-backend/pkg/redis"
	"github.com/atlasmedina/medina-backend/pkg/storage"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	storageClient, err := storage.NewClient(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap object storage", err)
		os.Exit(1)
	}

	bus, err := events.NewBus(redisClient, cfg.Events)
	if err != nil {
		logg.Error(context.Background(), "failed to create event bus", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       authsvc.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		NewAccessID:    session.NewAccessID,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	productRepo := productsvc.NewRepository(dbClient.DB())
	productService, err := productsvc.NewService(productRepo, storageClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	categoryService, err := categorysvc.NewService(categorysvc.NewRepository(dbClient.DB()), dbClient, storageClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create categories service", err)
		os.Exit(1)
	}

	cartStore, err := cartsvc.NewStore(redisClient, cartsvc.DefaultTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart store", err)
		os.Exit(1)
	}
	cartService, err := cartsvc.NewService(cartStore, productService, bus)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderRepo := ordersvc.NewRepository(dbClient.DB())
	orderService, err := ordersvc.NewService(orderRepo, bus)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkoutsvc.NewService(cartService, orderRepo, dbClient, bus)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	statsService, err := statsvc.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	badge := notifications.NewCounter()
	consumer, err := notifications.NewConsumer(redisClient, bus.OrdersChannel(), orderService, badge, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications consumer", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		Sessions: sessionManager,
		Metrics:  httpMetrics,
		Pingers: map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
			"storage":  storageClient,
		},
		AuthService:     authService,
		ProductService:  productService,
		CategoryService: categoryService,
		CartService:     cartService,
		CheckoutService: checkoutService,
		OrderService:    orderService,
		StatsService:    statsService,
		Badge:           badge,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "notifications consumer stopped", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(startCtx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(startCtx, "graceful shutdown failed", err)
		}
	}
}
