package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avelarsoft/shoplane-backend/api/routes"
	checkoutsvc "github.com/avelarsoft/shoplane-backend/internal/checkout"
	"github.com/avelarsoft/shoplane-backend/internal/customers"
	"github.com/avelarsoft/shoplane-backend/internal/discounts"
	"github.com/avelarsoft/shoplane-backend/internal/inventory"
	"github.com/avelarsoft/shoplane-backend/internal/orders"
	"github.com/avelarsoft/shoplane-backend/internal/products"
	"github.com/avelarsoft/shoplane-backend/internal/tenants"
	"github.com/avelarsoft/shoplane-backend/pkg/config"
	"github.com/avelarsoft/shoplane-backend/pkg/db"
	"github.com/avelarsoft/shoplane-backend/pkg/logger"
	"github.com/avelarsoft/shoplane-backend/pkg/metrics"
	"github.com/avelarsoft/shoplane-backend/pkg/migrate"
	"github.com/avelarsoft/shoplane-backend/pkg/redis"
)

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

	conn := dbClient.DB()

	tenantService, err := tenants.NewService(tenants.NewRepository(conn))
	exitOnError(logg, "tenant service", err)

	productService, err := products.NewService(products.NewRepository(conn))
	exitOnError(logg, "product service", err)

	customerService, err := customers.NewService(customers.NewRepository(conn))
	exitOnError(logg, "customer service", err)

	discountService, err := discounts.NewService(discounts.NewRepository(conn))
	exitOnError(logg, "discount service", err)

	orderService, err := orders.NewService(dbClient, orders.NewRepository(conn), inventory.NewLedger(conn), logg)
	exitOnError(logg, "order service", err)

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		checkoutsvc.NewGormStores(dbClient),
		cfg.Checkout,
		checkoutMetrics,
		logg,
	)
	exitOnError(logg, "checkout service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DBPinger:        dbClient,
			RedisClient:     redisClient,
			TenantService:   tenantService,
			ProductService:  productService,
			CustomerService: customerService,
			DiscountService: discountService,
			CheckoutService: checkoutService,
			OrderService:    orderService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOnError(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+resource, err)
	os.Exit(1)
}
