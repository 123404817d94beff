package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avelarsoft/shoplane-backend/api/controllers"
	"github.com/avelarsoft/shoplane-backend/api/middleware"
	checkoutsvc "github.com/avelarsoft/shoplane-backend/internal/checkout"
	"github.com/avelarsoft/shoplane-backend/internal/customers"
	"github.com/avelarsoft/shoplane-backend/internal/discounts"
	"github.com/avelarsoft/shoplane-backend/internal/orders"
	"github.com/avelarsoft/shoplane-backend/internal/products"
	"github.com/avelarsoft/shoplane-backend/internal/tenants"
	"github.com/avelarsoft/shoplane-backend/pkg/config"
	"github.com/avelarsoft/shoplane-backend/pkg/db"
	"github.com/avelarsoft/shoplane-backend/pkg/logger"
	pkgredis "github.com/avelarsoft/shoplane-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DBPinger    db.Pinger
	RedisClient *pkgredis.Client

	TenantService   *tenants.Service
	ProductService  *products.Service
	CustomerService *customers.Service
	DiscountService *discounts.Service
	CheckoutService *checkoutsvc.Service
	OrderService    *orders.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, deps.RedisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/tenants", controllers.TenantCreate(deps.TenantService, deps.Logger))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Config.JWT, deps.TenantService, deps.Logger))

			var idempotencyStore pkgredis.IdempotencyStore
			if deps.RedisClient != nil {
				idempotencyStore = deps.RedisClient
			}
			r.Use(middleware.Idempotency(idempotencyStore, deps.Logger))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(deps.ProductService, deps.Logger))
				r.Get("/", controllers.ProductList(deps.ProductService, deps.Logger))
				r.Get("/search", controllers.ProductSearch(deps.ProductService, deps.Logger))
				r.Get("/{productID}", controllers.ProductGet(deps.ProductService, deps.Logger))
				r.Put("/{productID}", controllers.ProductUpdate(deps.ProductService, deps.Logger))
				r.Delete("/{productID}", controllers.ProductDelete(deps.ProductService, deps.Logger))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Post("/", controllers.CustomerCreate(deps.CustomerService, deps.Logger))
				r.Get("/", controllers.CustomerList(deps.CustomerService, deps.Logger))
				r.Get("/{customerID}", controllers.CustomerGet(deps.CustomerService, deps.Logger))
				r.Put("/{customerID}", controllers.CustomerUpdate(deps.CustomerService, deps.Logger))
			})

			r.Route("/discounts", func(r chi.Router) {
				r.Post("/", controllers.DiscountCreate(deps.DiscountService, deps.Logger))
				r.Get("/", controllers.DiscountList(deps.DiscountService, deps.Logger))
				r.Get("/check", controllers.DiscountCheck(deps.DiscountService, deps.Logger))
				r.Get("/{discountID}", controllers.DiscountGet(deps.DiscountService, deps.Logger))
				r.Delete("/{discountID}", controllers.DiscountDeactivate(deps.DiscountService, deps.Logger))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Post("/", controllers.CheckoutSubmit(deps.CheckoutService, deps.Logger))
				r.Post("/preview", controllers.CheckoutPreview(deps.CheckoutService, deps.Logger))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrderList(deps.OrderService, deps.Logger))
				r.Get("/{orderID}", controllers.OrderGet(deps.OrderService, deps.Logger))
				r.Post("/{orderID}/cancel", controllers.OrderCancel(deps.OrderService, deps.Logger))
				r.Post("/{orderID}/complete", controllers.OrderComplete(deps.OrderService, deps.Logger))
			})
		})
	})

	return r
}
