package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/internal/purchase"
	"github.com/angelmondragon/storefront-backend/internal/sales"
	"github.com/angelmondragon/storefront-backend/internal/wallet"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

// Common carries what every service router needs. Redis and the registry are
// optional.
type Common struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry
}

// NewCustomerRouter serves profiles, authentication and wallets.
func NewCustomerRouter(c Common, customerService customers.Service, walletService wallet.Service) http.Handler {
	cfg, logg := c.Config, c.Logger
	r := newBaseRouter(c)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)
	limiter := rateLimiter(c.Redis)

	idempotent := middleware.Idempotency(idempotencyStore(c.Redis), logg)

	r.Route("/api/v1/customer", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, limiter, logg)).Post("/register", controllers.CustomerRegister(customerService, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, limiter, logg)).Post("/login", controllers.CustomerLogin(customerService, logg))
		})

		// Called service-to-service by the sales orchestrator on the private network.
		r.Route("/wallet/{customer_id}", func(r chi.Router) {
			r.With(idempotent).Put("/charge", controllers.WalletCharge(walletService, logg))
			r.With(idempotent).Put("/deduct", controllers.WalletDeduct(walletService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.With(middleware.RequireRole(enums.CustomerRoleAdmin, logg)).Get("/get", controllers.CustomerList(customerService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSelfOrAdmin("customer_id", logg))
				r.Get("/get/{customer_id}", controllers.CustomerGet(customerService, logg))
				r.Put("/update/{customer_id}", controllers.CustomerUpdate(customerService, logg))
				r.Delete("/delete/{customer_id}", controllers.CustomerDelete(customerService, logg))
			})
		})
	})

	return r
}

// NewInventoryRouter serves the goods catalogue and the stock mutations.
func NewInventoryRouter(c Common, inventoryService inventory.Service) http.Handler {
	cfg, logg := c.Config, c.Logger
	r := newBaseRouter(c)

	idempotent := middleware.Idempotency(idempotencyStore(c.Redis), logg)

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Get("/", controllers.InventoryList(inventoryService, logg))
		r.Get("/{good_id}", controllers.InventoryGet(inventoryService, logg))
		// Called service-to-service by the sales orchestrator on the private network.
		r.Put("/deduct/{good_id}", controllers.InventoryDeduct(inventoryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.RequireRole(enums.CustomerRoleAdmin, logg))
			r.Post("/add", controllers.InventoryAdd(inventoryService, logg))
			r.Put("/update/{good_id}", controllers.InventoryUpdate(inventoryService, logg))
			r.With(idempotent).Put("/restock/{good_id}", controllers.InventoryRestock(inventoryService, logg))
		})
	})

	return r
}

// NewSalesRouter serves the purchase endpoint and the sales ledger.
func NewSalesRouter(c Common, purchaseService purchase.Service, salesService sales.Service) http.Handler {
	cfg, logg := c.Config, c.Logger
	r := newBaseRouter(c)

	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.With(
			middleware.RequireSelfOrAdmin("customer_id", logg),
			middleware.Idempotency(idempotencyStore(c.Redis), logg),
		).Post("/purchase/{customer_id}/{good_id}", controllers.SalesPurchase(purchaseService, logg))
		r.Get("/get", controllers.SalesList(salesService, logg))
	})

	return r
}

func newBaseRouter(c Common) chi.Router {
	cfg, logg := c.Config, c.Logger
	r := chi.NewRouter()

	var httpMetrics *metrics.HTTPMetrics
	if c.Registry != nil {
		httpMetrics = metrics.NewHTTPMetrics(c.Registry)
	}

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	deps := map[string]controllers.Pinger{}
	if c.DB != nil {
		deps["db"] = c.DB
	}
	if c.Redis != nil {
		deps["redis"] = c.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps, logg))
	})

	if c.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry}))
	}

	return r
}

// The middleware treats a nil store as disabled, so a nil client must not
// reach it wrapped in a non-nil interface.
func idempotencyStore(c *redis.Client) redis.IdempotencyStore {
	if c == nil {
		return nil
	}
	return c
}

func rateLimiter(c *redis.Client) middleware.RateLimiterStore {
	if c == nil {
		return nil
	}
	return c
}
