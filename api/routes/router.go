package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/auradecor/storefront-backend/api/controllers"
	"github.com/auradecor/storefront-backend/api/middleware"
	"github.com/auradecor/storefront-backend/internal/auth"
	"github.com/auradecor/storefront-backend/internal/cart"
	"github.com/auradecor/storefront-backend/internal/orders"
	"github.com/auradecor/storefront-backend/internal/products"
	"github.com/auradecor/storefront-backend/internal/wishlist"
	"github.com/auradecor/storefront-backend/pkg/config"
	"github.com/auradecor/storefront-backend/pkg/enums"
	"github.com/auradecor/storefront-backend/pkg/logger"
	"github.com/auradecor/storefront-backend/pkg/metrics"
	"github.com/auradecor/storefront-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              controllers.Pinger
	Redis           *redis.Client
	Sessions        middleware.SessionChecker
	Metrics         *metrics.HTTPMetrics
	MetricsGatherer prometheus.Gatherer

	AuthService     auth.Service
	RegisterService auth.RegisterService
	ProductService  products.Service
	CartService     cart.Service
	WishlistService wishlist.Service
	OrderService    orders.Service
}

// NewRouter assembles the storefront API.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.ProductService, logg))
		r.Get("/{slug}", controllers.ProductDetail(deps.ProductService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(deps.CartService, logg))
			r.Post("/", controllers.CartAddItem(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
			r.Post("/merge", controllers.CartMerge(deps.CartService, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(deps.CartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistGet(deps.WishlistService, logg))
			r.Post("/items", controllers.WishlistAddItem(deps.WishlistService, logg))
			r.Delete("/items/{productId}", controllers.WishlistRemoveItem(deps.WishlistService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.Checkout(deps.OrderService, logg))
			r.Get("/", controllers.OrderList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrderService, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.OrderService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole(string(enums.UserRoleAdmin), logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(deps.ProductService, logg))
			r.Post("/", controllers.AdminCreateProduct(deps.ProductService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(deps.ProductService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.ProductService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(deps.OrderService, logg))
			r.Patch("/{orderId}", controllers.AdminOrderUpdateStatus(deps.OrderService, logg))
		})
	})

	return r
}
