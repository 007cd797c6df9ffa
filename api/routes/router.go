package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atlasmedina/medina-backend/api/controllers"
	"github.com/atlasmedina/medina-backend/api/middleware"
	authsvc "github.com/atlasmedina/medina-backend/internal/auth"
	cartsvc "github.com/atlasmedina/medina-backend/internal/cart"
	categorysvc "github.com/atlasmedina/medina-backend/internal/categories"
	checkoutsvc "github.com/atlasmedina/medina-backend/internal/checkout"
	"github.com/atlasmedina/medina-backend/internal/notifications"
	ordersvc "github.com/atlasmedina/medina-backend/internal/orders"
	productsvc "github.com/atlasmedina/medina-backend/internal/products"
	statsvc "github.com/atlasmedina/medina-backend/internal/stats"
	"github.com/atlasmedina/medina-backend/pkg/config"
	"github.com/atlasmedina/medina-backend/pkg/logger"
	"github.com/atlasmedina/medina-backend/pkg/metrics"
)

// Deps carries everything the HTTP surface needs. Nil optional members
// (metrics, readiness pingers) disable the matching routes gracefully.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Sessions middleware.SessionChecker
	Metrics  *metrics.HTTPMetrics

	// Readiness probes keyed by dependency name.
	Pingers map[string]controllers.Pinger

	AuthService     authsvc.Service
	ProductService  productsvc.Service
	CategoryService categorysvc.Service
	CartService     cartsvc.Service
	CheckoutService checkoutsvc.Service
	OrderService    ordersvc.Service
	StatsService    statsvc.Service
	Badge           *notifications.Counter
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Metrics(deps.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", controllers.ListProducts(deps.ProductService, logg))
		r.Get("/products/{productId}", controllers.GetProduct(deps.ProductService, logg))
		r.Get("/categories", controllers.ListCategories(deps.CategoryService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartToken(logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.CartService, logg))
				r.Delete("/", controllers.ClearCart(deps.CartService, logg))
				r.Post("/items", controllers.AddCartItem(deps.CartService, logg))
				r.Put("/items", controllers.UpdateCartItem(deps.CartService, logg))
				r.Delete("/items/{productId}", controllers.RemoveCartItem(deps.CartService, logg))
			})

			r.Post("/checkout", controllers.Checkout(deps.CheckoutService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if !cfg.App.IsProd() {
				r.Post("/register", controllers.Register(deps.AuthService, logg))
			}
			r.Post("/login", controllers.Login(deps.AuthService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

			r.Post("/auth/logout", controllers.Logout(deps.AuthService, logg))
			r.Patch("/auth/credentials", controllers.UpdateCredentials(deps.AuthService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.AdminListOrders(deps.OrderService, logg))
				r.Get("/{orderId}", controllers.AdminGetOrder(deps.OrderService, logg))
				r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(deps.OrderService, logg))
				r.Delete("/{orderId}", controllers.AdminDeleteOrder(deps.OrderService, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", controllers.AdminListProducts(deps.ProductService, logg))
				r.Post("/", controllers.AdminCreateProduct(deps.ProductService, logg))
				r.Get("/{productId}", controllers.AdminGetProduct(deps.ProductService, logg))
				r.Patch("/{productId}", controllers.AdminUpdateProduct(deps.ProductService, logg))
				r.Delete("/{productId}", controllers.AdminDeleteProduct(deps.ProductService, logg))
				r.Post("/{productId}/images", controllers.AdminUploadProductImages(deps.ProductService, logg))
				r.Delete("/{productId}/images", controllers.AdminRemoveProductImage(deps.ProductService, logg))
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.AdminListCategories(deps.CategoryService, logg))
				r.Post("/", controllers.AdminCreateCategory(deps.CategoryService, logg))
				r.Get("/{categoryId}", controllers.AdminGetCategory(deps.CategoryService, logg))
				r.Patch("/{categoryId}", controllers.AdminUpdateCategory(deps.CategoryService, logg))
				r.Delete("/{categoryId}", controllers.AdminDeleteCategory(deps.CategoryService, logg))
			})

			r.Get("/dashboard", controllers.AdminDashboard(deps.StatsService, logg))
			r.Get("/notifications/badge", controllers.AdminNotificationBadge(deps.Badge, logg))
		})
	})

	return r
}
