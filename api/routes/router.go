package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ducoin/boucherie-backend/api/controllers"
	"github.com/ducoin/boucherie-backend/api/middleware"
	"github.com/ducoin/boucherie-backend/internal/auth"
	"github.com/ducoin/boucherie-backend/internal/cart"
	"github.com/ducoin/boucherie-backend/internal/orders"
	"github.com/ducoin/boucherie-backend/internal/payments"
	"github.com/ducoin/boucherie-backend/internal/products"
	"github.com/ducoin/boucherie-backend/pkg/auth/session"
	"github.com/ducoin/boucherie-backend/pkg/config"
	"github.com/ducoin/boucherie-backend/pkg/db"
	"github.com/ducoin/boucherie-backend/pkg/enums"
	"github.com/ducoin/boucherie-backend/pkg/logger"
	"github.com/ducoin/boucherie-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	SessionChecker  session.AccessSessionChecker
	AuthService     auth.Service
	RegisterService auth.RegisterService
	ProductService  products.Service
	CartService     cart.Service
	PaymentService  payments.Service
	OrderService    orders.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.ThrottlePolicy{
		Surface:    "login",
		Window:     cfg.AuthRateLimit.LoginWindow,
		PerIP:      cfg.AuthRateLimit.LoginIPLimit,
		PerAccount: cfg.AuthRateLimit.LoginEmailLimit,
	}
	registerPolicy := middleware.ThrottlePolicy{
		Surface:    "register",
		Window:     cfg.AuthRateLimit.RegisterWindow,
		PerIP:      cfg.AuthRateLimit.RegisterIPLimit,
		PerAccount: cfg.AuthRateLimit.RegisterEmailLimit,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Redis, logg))
		r.With(middleware.AuthThrottle(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(middleware.AuthThrottle(registerPolicy, deps.Redis, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(deps.ProductService, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.ProductService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.SessionChecker, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartService, logg))
			r.Post("/", controllers.CartAdd(deps.CartService, logg))
			r.Put("/{productId}", controllers.CartUpdate(deps.CartService, logg))
			r.Delete("/", controllers.CartRemove(deps.CartService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-payment-intent", controllers.PaymentCreateIntent(deps.PaymentService, logg))
			r.Post("/confirm-payment", controllers.PaymentConfirm(deps.PaymentService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.OrderService, logg))
			r.Get("/last", controllers.OrdersLast(deps.OrderService, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleAdmin, logg))
			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.AdminProductCreate(deps.ProductService, logg))
				r.Patch("/{productId}", controllers.AdminProductUpdate(deps.ProductService, logg))
				r.Delete("/{productId}", controllers.AdminProductDelete(deps.ProductService, logg))
			})
		})
	})

	return r
}
