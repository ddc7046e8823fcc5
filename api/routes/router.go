package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopease/shopease-engine/api/handlers"
	"github.com/shopease/shopease-engine/api/middleware"
	"github.com/shopease/shopease-engine/internal/cart"
	"github.com/shopease/shopease-engine/internal/checkout"
	"github.com/shopease/shopease-engine/internal/orders"
	"github.com/shopease/shopease-engine/internal/session"
	"github.com/shopease/shopease-engine/internal/wishlist"
	"github.com/shopease/shopease-engine/pkg/config"
	"github.com/shopease/shopease-engine/pkg/logger"
)

// RouterParams carries everything the view surface exposes.
type RouterParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	Cart       *cart.Engine
	Wishlist   *wishlist.Engine
	Session    *session.Manager
	Calculator *checkout.Calculator
	Orders     *orders.Service
	// PollInterval is the order-watch cadence; zero uses the watcher default.
	PollInterval time.Duration
	Registry     *prometheus.Registry
}

// NewRouter exposes the state engines to the local view layer.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(params.Logger),
		middleware.RequestID(params.Logger),
		middleware.Logging(params.Logger),
	)

	r.Get("/healthz", handlers.Healthz(params.Config))
	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handlers.CartState(params.Cart, params.Logger))
			r.Post("/lines", handlers.CartAdd(params.Cart, params.Logger))
			r.Patch("/lines/{productId}", handlers.CartSetQuantity(params.Cart, params.Logger))
			r.Delete("/lines/{productId}", handlers.CartRemove(params.Cart, params.Logger))
			r.Delete("/", handlers.CartClear(params.Cart, params.Logger))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", handlers.WishlistState(params.Wishlist, params.Logger))
			r.Post("/items", handlers.WishlistAdd(params.Wishlist, params.Logger))
			r.Post("/toggle", handlers.WishlistToggle(params.Wishlist, params.Logger))
			r.Delete("/items/{productId}", handlers.WishlistRemove(params.Wishlist, params.Logger))
			r.Delete("/", handlers.WishlistClear(params.Wishlist, params.Logger))
		})

		r.Route("/session", func(r chi.Router) {
			r.Get("/", handlers.SessionState(params.Session, params.Logger))
			r.Post("/login", handlers.SessionLogin(params.Session, params.Logger))
			r.Post("/register", handlers.SessionRegister(params.Session, params.Logger))
			r.Post("/logout", handlers.SessionLogout(params.Session, params.Logger))
			r.Post("/refresh", handlers.SessionRefresh(params.Session, params.Logger))
			r.Post("/acknowledge-expired", handlers.SessionAcknowledgeExpired(params.Session, params.Logger))
		})

		r.Post("/routes/evaluate", handlers.RouteEvaluate(params.Session, params.Logger))

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/totals", handlers.CheckoutTotals(params.Cart, params.Calculator, params.Logger))
			r.Post("/address", handlers.CheckoutValidateAddress(params.Logger))
			r.Post("/payment", handlers.CheckoutValidatePayment(params.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", handlers.OrderPlace(params.Cart, params.Calculator, params.Orders, params.Logger))
			r.Get("/{orderId}", handlers.OrderGet(params.Orders, params.Logger))
			r.Get("/{orderId}/watch", handlers.OrderWatch(params.Orders, params.PollInterval, params.Logger))
			r.Post("/{orderId}/cancel", handlers.OrderCancel(params.Orders, params.Logger))
		})
	})

	return r
}
