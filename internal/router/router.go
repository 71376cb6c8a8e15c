package router

import (
	"net/http"

	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Session  *handler.SessionHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	h Handlers,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Recovery -> Logging -> Instrument -> CORS -> Session -> APIKeyAuth
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Instrument(m))
	r.Use(middleware.CORS)
	r.Use(middleware.Session(logger))
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Product.List)
			r.Get("/selected", h.Product.Selected)
			r.Get("/{id}", h.Product.GetByID)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.Get)
			r.Post("/items", h.Cart.AddItem)
			r.Delete("/items/{key}", h.Cart.RemoveItem)
			r.Post("/items/{key}/select", h.Cart.SelectItem)
		})

		r.Post("/auth/session", h.Session.SignIn)
		r.Delete("/auth/session", h.Session.SignOut)

		r.Get("/checkout", h.Checkout.Summary)
		r.Post("/checkout", h.Checkout.Submit)
	})

	return r
}
