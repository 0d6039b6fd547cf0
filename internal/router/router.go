package router

import (
	"net/http"

	"premi-cart/internal/handler"
	"premi-cart/internal/middleware"
	"premi-cart/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Options configures the cross-cutting middleware.
type Options struct {
	AllowedOrigin string
	CookieName    string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	checkoutHandler *handler.CheckoutHandler,
	registry *session.Registry,
	opts Options,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Apply middleware in order: Recovery -> Logging -> CORS -> Session
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS(opts.AllowedOrigin))
	r.Use(middleware.Session(registry, opts.CookieName, logger))

	// Health check endpoint (no session required)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.Get)
			r.Delete("/", cartHandler.Clear)
			r.Post("/items", cartHandler.AddItem)
			r.Post("/items/{id}/increment", cartHandler.Increment)
			r.Post("/items/{id}/decrement", cartHandler.Decrement)
			r.Delete("/items/{id}", cartHandler.Remove)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/", checkoutHandler.State)
			r.Post("/", checkoutHandler.Open)
			r.Delete("/", checkoutHandler.Reset)
			r.Put("/extras", checkoutHandler.SetExtras)
			r.Get("/preview", checkoutHandler.Preview)
			r.Post("/submit", checkoutHandler.Submit)
		})
	})

	return r
}
