package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter wires the storefront pages and the JSON API onto one chi router.
func NewRouter(h *Handler, logger *zap.Logger, requestTimeout time.Duration) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Global middleware. The access log sits inside the request id so it can
	// log it, and outside the recoverer so panics show up as 500s.
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}
	r.Use(middleware.Compress(5))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(view.Static()))))

	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware)

		r.Get("/", h.Index)
		r.Get("/cart/badge", h.CartBadge)
		r.Post("/cart/add", h.AddToCart)
		r.Post("/cart/increment", h.Increment)
		r.Post("/cart/decrement", h.Decrement)
		r.Post("/cart/remove", h.RemoveFromCart)
		r.Post("/order/confirm", h.ConfirmOrder)
		r.Post("/order/new", h.StartNewOrder)

		// API routes
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/products", h.ListProducts)
			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/confirm", h.ConfirmCart)
				r.Post("/items", h.AddItem)
				r.Put("/items", h.UpdateItem)
				r.Delete("/items", h.RemoveItem)
			})
		})
	})

	return r
}
