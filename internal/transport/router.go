package transport

import (
	"net/http"

	"sokoni-be/internal/logger"
	"sokoni-be/internal/middleware"
	"sokoni-be/internal/utils"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	SecretKey     []byte
	SecureCookies bool
	// Limiter defaults to a fresh limiter with the internal tier disabled.
	Limiter *middleware.RateLimiter
	// Playground serves the GraphQL playground at /playground.
	Playground bool
}

func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter("")
	}

	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)

	r.Get("/health", h.Health)
	r.Get("/metrics", h.ServeMetrics)
	if cfg.Playground && h.Graph != nil {
		r.Get("/playground", playground.Handler("GraphQL Playground", "/query"))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.SecureCookies))
		r.Use(middleware.Auth(cfg.SecretKey))
		r.Use(limiter.Middleware)

		r.Get("/products", h.ListProducts)
		r.Get("/products/{id}", h.GetProduct)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/add/{id}", h.AddToCart)
			r.Post("/update", h.UpdateCart)
			r.Delete("/{id}", h.RemoveFromCart)
		})

		r.Get("/checkout", h.PreviewCheckout)
		r.Post("/checkout", h.PlaceOrder)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListOrders)
			r.Get("/{number}", h.GetOrder)
			r.With(middleware.RequireRole(utils.RoleAdmin)).Patch("/{number}/status", h.UpdateOrderStatus)
		})

		if h.Graph != nil {
			r.Method(http.MethodGet, "/query", h.Graph)
			r.Method(http.MethodPost, "/query", h.Graph)
		}
	})

	return r
}
