package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"phonescout","status":"operational"}`))
	})
	r.Get("/health", apiHandler.HealthHandler)
	r.Get("/health/live", apiHandler.LivenessHandler)
	r.Get("/health/ready", apiHandler.ReadinessHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/chat", apiHandler.ChatHandler)
		r.Get("/products", apiHandler.ListProductsHandler)
		r.Get("/products/{productID}", apiHandler.GetProductHandler)
		r.Post("/compare", apiHandler.CompareHandler)
	})

	return r
}
