package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppopeskul/wa-inbox/internal/api"
	"github.com/ppopeskul/wa-inbox/internal/handler"
	"github.com/ppopeskul/wa-inbox/internal/middleware"
)

func setupRouter(h *handler.Handler, tokens middleware.TokenValidator, requireToken bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, "api/openapi.yaml")
	})

	r.Handle("/metrics", promhttp.Handler())

	return api.HandlerWithOptions(h, api.ChiServerOptions{
		BaseRouter: r,
		Middlewares: []api.MiddlewareFunc{
			middleware.BearerAuth(tokens, requireToken),
		},
		ErrorHandlerFunc: h.ParamError,
	})
}
