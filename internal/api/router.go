// PostPulse - Content Performance Prediction for Attention Markets
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router builds the HTTP routing tree for the service.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a router from a handler and middleware factory.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	if mw == nil {
		mw = NewMiddleware(nil)
	}
	return &Router{
		handler:    handler,
		middleware: mw,
	}
}

// Setup builds the chi routing tree. Middleware order matters:
// request ID first so every later log line carries it, then proxy IP
// resolution, panic recovery, and CORS. Rate limiting applies to the
// versioned API only, never to health or metrics probes.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.middleware.CORS())

	r.Get("/healthz", rt.handler.HandleHealth)
	r.Get("/readyz", rt.handler.HandleReady)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.middleware.RateLimit())

		r.Post("/predict", rt.handler.HandlePredict)
		r.Post("/predict/batch", rt.handler.HandlePredictBatch)
		r.Post("/train", rt.handler.HandleTrain)
		r.Post("/etl/populate", rt.handler.HandlePopulate)
		r.Post("/content/observe", rt.handler.HandleObserve)
		r.Get("/models/status", rt.handler.HandleModelStatus)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusNotFound, ErrCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	return r
}
