package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/weepush/weepush/internal/metrics"
)

// newRouter serves Prometheus metrics, the JSON snapshot and a health probe.
func newRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", metrics.PromHandler())
	r.Method(http.MethodGet, "/status", metrics.JSONHandler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !metrics.GetSnapshot().RelayConnected {
			http.Error(w, "relay disconnected", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
