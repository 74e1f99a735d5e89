package api

import (
	"github.com/gorilla/mux"

	"github.com/shehryarbajwa/cf-calendar-api/internal/proxy"
	"github.com/shehryarbajwa/cf-calendar-api/internal/ratelimit"
)

// SetupRoutes configures all HTTP routes.
func (h *Handler) SetupRoutes(proxyServer *proxy.Server, limiter *ratelimit.Limiter, requestsPerHour int) *mux.Router {
	r := mux.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(corsMiddleware)

	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	// Scraping endpoints (rate limited). Both route variants serve the
	// same handler.
	limited := r.PathPrefix("").Subrouter()
	limited.Use(RateLimitMiddleware(limiter, requestsPerHour))
	limited.HandleFunc("/user/{username}", h.GetCalendar).Methods("GET")
	limited.HandleFunc("/calendar/{username}", h.GetCalendar).Methods("GET")

	// Debug endpoint (not rate limited).
	r.HandleFunc("/v1/debug/ws", proxyServer.HandleDebugConnection).Methods("GET")

	return r
}
