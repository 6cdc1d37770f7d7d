// Package httpapi exposes the on-demand feeding check over HTTP.
package httpapi

import (
	"net/http"
	"time"

	"fishcare_notifier/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// Options configures the router.
type Options struct {
	CORSAllowOrigins  []string
	RateLimitRequests int // per client IP on the check endpoint; 0 disables
	RateLimitWindow   time.Duration
	TrustProxyHeaders bool // take the client IP from X-Forwarded-For / X-Real-IP
}

// NewRouter builds the chi router with middleware and routes.
func NewRouter(reminders app.ReminderService, logger *logrus.Entry, opts Options) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if opts.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	c := corslib.New(corslib.Options{
		AllowedOrigins: opts.CORSAllowOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	r.Use(c.Handler)

	h := NewFeedingHandler(reminders, logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Route("/api/feeding/check-schedule", func(r chi.Router) {
		if opts.RateLimitRequests > 0 && opts.RateLimitWindow > 0 {
			r.Use(RateLimit(opts.RateLimitRequests, opts.RateLimitWindow))
		}
		r.Get("/", h.CheckSchedule)
		r.Post("/", h.CheckSchedule)
	})

	return r
}
