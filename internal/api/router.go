package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/corey888773/notification-scheduler/internal/api/handler"
	apimw "github.com/corey888773/notification-scheduler/internal/api/middleware"
	"github.com/corey888773/notification-scheduler/internal/dispatch"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the admission API's
// HTTP surface area. reqDuration instruments every route with a
// request-duration histogram; it is nil-safe (a no-op middleware if nil).
func NewRouter(
	svc *dispatch.Service,
	logger *zap.Logger,
	reqDuration func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)             // recover panics, return 500
	r.Use(chimw.RealIP)                // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20))  // 1 MB max request body
	r.Use(apimw.CorrelationID)         // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))
	if reqDuration != nil {
		r.Use(reqDuration)
	}

	nh := handler.NewNotificationHandler(svc, logger)
	hh := handler.NewHealthHandler()

	r.Get("/health", hh.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/notifications", nh.Create)
		r.Get("/notifications", nh.List)
		r.Delete("/notifications/{id}", nh.Cancel)
	})

	return r
}
