package adminapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aeonsync/core/internal/adminapi/handlers"
	adminmw "github.com/aeonsync/core/internal/adminapi/middleware"
	"github.com/aeonsync/core/internal/logger"
	"github.com/aeonsync/core/pkg/conflict"
	"github.com/aeonsync/core/pkg/queue"
	"github.com/aeonsync/core/pkg/sync"
)

// Deps wires the components the admin surface reports on. Registry
// may be nil (metrics disabled), in which case /metrics serves an
// empty exposition. Queue and Coordinator are optional: when nil,
// their introspection routes are not registered.
type Deps struct {
	Resolver    *conflict.Resolver
	Queue       *queue.Queue
	Coordinator *sync.Coordinator
	Registry    *prometheus.Registry
	JWTSecret   string
}

// NewRouter builds the chi router for the admin HTTP surface: health
// and Prometheus metrics are unauthenticated; conflict listing is
// read-only and unauthenticated; conflict resolution is the one
// mutating route and sits behind JWTAuth.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", handlers.Health)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	conflictHandler := handlers.NewConflictHandler(deps.Resolver)
	r.Route("/api/v1/conflicts", func(r chi.Router) {
		r.Get("/", conflictHandler.List)
		r.Get("/stats", conflictHandler.Stats)
		r.Group(func(r chi.Router) {
			r.Use(adminmw.JWTAuth(deps.JWTSecret))
			r.Post("/{id}/resolve", conflictHandler.Resolve)
		})
	})

	r.Route("/api/v1/schema", func(r chi.Router) {
		r.Get("/operation", handlers.OperationSchema)
		r.Get("/config", handlers.ConfigSchema)
	})

	if deps.Queue != nil {
		queueHandler := handlers.NewQueueHandler(deps.Queue)
		r.Get("/api/v1/queue/stats", queueHandler.Stats)
	}
	if deps.Coordinator != nil {
		coordinatorHandler := handlers.NewCoordinatorHandler(deps.Coordinator)
		r.Get("/api/v1/sync/stats", coordinatorHandler.Stats)
	}

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.Info("admin api request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}
