package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/metrics"
)

// RouterConfig configures the HTTP middleware stack.
type RouterConfig struct {
	Logger         *zap.Logger
	APIKeys        []string
	AllowedOrigins []string
}

// NewRouter mounts the API routes of s behind the middleware stack.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gochi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	// The event stream hijacks the connection, so it stays out of the gzip group.
	r.Get("/sessions/{id}/events", s.SessionEvents)

	r.Group(func(r gochi.Router) {
		r.Use(gzipMiddleware)

		r.Post("/sessions", s.CreateSession)
		r.Route("/sessions/{id}", func(r gochi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)

			r.Put("/mode", s.SetMode)
			r.Put("/distance", s.SetDistance)
			r.Put("/coordinates/{axis}", s.SetCoordinate)
			r.Put("/price", s.SetPriceRange)
			r.Put("/term", s.SetTerm)

			r.Post("/search", s.Search)
			r.Post("/pages/{page}", s.GotoPage)
			r.Post("/next", s.NextPage)
			r.Post("/previous", s.PreviousPage)
			r.Post("/fast-forward", s.FastForward)

			r.Post("/image", s.SubmitImage)
			r.Post("/thumbnails/{restaurantID}/error", s.ThumbnailFailed)
		})

		r.Get("/restaurants/{id}", s.GetRestaurant)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeBadRequest, "method not allowed")
	})

	return r
}
