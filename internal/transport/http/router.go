package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/key-verify-api/internal/application/status"
	"github.com/key-verify-api/internal/application/verify"
	"github.com/key-verify-api/internal/config"
	"github.com/key-verify-api/internal/transport/http/handler"
	appmiddleware "github.com/key-verify-api/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(appmiddleware.ClientIP(cfg.TrustProxyHeaders))
	r.Use(appmiddleware.RequestLogger(logger))
	r.Use(appmiddleware.Recover(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	verifySvc := verify.NewService(verify.ServiceDeps{
		Store:     deps.Store,
		Publisher: deps.Publisher,
		Metrics:   deps.Metrics,
		Logger:    logger.Named("verify"),
		Timeout:   cfg.StoreTimeout,
	})
	statusSvc := status.NewService(status.ServiceDeps{
		Store:   deps.Store,
		Metrics: deps.Metrics,
		Logger:  logger.Named("status"),
		Timeout: cfg.StoreTimeout,
	})

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerifyHandler(verifySvc)
	statusH := handler.NewStatusHandler(statusSvc)

	r.Get("/api/health", healthH.Ping)
	r.With(appmiddleware.Instrument(deps.Metrics, "verify")).Post("/api/verify", verifyH.Verify)
	r.With(appmiddleware.Instrument(deps.Metrics, "status")).Get("/api/status", statusH.Get)

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return r
}
