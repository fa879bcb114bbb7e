package wire

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"user-admin/internal/adaptor"
	"user-admin/internal/data/repository"
	"user-admin/internal/usecase"
	"user-admin/pkg/database"
	"user-admin/pkg/middleware"
	"user-admin/pkg/session"
	"user-admin/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const roleAdmin = "ROLE_ADMIN"

// App holds the wired router and the services the entrypoint needs for
// startup jobs.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// guards are the middleware chains shared by the feature routes.
type guards struct {
	bearer  func(http.Handler) http.Handler
	browser func(http.Handler) http.Handler
	admin   func(http.Handler) http.Handler
}

// Wiring builds every dependency on top of db and returns the router.
func Wiring(db database.PgxIface, config *utils.Config, logger *zap.Logger) (*App, error) {
	repo := repository.NewRepository(db, logger)
	service := usecase.NewService(repo, config, logger)

	views, err := adaptor.NewViews(logger)
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}
	sessions, err := session.NewManager(config.Session, logger)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	intents := utils.NewIntentTokens([]byte(config.Session.Key), config.Session.TTL)

	handler := adaptor.NewHandler(service, views, sessions, intents, config, logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := setupRouter(handler, service, sessions, db, registry, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}, nil
}

func setupRouter(
	handler *adaptor.Handler,
	service *usecase.Service,
	sessions *session.Manager,
	db database.PgxIface,
	registry *prometheus.Registry,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()
	onError := handler.Errors.Handle

	// Apply global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.NewMetrics(registry).Middleware)
	r.Use(middleware.Recover(logger, onError))

	r.NotFound(handler.Errors.NotFound)
	r.MethodNotAllowed(handler.Errors.MethodNotAllowed)

	g := guards{
		bearer:  middleware.BearerAuth(service.Auth, onError),
		browser: browserChain(sessions, service.Auth, handler.Errors, config, logger),
		admin:   middleware.RequireRole(roleAdmin, logger, onError),
	}

	// Apply routes
	wireAuth(r, handler.Auth, g)
	wireUser(r, handler.User, g)
	wireUserGroup(r, handler.UserGroup, g)
	wireAdmin(r, handler.Admin, g)

	r.Get("/health", healthHandler(db, logger))
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	return r
}

// healthHandler reports whether the database answers a ping.
func healthHandler(db database.PgxIface, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Error("Health check failed", zap.Error(err))
			utils.ResponseError(w, http.StatusServiceUnavailable, "database unavailable", nil)
			return
		}
		utils.ResponseSuccess(w, map[string]string{"status": "ok"})
	}
}
