package rest

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gotodo/internal/logging"
	"github.com/dmitrijs2005/gotodo/internal/server/auth"
	"github.com/dmitrijs2005/gotodo/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyChecker returns nil when the storage backend can serve requests.
type ReadyChecker func(ctx context.Context) error

type API struct {
	users    *services.UserService
	tokens   *services.TokenService
	tasks    *services.TaskService
	ready    ReadyChecker
	logger   logging.Logger
	registry *prometheus.Registry
	metrics  *metrics
}

func NewAPI(us *services.UserService, ts *services.TokenService, tks *services.TaskService, ready ReadyChecker, l logging.Logger) *API {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &API{
		users:    us,
		tokens:   ts,
		tasks:    tks,
		ready:    ready,
		logger:   l.With("module", "rest"),
		registry: registry,
		metrics:  newMetrics(registry),
	}
}

// Handler builds the routed handler with its middleware chain.
func (a *API) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Use(a.metrics.middleware)

	access := func(h http.HandlerFunc) http.Handler { return a.requireToken(auth.TokenTypeAccess, h) }
	refresh := func(h http.HandlerFunc) http.Handler { return a.requireToken(auth.TokenTypeRefresh, h) }

	r.HandleFunc("/registration", a.register).Methods(http.MethodPost)
	r.HandleFunc("/login", a.login).Methods(http.MethodPost)
	r.Handle("/logout/access", access(a.logoutAccess)).Methods(http.MethodPost)
	r.Handle("/logout/refresh", refresh(a.logoutRefresh)).Methods(http.MethodPost)
	r.HandleFunc("/token/refresh", a.refreshToken).Methods(http.MethodPost)

	r.Handle("/todos", access(a.listTasks)).Methods(http.MethodGet)
	r.Handle("/todos", access(a.createTask)).Methods(http.MethodPost)
	r.Handle("/todos/{id}", access(a.getTask)).Methods(http.MethodGet)
	r.Handle("/todos/{id}", access(a.updateTask)).Methods(http.MethodPut)
	r.Handle("/todos/{id}", access(a.deleteTask)).Methods(http.MethodDelete)

	r.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)
	r.HandleFunc("/readyz", a.readyz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return chain(r, a.requestID, a.logRequests, a.recoverPanic)
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) readyz(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		if err := a.ready(r.Context()); err != nil {
			a.logger.Warn(r.Context(), "not ready", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
