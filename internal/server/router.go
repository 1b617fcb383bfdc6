// Package server assembles the HTTP router from the auth and catalog handlers.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"argip-api/internal/auth"
	"argip-api/internal/catalog"
	"argip-api/internal/middleware"
)

const (
	serviceName    = "Argip Auth API"
	serviceVersion = "1.0.0"
	readyTimeout   = 2 * time.Second

	// Rate limiter buckets idle for rateLimitIdle are swept every rateLimitSweep.
	rateLimitSweep = time.Minute
	rateLimitIdle  = 10 * time.Minute
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Users   *auth.Service
	Tokens  *auth.TokenService
	Catalog *catalog.Store
	DB      Pinger
	Logger  *logrus.Logger

	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int

	// Context bounds background work such as the rate limiter sweep.
	// Nil means it runs for the life of the process.
	Context context.Context
}

// NewRouter wires every route. Logging, metrics and CORS wrap the router from
// outside, so 404s, 405s and preflights are logged and counted too, and
// preflights are answered before route matching.
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}

	r := mux.NewRouter()
	r.Use(middleware.RouteTemplate)

	r.HandleFunc("/", rootHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	r.HandleFunc("/ready", readyHandler(d.DB)).Methods(http.MethodGet)
	r.Handle("/metrics", middleware.MetricsHandler()).Methods(http.MethodGet)

	r.Handle("/register", auth.RegisterHandler(d.Users)).Methods(http.MethodPost)
	r.Handle("/login", auth.LoginHandler(d.Users, d.Tokens)).Methods(http.MethodPost)
	r.Handle("/me", auth.JWTMiddleware(d.Users, d.Tokens)(auth.MeHandler())).Methods(http.MethodGet)

	catalog.NewHandler(d.Catalog).Routes(r.PathPrefix("/api").Subrouter())

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.JSONResponse(w, http.StatusNotFound, middleware.ErrorBody{Detail: "Not Found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		middleware.JSONResponse(w, http.StatusMethodNotAllowed, middleware.ErrorBody{Detail: "Method Not Allowed"})
	})

	var h http.Handler = r
	if d.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(d.RateLimitRPS, d.RateLimitBurst)
		limiter.StartCleanup(ctx, rateLimitSweep, rateLimitIdle)
		h = limiter.Handler(h)
	}
	h = middleware.NewCORS(d.AllowedOrigins).Handler(h)
	h = middleware.Metrics(h)
	return middleware.RequestLogger(log)(h)
}

func rootHandler(w http.ResponseWriter, _ *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, map[string]string{
		"message": serviceName + " is running",
		"version": serviceVersion,
	})
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readyHandler reports whether the database answers a ping.
func readyHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			middleware.JSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			middleware.LoggerFromContext(r.Context()).WithError(err).Warn("readiness check failed")
			middleware.JSONResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
