package server

import (
	"net/http"
	"time"

	"Registration-Intake/internals/config"
	"Registration-Intake/internals/credentials"
	"Registration-Intake/internals/handlers/registration"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// NewRouter mounts the registration routes and wraps them with CORS and access logging.
func NewRouter(cfg *config.Config, store registration.Registrar, hasher credentials.Hasher, logger zerolog.Logger) http.Handler {
	router := http.NewServeMux()
	register := registration.RegisterHandler(store, hasher)
	router.HandleFunc("/register", register)     // form target
	router.HandleFunc("/api/register", register) // same handler under the api prefix
	router.HandleFunc("/healthz", Healthz)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})

	var handler http.Handler = c.Handler(router)
	handler = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	})(handler)
	handler = hlog.RequestIDHandler("req_id", "X-Request-Id")(handler)
	handler = hlog.NewHandler(logger)(handler)
	return handler
}

// New builds the HTTP server for cfg.
func New(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// Healthz reports liveness without touching the database.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
