package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/company"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/job"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/user"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/web"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/utilities"
)

const requestIDHeader = "X-Request-ID"

// Deps are the handlers and services the routes are mounted on.
type Deps struct {
	Logger         *zap.SugaredLogger
	Companies      *company.Handler
	Jobs           *job.Handler
	Users          *user.Handler
	Auth           *auth.Handler
	Tokens         *auth.TokenService
	AllowedOrigins []string
	// Ping reports database health; nil skips the check.
	Ping func(context.Context) error
}

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestIDMiddleware tags every request with a KSUID, reusing one supplied
// by the caller.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = utilities.NewKSUID()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", r.Header.Get(requestIDHeader),
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	})
}

// RegisterRoutes mounts every endpoint on a standard library ServeMux and
// wraps it in the middleware chain.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()
	lg := d.Logger

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			if err := d.Ping(r.Context()); err != nil {
				lg.Warnw("health check failed", "err", err)
				web.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		web.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /companies", d.Companies.Search)
	mux.HandleFunc("POST /companies", d.Companies.Create)
	mux.HandleFunc("GET /companies/{handle}", d.Companies.Get)
	mux.HandleFunc("PATCH /companies/{handle}", d.Companies.Update)
	mux.HandleFunc("DELETE /companies/{handle}", d.Companies.Delete)

	mux.HandleFunc("GET /jobs", d.Jobs.Search)
	mux.HandleFunc("POST /jobs", d.Jobs.Create)
	mux.HandleFunc("GET /jobs/{id}", d.Jobs.Get)
	mux.HandleFunc("PATCH /jobs/{id}", d.Jobs.Update)
	mux.HandleFunc("DELETE /jobs/{id}", d.Jobs.Delete)

	mux.HandleFunc("GET /users", d.Users.List)
	mux.HandleFunc("POST /users", d.Users.Create)
	mux.HandleFunc("GET /users/{username}", d.Users.Get)
	mux.Handle("PATCH /users/{username}", auth.RequireUser("username", lg, http.HandlerFunc(d.Users.Update)))
	mux.Handle("DELETE /users/{username}", auth.RequireUser("username", lg, http.HandlerFunc(d.Users.Delete)))

	mux.HandleFunc("POST /auth/login", d.Auth.Login)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		web.WriteJSON(w, http.StatusNotFound, web.ErrorBody{Status: http.StatusNotFound, Message: "Not Found"})
	})

	var h http.Handler = mux
	h = auth.Authenticate(d.Tokens, lg)(h)
	h = SecurityHeadersMiddleware()(h)
	h = corsMiddleware(d.AllowedOrigins)(h)
	h = middleware.Timeout(60 * time.Second)(h)
	h = middleware.Recoverer(h)
	h = LoggingMiddleware(lg)(h)
	h = RequestIDMiddleware(h)
	h = middleware.RealIP(h)
	return h
}
