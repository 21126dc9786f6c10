// Package server provides the HTTP REST API for the CareerDesk admin
// dashboard backend.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/careerdesk/careerdesk-api/internal/config"
	"github.com/careerdesk/careerdesk-api/internal/counters"
	"github.com/careerdesk/careerdesk-api/internal/db"
	"github.com/careerdesk/careerdesk-api/internal/server/middleware"
	"github.com/careerdesk/careerdesk-api/internal/server/ratelimit"
	"github.com/careerdesk/careerdesk-api/internal/types"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	rdb         *redis.Client
	store       Store
	counters    CounterSink
	counterSvc  *counters.Service
	passwords   *config.PasswordConfig
	jwtService  *JWTService
	authHandler *AuthHandler
	rateLimiter *ratelimit.Limiter
}

// New creates a new server instance
func New(cfg *config.Config) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	database.PublicBaseURL = cfg.PublicBaseURL

	s := &Server{
		db:    database,
		store: database,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	// Redis is optional: without it the counters write straight to the
	// database and logout is client-side only.
	if cfg.RedisURL != "" {
		rdb, err := counters.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.rdb = rdb
	}

	counterSvc := counters.New(s.rdb, database)
	s.counterSvc = counterSvc
	s.counters = counterSvc

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.passwords = passwordConfig

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	var revocations RevocationStore
	if s.rdb != nil {
		revocations = NewRedisRevocationStore(s.rdb)
	}
	s.jwtService = NewJWTService(jwtConfig, revocations)

	authService := NewAuthService(cfg, passwordConfig, database)
	s.authHandler = NewAuthHandler(authService, s.jwtService)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the router. Every route lands in one of three tiers:
// public, any authenticated principal, or admin only.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	authed := middleware.Authenticate(s.jwtService.AsTokenValidator())
	adminOnly := func(h http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(types.RoleAdmin)(h))
	}

	// Public endpoints
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("GET /job-logos/{job_id}/{filename}", s.handleGetJobLogo)

	// Any authenticated principal
	mux.Handle("GET /auth/me", authed(http.HandlerFunc(s.authHandler.Me)))
	mux.Handle("POST /auth/logout", authed(http.HandlerFunc(s.authHandler.Logout)))
	mux.Handle("GET /jobs", authed(http.HandlerFunc(s.handleListJobs)))
	mux.Handle("GET /jobs/search", authed(http.HandlerFunc(s.handleSearchJobs)))
	mux.Handle("GET /jobs/{id}", authed(http.HandlerFunc(s.handleGetJob)))
	mux.Handle("POST /jobs/{id}/apply-click", authed(http.HandlerFunc(s.handleApplyClick)))
	mux.Handle("GET /counselors/{id}", authed(http.HandlerFunc(s.handleGetCounselor)))

	// Admin only
	mux.Handle("POST /jobs", adminOnly(s.handleCreateJob))
	mux.Handle("PUT /jobs/{id}", adminOnly(s.handleUpdateJob))
	mux.Handle("DELETE /jobs/{id}", adminOnly(s.handleDeleteJob))
	mux.Handle("POST /counselors", adminOnly(s.handleCreateCounselor))
	mux.Handle("GET /counselors", adminOnly(s.handleListCounselors))
	mux.Handle("DELETE /counselors/{id}", adminOnly(s.handleDeleteCounselor))

	// Admin or the counselor themselves; the handler enforces ownership.
	mux.Handle("PUT /counselors/{id}", authed(http.HandlerFunc(s.handleUpdateCounselor)))

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	flushCtx, cancelFlush := context.WithCancel(context.Background())
	defer cancelFlush()
	if err := s.counterSvc.Start(flushCtx); err != nil {
		return fmt.Errorf("failed to start counter flusher: %w", err)
	}

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	// Final counter flush happens inside Stop.
	s.counterSvc.Stop()

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			log.Printf("Error closing redis client: %v", err)
		}
	}

	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// RemoteAddr only; X-Forwarded-For would need a trusted proxy list first.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

// parseQueryInt reads an integer query parameter, clamped to [0, max],
// falling back to def when absent or malformed.
func parseQueryInt(r *http.Request, name string, def, max int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// parseDate parses a plain yyyy-mm-dd date.
func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(types.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}
