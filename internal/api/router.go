package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/meur/unitvalues/internal/catalog"
	"github.com/meur/unitvalues/internal/logging"
	"github.com/meur/unitvalues/internal/models"
	"github.com/meur/unitvalues/internal/trade"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// Options tunes the HTTP server
type Options struct {
	CORSOrigins []string
	MaxLimit    int
	Logger      *zap.Logger

	// Rate limiting is enabled when Limiter is set
	Limiter    RateLimiter
	RateLimit  int
	RateWindow time.Duration
}

// Server holds the HTTP server dependencies
type Server struct {
	catalog   *catalog.Catalog
	codes     []models.Code
	evaluator trade.Evaluator
	opts      Options
	logger    *zap.Logger
	router    chi.Router
}

// New creates a new API server over a loaded catalog
func New(cat *catalog.Catalog, codes []models.Code, evaluator trade.Evaluator, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 500
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"http://localhost:*"}
	}

	s := &Server{
		catalog:   cat,
		codes:     codes,
		evaluator: evaluator,
		opts:      opts,
		logger:    opts.Logger,
		router:    chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the chi router so callers can mount extra handlers
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logging.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.opts.Limiter != nil {
		s.router.Use(RateLimit(s.opts.Limiter, s.opts.RateLimit, s.opts.RateWindow, s.logger))
	}
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		// Games
		r.Get("/games", s.handleGetGames)
		r.Get("/games/{gameID}/units", s.handleGetGameUnits)

		// Units
		r.Get("/units", s.handleListUnits)
		r.Get("/units/{slug}", s.handleGetUnit)

		// Rarities
		r.Get("/rarities", s.handleGetRarities)
		r.Get("/rarities/{slug}", s.handleGetRarity)

		// Trade calculator
		r.Post("/trade/evaluate", s.handleEvaluateTrade)

		// Codes
		r.Get("/codes", s.handleGetCodes)
	})

	// Health check
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// --- Response helpers ---

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
