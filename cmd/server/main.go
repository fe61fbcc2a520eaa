package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meur/unitvalues/internal/api"
	rediscache "github.com/meur/unitvalues/internal/cache/redis"
	"github.com/meur/unitvalues/internal/catalog"
	"github.com/meur/unitvalues/internal/config"
	"github.com/meur/unitvalues/internal/logging"
	"github.com/meur/unitvalues/internal/models"
	"github.com/meur/unitvalues/internal/storage"
	"github.com/meur/unitvalues/internal/trade"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Parse flags
	configPath := flag.String("config", getEnv("UNITVALUES_CONFIG", "config.toml"), "Path to TOML config")
	port := flag.Int("port", 0, "Server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// Initialize storage
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()

	cat, codes, err := loadCatalog(store, cfg.Data.RaritiesPath)
	if err != nil {
		return err
	}
	if cat.Len() == 0 {
		logger.Warn("catalog is empty, run the seed command first", zap.String("db", cfg.Database.Path))
	}
	for game, n := range cat.CountByGame() {
		logger.Debug("catalog loaded", zap.String("game", string(game)), zap.Int("units", n))
	}

	opts := api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		MaxLimit:    cfg.Search.MaxLimit,
		Logger:      logger,
	}

	if cfg.Redis.Addr != "" {
		client, err := rediscache.New(ctx, rediscache.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			return err
		}
		defer client.Close()

		opts.Limiter = rediscache.NewRateLimiter(client)
		opts.RateLimit = cfg.Redis.RateLimit
		opts.RateWindow = cfg.RateWindow()
		logger.Info("rate limiting enabled",
			zap.String("redis", cfg.Redis.Addr),
			zap.Int("limit", opts.RateLimit),
			zap.Duration("window", opts.RateWindow),
		)
	}

	srv := api.New(cat, codes, trade.NewEvaluator(cfg.Trade.FairThresholdPct), opts)

	// Serve frontend static files (for production deployment)
	if cfg.Server.StaticDir != "" {
		FileServer(srv.Router(), "/", http.Dir(cfg.Server.StaticDir))
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("unitvalues API starting",
		zap.String("addr", "http://localhost"+httpServer.Addr),
		zap.String("db", cfg.Database.Path),
		zap.Int("units", cat.Len()),
		zap.Int("codes", len(codes)),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// loadCatalog reads the seeded units and codes once; the catalog is
// immutable for the life of the process
func loadCatalog(store *storage.Store, raritiesPath string) (*catalog.Catalog, []models.Code, error) {
	rarities := catalog.DefaultRarities()
	if raritiesPath != "" {
		var err error
		rarities, err = catalog.LoadRarities(raritiesPath)
		if err != nil {
			return nil, nil, err
		}
	}

	units, err := store.GetUnits()
	if err != nil {
		return nil, nil, fmt.Errorf("load units: %w", err)
	}
	cat, err := catalog.New(units, rarities)
	if err != nil {
		return nil, nil, err
	}

	codes, err := store.GetCodes()
	if err != nil {
		return nil, nil, fmt.Errorf("load codes: %w", err)
	}
	return cat, codes, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
