package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/nacala04/ripel-gosset-wrapper/config"
	agentcore "github.com/nacala04/ripel-gosset-wrapper/internal/agent/core"
	agenttele "github.com/nacala04/ripel-gosset-wrapper/internal/agent/telemetry"
	"github.com/nacala04/ripel-gosset-wrapper/internal/sources"
	"github.com/nacala04/ripel-gosset-wrapper/internal/store"
)

func Run(cfg *config.Config, addr string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}))

	e.GET("/health", func(c echo.Context) error { return c.JSON(200, HealthResponse{OK: true}) })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()

	// Optional persistence. Everything else works without Postgres.
	var st *store.Store
	if cfg.Storage.Postgres.Enabled() {
		dsn, err := cfg.Storage.Postgres.DSN()
		if err != nil {
			return err
		}
		if err := Migrate("file://migrations", dsn, "up", 0); err != nil {
			baseLogger.Printf("migrate: %v", err)
		}
		s, err := store.NewWithDSN(ctx, dsn)
		if err != nil {
			return err
		}
		st = s
	}

	tele := agenttele.NewTelemetry(cfg.Telemetry)
	orchLogger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	orch, err := agentcore.NewResearchOrchestrator(cfg, orchLogger, tele)
	if err != nil {
		return err
	}

	srcLogger := log.New(log.Writer(), "[MCPS] ", log.LstdFlags)
	srcs, err := buildSources(ctx, cfg, srcLogger)
	if err != nil {
		return err
	}

	apiKey := cfg.General.APIKey

	rh := &ResearchHandler{Orch: orch, Store: st, Defaults: cfg.Research, Logger: baseLogger}
	rh.Register(e.Group("/gosset"), apiKey)

	mh := &MCPSHandler{Sources: srcs, Logger: srcLogger}
	mh.Register(e.Group("/mcps"), apiKey)

	if addr == "" {
		addr = cfg.General.Listen
		if addr != "" && addr[0] != ':' {
			addr = ":" + addr
		}
		if addr == "" {
			addr = ":10001"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// buildSources assembles the pass-through searchers, wrapping each with the
// redis cache when one is configured.
func buildSources(ctx context.Context, cfg *config.Config, logger *log.Logger) (map[string]sources.Searcher, error) {
	var rdb *redis.Client
	if cfg.Storage.Redis.Enabled() {
		var err error
		rdb, err = sources.Conn(ctx,
			fmt.Sprintf("%s:%d", cfg.Storage.Redis.Host, cfg.Storage.Redis.Port),
			cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, cfg.Storage.Redis.Timeout)
		if err != nil {
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
	}

	wrap := func(s sources.Searcher) sources.Searcher {
		if rdb == nil {
			return s
		}
		return sources.WithCache(s, rdb, cfg.Sources.CacheTTL, logger)
	}

	out := map[string]sources.Searcher{
		"pubmed":         wrap(sources.NewPubMed(cfg.Sources.PubMed)),
		"clinicaltrials": wrap(sources.NewClinicalTrials(cfg.Sources.ClinicalTrials)),
		"opentargets":    wrap(sources.NewOpenTargets(cfg.Sources.OpenTargets)),
	}
	return out, nil
}
