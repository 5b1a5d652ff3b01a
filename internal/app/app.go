// Package app wires the preflight and preview components for the CLI
// actions: config, logging, the durable store, the three caches, and
// the pipelines over them.
package app

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/AdityaBoddepalli/HoverPeek/models"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/cache"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/capability"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/db"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/extract"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/preflight"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/preview"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/prober"
	"github.com/AdityaBoddepalli/HoverPeek/pkg/titles"
)

// hydrateWait bounds the startup wait for durable cache rows.
const hydrateWait = 2 * time.Second

// Logger builds the CLI logger: JSON to stderr, errors only when
// quiet.
func Logger(quiet bool) *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// App is the wired component graph for one CLI invocation.
type App struct {
	Config models.Config
	Logger *slog.Logger

	Store *db.DB // nil when the durable store could not be opened

	PreflightCache *cache.Cache[models.PreflightResult]
	PreviewCache   *cache.Cache[models.PreviewArtifact]
	TitleCache     *cache.Cache[string]

	Prober       *prober.Prober
	Orchestrator *preflight.Orchestrator
	Registry     *capability.Registry
	Generator    *preview.Generator
	Titles       *titles.Resolver
}

// New loads config and wires everything. A durable store that fails to
// open degrades to memory-only caches with a warning; it never fails
// the invocation.
func New(configPath string, logger *slog.Logger) (*App, error) {
	cfg, err := models.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	store, err := db.Open(cfg.CacheDB)
	if err != nil {
		logger.Warn("durable cache store unavailable, running memory-only", "path", cfg.CacheDB, "error", err)
		store = nil
	}

	a := &App{
		Config: cfg,
		Logger: logger,
		Store:  store,

		PreflightCache: cache.New[models.PreflightResult](cache.NamespacePreflight, cfg.CacheTTL, store, logger),
		PreviewCache:   cache.New[models.PreviewArtifact](cache.NamespacePreview, cfg.CacheTTL, store, logger),
		TitleCache:     cache.New[string](cache.NamespaceTitles, cfg.CacheTTL, store, logger),
	}

	// One-shot invocations read the caches right away; give hydration a
	// bounded window so durable rows are visible before the first Get.
	hydrateCtx, cancel := context.WithTimeout(context.Background(), hydrateWait)
	defer cancel()
	if err := a.PreflightCache.WaitHydrated(hydrateCtx); err != nil {
		logger.Warn("cache hydration still pending, continuing", "namespace", cache.NamespacePreflight, "error", err)
	}
	if err := a.PreviewCache.WaitHydrated(hydrateCtx); err != nil {
		logger.Warn("cache hydration still pending, continuing", "namespace", cache.NamespacePreview, "error", err)
	}
	if err := a.TitleCache.WaitHydrated(hydrateCtx); err != nil {
		logger.Warn("cache hydration still pending, continuing", "namespace", cache.NamespaceTitles, "error", err)
	}

	extractor := extract.New()
	a.Prober = prober.New(cfg)
	a.Orchestrator = preflight.New(a.Prober, a.PreflightCache, cfg, logger)
	a.Registry = capability.NewRegistry(cfg, logger)
	a.Generator = preview.NewGenerator(a.Prober, extractor, preview.RegistrySource(a.Registry), a.PreviewCache, cfg, logger)
	a.Titles = titles.NewResolver(a.Prober, extractor, a.TitleCache, logger)

	return a, nil
}

// Close flushes pending cache persistence and releases the store.
func (a *App) Close() {
	a.PreflightCache.Flush()
	a.PreviewCache.Flush()
	a.TitleCache.Flush()
	if a.Store != nil {
		_ = a.Store.Close()
	}
}
