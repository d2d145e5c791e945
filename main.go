package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/adapters/datasource"
	"github.com/bantotal-ai/bantotal-engine/pkg/config"
	"github.com/bantotal-ai/bantotal-engine/pkg/handlers"
	"github.com/bantotal-ai/bantotal-engine/pkg/llm"
	"github.com/bantotal-ai/bantotal-engine/pkg/logging"
	"github.com/bantotal-ai/bantotal-engine/pkg/retrieval"
	"github.com/bantotal-ai/bantotal-engine/pkg/schema"
	"github.com/bantotal-ai/bantotal-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("datasource_driver", cfg.Datasource.Driver),
		zap.Bool("retrieval_enabled", cfg.Retrieval.BaseURL != ""),
		zap.String("formatter_provider", cfg.Formatter.Provider))

	store, err := loadSchema(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to load Bantotal schema", zap.Error(err))
	}

	classifier := services.NewClassifier(services.ClassifierConfig{
		MixedThreshold: cfg.Routing.MixedThreshold,
	}, logger)
	resolver := services.NewTableResolver(store, logger)
	inferencer := services.NewRelationshipInferencer(store, logger)
	synthesizer := services.NewSynthesizer(store, inferencer, services.SynthesizerConfig{
		MaxJoins:     cfg.Synthesis.MaxJoins,
		DefaultLimit: cfg.Synthesis.DefaultLimit,
	}, logger)
	cache := services.NewSynthesisCache(cfg.Cache.Capacity)

	var retrievalSvc retrieval.Service
	if cfg.Retrieval.BaseURL != "" {
		retrievalSvc = retrieval.NewHTTPClient(cfg.Retrieval.BaseURL,
			time.Duration(cfg.Retrieval.TimeoutSeconds)*time.Second, logger)
	}

	formatter, err := llm.NewFormatter(&llm.Config{
		Provider:    cfg.Formatter.Provider,
		Endpoint:    cfg.Formatter.Endpoint,
		Model:       cfg.Formatter.Model,
		APIKey:      cfg.Formatter.APIKey,
		Temperature: cfg.Formatter.Temperature,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create formatter", zap.Error(err))
	}

	director := services.NewDirector(classifier, resolver, synthesizer, cache,
		retrievalSvc, formatter, logger).
		WithDocsTopK(cfg.Routing.DocsTopK)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, store.Len, logger).RegisterRoutes(mux)
	handlers.NewQueryHandler(director, logger).RegisterRoutes(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting bantotal-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version),
		zap.Int("tables", store.Len()))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// loadSchema introspects the configured Bantotal database and returns the
// frozen schema store every service reads from.
func loadSchema(cfg *config.Config, logger *zap.Logger) (*schema.Store, error) {
	intro, err := datasource.NewIntrospector(cfg.Datasource.Driver, cfg.Datasource.DSN, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = intro.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := intro.TestConnection(ctx); err != nil {
		return nil, err
	}
	return datasource.LoadStore(ctx, intro, logger)
}
