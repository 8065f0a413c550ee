// Package main implements the HTTP API server for Concord.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/concordlabs/concord/internal/http"
	"github.com/concordlabs/concord/internal/libs/config"
	"github.com/concordlabs/concord/internal/libs/obs"
	"github.com/concordlabs/concord/internal/scope/corpus"
	"github.com/concordlabs/concord/internal/scope/links"
	"github.com/concordlabs/concord/internal/scope/search"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Init logger
	obs.InitLogger(cfg.LogLevel)
	logger := obs.Logger("api")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Fatal().Err(err).Msg("failed to ping database")
	}

	store := corpus.NewPostgres(pool)
	defer func() { _ = store.Close() }()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure schema")
	}

	matcher := search.NewMatcher(search.NewScorer(), search.Thresholds{
		TermFuzzy:    cfg.TermFuzzyThreshold,
		PassageFuzzy: cfg.PassageFuzzyThreshold,
		LinkFuzzy:    cfg.LinkFuzzyThreshold,
	})
	service := search.NewService(store, matcher, obs.Logger("search"))
	builder := links.NewBuilder(store, matcher, obs.Logger("links"))

	handler := httpapi.NewHandler(store, service, builder, cfg.MaxPageSize, logger)
	router := httpapi.Router(handler)

	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	logger.Info().Str("addr", addr).Msg("starting API server")

	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
