package main

import (
	"context"

	"igdigest/pkg/apify"
	"igdigest/pkg/config"
	"igdigest/pkg/fetcher"
	"igdigest/pkg/logger"
	"igdigest/pkg/pipeline"
	"igdigest/pkg/repository"
	"igdigest/pkg/summarize"
)

// buildPipeline wires the full pipeline from config. The returned close
// function releases the repository and must run after the last request.
func buildPipeline(ctx context.Context, cfg *config.Config, log logger.Logger) (*pipeline.Pipeline, func() error, error) {
	repo, err := repository.New(&cfg.Storage, log)
	if err != nil {
		return nil, nil, err
	}

	backend, err := summarize.NewGeminiBackend(ctx, &cfg.Gemini, log)
	if err != nil {
		repo.Close()
		return nil, nil, err
	}

	scraper := apify.NewClient(&cfg.Apify, log)
	f := fetcher.New(&cfg.Download, repo, log)
	engine := summarize.NewEngine(&cfg.Gemini, backend, repo, log)

	p := pipeline.New(scraper, repo, f, engine, log)
	return p, repo.Close, nil
}
