// Package pipeline orchestrates one digest run: scrape, persist, download,
// summarize, assemble.
package pipeline

import (
	"context"

	"igdigest/pkg/apify"
	"igdigest/pkg/digest"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
	"igdigest/pkg/models"
	"igdigest/pkg/repository"
)

// Scraper runs the hosted actor and collects its results.
type Scraper interface {
	RunScraper(ctx context.Context, username string) (*apify.RunHandle, error)
	CollectResults(ctx context.Context, handle *apify.RunHandle) ([]models.PostRecord, error)
}

// MediaFetcher downloads one record's media into the repository.
type MediaFetcher interface {
	FetchAndStore(ctx context.Context, record models.PostRecord) (*models.BlobRef, error)
}

// Summarizer turns stored blobs into per-item summary fragments.
type Summarizer interface {
	SummarizeAll(ctx context.Context, refs []models.BlobRef) ([]models.SummaryFragment, error)
}

// Pipeline wires the stages together. Each Run replaces the previous run's
// posts and media wholesale before producing a fresh digest.
type Pipeline struct {
	scraper    Scraper
	repo       repository.ContentRepository
	fetcher    MediaFetcher
	summarizer Summarizer
	logger     logger.Logger
}

func New(scraper Scraper, repo repository.ContentRepository, fetcher MediaFetcher, summarizer Summarizer, log logger.Logger) *Pipeline {
	return &Pipeline{
		scraper:    scraper,
		repo:       repo,
		fetcher:    fetcher,
		summarizer: summarizer,
		logger:     log,
	}
}

// Run executes one full digest run for the raw username input (a bare
// handle or a profile URL) and returns the assembled digest text.
//
// Scrape, storage, and configuration failures abort the run. A single
// post's download failure only skips that post; a single item's
// summarization failure degrades to a visible error fragment.
func (p *Pipeline) Run(ctx context.Context, rawUsername string) (string, error) {
	username, err := apify.NormalizeUsername(rawUsername)
	if err != nil {
		return "", err
	}

	log := p.logger.WithField("username", username)
	log.Info("starting digest run")

	handle, err := p.scraper.RunScraper(ctx, username)
	if err != nil {
		return "", err
	}

	scraped, err := p.scraper.CollectResults(ctx, handle)
	if err != nil {
		return "", err
	}
	log.WithField("posts", len(scraped)).Info("collected scrape results")

	if _, err := p.repo.ReplaceAll(ctx, scraped); err != nil {
		return "", err
	}

	// Read the snapshot back so downloads work from the records as stored,
	// IDs included.
	records, err := p.repo.ListAll(ctx)
	if err != nil {
		return "", err
	}

	// Drop the previous run's media before writing this run's.
	if err := p.repo.ClearBlobs(ctx, ""); err != nil {
		return "", err
	}

	stored := 0
	for _, record := range records {
		ref, err := p.fetcher.FetchAndStore(ctx, record)
		if err != nil {
			if errors.IsType(err, errors.ErrorTypeNetwork) {
				log.WithFields(map[string]interface{}{
					"post_id": record.ID,
					"error":   err.Error(),
				}).Warn("skipping post, media download failed")
				continue
			}
			return "", err
		}
		if ref != nil {
			stored++
		}
	}
	log.WithField("blobs", stored).Info("downloaded media")

	refs, err := p.repo.ListBlobs(ctx, "")
	if err != nil {
		return "", err
	}

	fragments, err := p.summarizer.SummarizeAll(ctx, refs)
	if err != nil {
		return "", err
	}

	text := digest.Assemble(fragments)
	log.WithFields(map[string]interface{}{
		"fragments": len(fragments),
		"bytes":     len(text),
	}).Info("digest run complete")

	return text, nil
}
