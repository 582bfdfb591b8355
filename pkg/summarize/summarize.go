package summarize

import (
	"context"
	"fmt"
	"time"

	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
	"igdigest/pkg/models"
	"igdigest/pkg/repository"
	"igdigest/pkg/retry"
)

// FileState is the backend's processing status for an uploaded file.
type FileState string

const (
	FileStateProcessing FileState = "PROCESSING"
	FileStateActive     FileState = "ACTIVE"
	FileStateFailed     FileState = "FAILED"
)

// FileRef identifies a media file registered with the inference backend.
type FileRef struct {
	Name     string
	URI      string
	MIMEType string
	State    FileState
}

// Backend is the inference API surface the engine drives. Errors it
// returns carry the transient/fatal distinction through the typed error
// taxonomy.
type Backend interface {
	Upload(ctx context.Context, data []byte, mimeType, displayName string) (*FileRef, error)
	FileState(ctx context.Context, ref *FileRef) (*FileRef, error)
	Generate(ctx context.Context, ref *FileRef, prompt string) (string, error)
}

// itemPhase tracks where one item is in the summarization state machine.
type itemPhase string

const (
	phaseUploading  itemPhase = "uploading"
	phaseProcessing itemPhase = "processing"
	phaseReady      itemPhase = "ready"
	phaseInferring  itemPhase = "inferring"
	phaseDone       itemPhase = "done"
)

// Engine summarizes stored media blobs one at a time through the backend.
// Transient backend failures are retried a fixed number of times with a
// constant delay; a failure after exhaustion becomes a visible fragment in
// the digest rather than aborting the batch.
type Engine struct {
	backend           Backend
	repo              repository.ContentRepository
	maxAttempts       int
	retryDelay        time.Duration
	pollInterval      time.Duration
	maxProcessingWait time.Duration
	logger            logger.Logger
}

func NewEngine(cfg *config.GeminiConfig, backend Backend, repo repository.ContentRepository, log logger.Logger) *Engine {
	return &Engine{
		backend:           backend,
		repo:              repo,
		maxAttempts:       cfg.MaxAttempts,
		retryDelay:        cfg.RetryDelay,
		pollInterval:      cfg.PollInterval,
		maxProcessingWait: cfg.MaxProcessingWait,
		logger:            log,
	}
}

// SummarizeAll produces one fragment per blob, in the given order. A
// failed item yields a failed fragment carrying the error text; the batch
// always runs to completion.
func (e *Engine) SummarizeAll(ctx context.Context, refs []models.BlobRef) ([]models.SummaryFragment, error) {
	fragments := make([]models.SummaryFragment, 0, len(refs))

	for _, ref := range refs {
		text, err := e.summarizeOne(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return nil, errors.Wrap(errors.ErrorTypeBackendFatal, ctx.Err())
			}
			e.logger.WarnWithFields("summarization failed", map[string]interface{}{
				"key":   ref.Key,
				"error": err.Error(),
			})
			fragments = append(fragments, models.SummaryFragment{
				Key:    ref.Key,
				Text:   fmt.Sprintf("Error processing %s: %v", ref.Key, err),
				Status: models.FragmentFailed,
			})
			continue
		}
		fragments = append(fragments, models.SummaryFragment{
			Key:    ref.Key,
			Text:   text,
			Status: models.FragmentOK,
		})
	}

	return fragments, nil
}

// summarizeOne runs one blob through the full upload/process/infer cycle,
// retrying the whole cycle on transient errors.
func (e *Engine) summarizeOne(ctx context.Context, ref models.BlobRef) (string, error) {
	data, err := e.repo.GetBlob(ctx, ref.Key)
	if err != nil {
		return "", err
	}
	kind := models.KindForKey(ref.Key)

	return retry.DoWithResult(func() (string, error) {
		return e.runItem(ctx, ref.Key, kind, data)
	}, &retry.Config{
		MaxAttempts: e.maxAttempts,
		Backoff:     &retry.ConstantBackoff{Delay: e.retryDelay},
		Context:     ctx,
		Logger:      e.logger,
		RetryIf: func(err error) bool {
			return errors.IsType(err, errors.ErrorTypeBackendTransient)
		},
	})
}

func (e *Engine) runItem(ctx context.Context, key string, kind models.MediaKind, data []byte) (string, error) {
	phase := phaseUploading
	e.logPhase(key, phase)

	fileRef, err := e.backend.Upload(ctx, data, kind.MIME(), key)
	if err != nil {
		return "", err
	}

	// Video uploads are transcoded server-side before they can be used;
	// images are usable immediately.
	if kind == models.MediaKindVideo {
		phase = phaseProcessing
		e.logPhase(key, phase)
		fileRef, err = e.awaitProcessing(ctx, fileRef)
		if err != nil {
			return "", err
		}
	}

	phase = phaseReady
	e.logPhase(key, phase)

	phase = phaseInferring
	e.logPhase(key, phase)
	text, err := e.backend.Generate(ctx, fileRef, UniversalPrompt)
	if err != nil {
		return "", err
	}

	e.logPhase(key, phaseDone)
	return text, nil
}

// awaitProcessing polls until the file leaves PROCESSING or the wait
// budget is spent. A FAILED state is fatal for the item and not retried.
func (e *Engine) awaitProcessing(ctx context.Context, ref *FileRef) (*FileRef, error) {
	deadline := time.Now().Add(e.maxProcessingWait)

	for ref.State == FileStateProcessing {
		if time.Now().After(deadline) {
			return nil, errors.Newf(errors.ErrorTypeBackendFatal,
				"file %s still processing after %s", ref.Name, e.maxProcessingWait)
		}
		if err := retry.Wait(ctx, e.pollInterval); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeBackendFatal, err)
		}

		polled, err := e.backend.FileState(ctx, ref)
		if err != nil {
			return nil, err
		}
		ref = polled
	}

	if ref.State == FileStateFailed {
		return nil, errors.Newf(errors.ErrorTypeBackendFatal, "backend failed to process file %s", ref.Name)
	}
	return ref, nil
}

func (e *Engine) logPhase(key string, phase itemPhase) {
	e.logger.DebugWithFields("summarization progress", map[string]interface{}{
		"key":   key,
		"phase": string(phase),
	})
}
