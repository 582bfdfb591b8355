package summarize

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
)

// GeminiBackend drives the Gemini API: media files are uploaded through
// the Files API and referenced by URI in the generation request.
type GeminiBackend struct {
	client         *genai.Client
	model          string
	requestTimeout time.Duration
	logger         logger.Logger
}

func NewGeminiBackend(ctx context.Context, cfg *config.GeminiConfig, log logger.Logger) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Newf(errors.ErrorTypeConfig, "failed to create Gemini client: %v", err)
	}

	return &GeminiBackend{
		client:         client,
		model:          cfg.Model,
		requestTimeout: cfg.RequestTimeout,
		logger:         log,
	}, nil
}

func (b *GeminiBackend) Upload(ctx context.Context, data []byte, mimeType, displayName string) (*FileRef, error) {
	file, err := b.client.Files.Upload(ctx, bytes.NewReader(data), &genai.UploadFileConfig{
		MIMEType:    mimeType,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, classifyBackendError("upload failed", err)
	}

	b.logger.DebugWithFields("uploaded file to backend", map[string]interface{}{
		"name": file.Name,
		"uri":  file.URI,
	})

	return fileRefFromAPI(file, mimeType), nil
}

func (b *GeminiBackend) FileState(ctx context.Context, ref *FileRef) (*FileRef, error) {
	file, err := b.client.Files.Get(ctx, ref.Name, nil)
	if err != nil {
		return nil, classifyBackendError("file status check failed", err)
	}
	return fileRefFromAPI(file, ref.MIMEType), nil
}

func (b *GeminiBackend) Generate(ctx context.Context, ref *FileRef, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.requestTimeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(ref.URI, ref.MIMEType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, generationConfig())
	if err != nil {
		return "", classifyBackendError("inference request failed", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New(errors.ErrorTypeBackendFatal, "inference returned no text")
	}
	return text, nil
}

// generationConfig fixes the sampling parameters and disables all four
// safety filters so creator content is never silently blocked.
func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		TopP:            genai.Ptr[float32](1),
		TopK:            genai.Ptr[float32](32),
		MaxOutputTokens: 4096,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}
}

func fileRefFromAPI(file *genai.File, mimeType string) *FileRef {
	return &FileRef{
		Name:     file.Name,
		URI:      file.URI,
		MIMEType: mimeType,
		State:    fileStateFromAPI(file.State),
	}
}

func fileStateFromAPI(state genai.FileState) FileState {
	switch state {
	case genai.FileStateProcessing:
		return FileStateProcessing
	case genai.FileStateFailed:
		return FileStateFailed
	default:
		return FileStateActive
	}
}

// classifyBackendError maps API failures onto the retryable/fatal split:
// rate limits and server-side errors are worth another attempt, anything
// else is not.
func classifyBackendError(msg string, err error) error {
	var apiErr genai.APIError
	if stderrors.As(err, &apiErr) {
		if errors.IsRetryableStatusCode(apiErr.Code) {
			return errors.Newf(errors.ErrorTypeBackendTransient, "%s: %v", msg, err)
		}
		return errors.Newf(errors.ErrorTypeBackendFatal, "%s: %v", msg, err)
	}

	text := err.Error()
	if strings.Contains(text, "500") || strings.Contains(text, "503") || strings.Contains(text, "429") {
		return errors.Newf(errors.ErrorTypeBackendTransient, "%s: %v", msg, err)
	}
	return errors.Newf(errors.ErrorTypeBackendFatal, "%s: %v", msg, err)
}
