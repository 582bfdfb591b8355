package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
	"igdigest/pkg/models"
	"igdigest/pkg/retry"
)

// DefaultBaseURL is the Apify API root.
const DefaultBaseURL = "https://api.apify.com"

// Actor run statuses the API reports.
const (
	runStatusReady     = "READY"
	runStatusRunning   = "RUNNING"
	runStatusSucceeded = "SUCCEEDED"
)

// RunHandle identifies one actor run and its result dataset.
type RunHandle struct {
	ID        string
	DatasetID string
	Status    string
}

// Client invokes the Instagram post scraper actor on the Apify platform
// and collects its results.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	actorID      string
	resultsLimit int
	pollInterval time.Duration
	maxRunWait   time.Duration
	logger       logger.Logger
}

// NewClient creates a new Apify actor client.
func NewClient(cfg *config.ApifyConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:      DefaultBaseURL,
		token:        cfg.Token,
		actorID:      cfg.ActorID,
		resultsLimit: cfg.ResultsLimit,
		pollInterval: cfg.PollInterval,
		maxRunWait:   cfg.MaxRunWait,
		logger:       log,
	}
}

// SetBaseURL overrides the API root. Used by tests.
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// runInput is the fixed actor input. The results limit bounds billed work
// and is a configured constant, never user input.
type runInput struct {
	Username     []string `json:"username"`
	ResultsLimit int      `json:"resultsLimit"`
}

type runEnvelope struct {
	Data runData `json:"data"`
}

type runData struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

// rawItem is the actor's result item. Only the projected fields are
// decoded; everything else the actor emits is dropped.
type rawItem struct {
	Caption       string `json:"caption"`
	OwnerFullName string `json:"ownerFullName"`
	OwnerUsername string `json:"ownerUsername"`
	URL           string `json:"url"`
	CommentsCount int    `json:"commentsCount"`
	LikesCount    int    `json:"likesCount"`
	Timestamp     string `json:"timestamp"`
	VideoURL      string `json:"videoUrl"`
	DisplayURL    string `json:"displayUrl"`
}

// RunScraper starts one actor run for the username and waits for it to
// reach a terminal status. It triggers billed external work, so it is
// invoked exactly once per submission and never retried; a run that ends
// in any status other than SUCCEEDED is a scrape failure.
func (c *Client) RunScraper(ctx context.Context, username string) (*RunHandle, error) {
	if username == "" {
		return nil, errors.New(errors.ErrorTypeParsing, "username must not be empty")
	}

	c.logger.InfoWithFields("starting actor run", map[string]interface{}{
		"actor":    c.actorID,
		"username": username,
		"limit":    c.resultsLimit,
	})

	input := runInput{
		Username:     []string{username},
		ResultsLimit: c.resultsLimit,
	}

	url := fmt.Sprintf("%s/v2/acts/%s/runs?token=%s", c.baseURL, c.actorID, c.token)
	var envelope runEnvelope
	if err := c.postJSON(ctx, url, input, &envelope); err != nil {
		return nil, err
	}

	run := envelope.Data
	deadline := time.Now().Add(c.maxRunWait)

	for run.Status == runStatusReady || run.Status == runStatusRunning {
		if time.Now().After(deadline) {
			return nil, errors.Newf(errors.ErrorTypeScrape, "actor run %s did not finish within %s", run.ID, c.maxRunWait)
		}

		if err := retry.Wait(ctx, c.pollInterval); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeScrape, err)
		}

		statusURL := fmt.Sprintf("%s/v2/actor-runs/%s?token=%s", c.baseURL, run.ID, c.token)
		var polled runEnvelope
		if err := c.getJSON(ctx, statusURL, &polled); err != nil {
			return nil, err
		}
		run = polled.Data

		c.logger.DebugWithFields("polled actor run", map[string]interface{}{
			"run_id": run.ID,
			"status": run.Status,
		})
	}

	if run.Status != runStatusSucceeded {
		return nil, errors.Newf(errors.ErrorTypeScrape, "actor run finished with status %s", run.Status)
	}

	c.logger.InfoWithFields("actor run completed", map[string]interface{}{
		"run_id":     run.ID,
		"dataset_id": run.DefaultDatasetID,
	})

	return &RunHandle{
		ID:        run.ID,
		DatasetID: run.DefaultDatasetID,
		Status:    run.Status,
	}, nil
}

// CollectResults fetches the run's dataset and maps each raw item into a
// post record through the fixed field projection.
func (c *Client) CollectResults(ctx context.Context, handle *RunHandle) ([]models.PostRecord, error) {
	if handle == nil || handle.DatasetID == "" {
		return nil, errors.New(errors.ErrorTypeScrape, "actor run has no dataset")
	}

	url := fmt.Sprintf("%s/v2/datasets/%s/items?token=%s&format=json&clean=true", c.baseURL, handle.DatasetID, c.token)
	var items []rawItem
	if err := c.getJSON(ctx, url, &items); err != nil {
		return nil, err
	}

	records := make([]models.PostRecord, 0, len(items))
	for _, item := range items {
		records = append(records, projectItem(item))
	}

	c.logger.InfoWithFields("collected dataset items", map[string]interface{}{
		"dataset_id": handle.DatasetID,
		"items":      len(records),
	})

	return records, nil
}

// projectItem maps one raw actor item onto the post record shape.
func projectItem(item rawItem) models.PostRecord {
	record := models.PostRecord{
		Username:      item.OwnerUsername,
		FullName:      item.OwnerFullName,
		Caption:       item.Caption,
		URL:           item.URL,
		CommentsCount: item.CommentsCount,
		LikesCount:    item.LikesCount,
		VideoURL:      item.VideoURL,
		DisplayURL:    item.DisplayURL,
	}

	if item.Timestamp != "" {
		if ts, err := time.Parse(time.RFC3339, item.Timestamp); err == nil {
			record.Timestamp = ts
		}
	}

	return record
}

// postJSON performs a POST request with a JSON body and decodes the response.
func (c *Client) postJSON(ctx context.Context, url string, body interface{}, target interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Newf(errors.ErrorTypeParsing, "failed to encode actor input: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return errors.Newf(errors.ErrorTypeScrape, "failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doJSON(req, target)
}

// getJSON performs a GET request and decodes the JSON response.
func (c *Client) getJSON(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Newf(errors.ErrorTypeScrape, "failed to create request: %v", err)
	}

	return c.doJSON(req, target)
}

func (c *Client) doJSON(req *http.Request, target interface{}) error {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("actor API request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.Path,
			"error":    err.Error(),
			"duration": duration,
		})
		return errors.Newf(errors.ErrorTypeScrape, "actor API unreachable: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("actor API request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.Path,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.WithCode(errors.ErrorTypeScrape, resp.StatusCode,
			fmt.Sprintf("actor API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf(errors.ErrorTypeScrape, "failed to read actor API response: %v", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse actor API response", map[string]interface{}{
			"url":          req.URL.Path,
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return errors.Newf(errors.ErrorTypeParsing, "failed to parse actor API response: %v", err)
	}

	return nil
}
