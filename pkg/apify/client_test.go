package apify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/logger"
)

// mockActorServer mimics the Apify actor run and dataset endpoints.
type mockActorServer struct {
	server      *httptest.Server
	runStatus   string
	finalStatus string
	pollsNeeded int32
	polls       int32
	runCalls    int32
	items       []map[string]interface{}
	lastInput   runInput
}

func newMockActorServer(finalStatus string, pollsNeeded int32, items []map[string]interface{}) *mockActorServer {
	m := &mockActorServer{
		runStatus:   "RUNNING",
		finalStatus: finalStatus,
		pollsNeeded: pollsNeeded,
		items:       items,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/v2/acts/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&m.runCalls, 1)
		_ = json.NewDecoder(r.Body).Decode(&m.lastInput)

		status := m.runStatus
		if m.pollsNeeded == 0 {
			status = m.finalStatus
		}
		writeRun(w, status)
	})

	mux.HandleFunc("/v2/actor-runs/", func(w http.ResponseWriter, r *http.Request) {
		polls := atomic.AddInt32(&m.polls, 1)
		status := m.runStatus
		if polls >= m.pollsNeeded {
			status = m.finalStatus
		}
		writeRun(w, status)
	})

	mux.HandleFunc("/v2/datasets/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(m.items)
	})

	m.server = httptest.NewServer(mux)
	return m
}

func writeRun(w http.ResponseWriter, status string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{
			"id":               "run-1",
			"status":           status,
			"defaultDatasetId": "dataset-1",
		},
	})
}

func testClient(t *testing.T, server *mockActorServer) *Client {
	t.Helper()
	cfg := &config.ApifyConfig{
		Token:          "test-token",
		ActorID:        "apify~instagram-post-scraper",
		ResultsLimit:   7,
		RequestTimeout: 5 * time.Second,
		PollInterval:   time.Millisecond,
		MaxRunWait:     time.Second,
	}
	client := NewClient(cfg, logger.NewTestLogger())
	client.SetBaseURL(server.server.URL)
	return client
}

func TestRunScraperSucceeds(t *testing.T) {
	server := newMockActorServer("SUCCEEDED", 2, nil)
	defer server.server.Close()

	client := testClient(t, server)
	handle, err := client.RunScraper(context.Background(), "someuser")

	require.NoError(t, err)
	assert.Equal(t, "run-1", handle.ID)
	assert.Equal(t, "dataset-1", handle.DatasetID)
	assert.Equal(t, "SUCCEEDED", handle.Status)

	// exactly one billed run per submission
	assert.Equal(t, int32(1), atomic.LoadInt32(&server.runCalls))
	// the fixed input shape reached the actor
	assert.Equal(t, []string{"someuser"}, server.lastInput.Username)
	assert.Equal(t, 7, server.lastInput.ResultsLimit)
}

func TestRunScraperActorFailure(t *testing.T) {
	server := newMockActorServer("FAILED", 1, nil)
	defer server.server.Close()

	client := testClient(t, server)
	_, err := client.RunScraper(context.Background(), "someuser")

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeScrape))
	assert.Contains(t, err.Error(), "FAILED")
	// no retry on actor failure
	assert.Equal(t, int32(1), atomic.LoadInt32(&server.runCalls))
}

func TestRunScraperEmptyUsername(t *testing.T) {
	server := newMockActorServer("SUCCEEDED", 0, nil)
	defer server.server.Close()

	client := testClient(t, server)
	_, err := client.RunScraper(context.Background(), "")

	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
	assert.Equal(t, int32(0), atomic.LoadInt32(&server.runCalls))
}

func TestRunScraperServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "actor not found", http.StatusNotFound)
	}))
	defer server.Close()

	cfg := &config.ApifyConfig{
		Token:          "test-token",
		ActorID:        "missing~actor",
		ResultsLimit:   7,
		RequestTimeout: 5 * time.Second,
		PollInterval:   time.Millisecond,
		MaxRunWait:     time.Second,
	}
	client := NewClient(cfg, logger.NewTestLogger())
	client.SetBaseURL(server.URL)

	_, err := client.RunScraper(context.Background(), "someuser")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeScrape))
	assert.Contains(t, err.Error(), "404")
}

func TestCollectResultsProjection(t *testing.T) {
	items := []map[string]interface{}{
		{
			"caption":       "new drop this week",
			"ownerFullName": "Some User",
			"ownerUsername": "someuser",
			"url":           "https://www.instagram.com/p/ABC123/",
			"commentsCount": 12,
			"likesCount":    340,
			"timestamp":     "2024-06-02T10:30:00.000Z",
			"videoUrl":      "https://cdn.example.com/v.mp4",
			"extraField":    "dropped",
			"hashtags":      []string{"dropped", "too"},
		},
		{
			"ownerUsername": "someuser",
			"url":           "https://www.instagram.com/p/DEF456/",
			"displayUrl":    "https://cdn.example.com/i.jpg",
		},
	}
	server := newMockActorServer("SUCCEEDED", 0, items)
	defer server.server.Close()

	client := testClient(t, server)
	records, err := client.CollectResults(context.Background(), &RunHandle{ID: "run-1", DatasetID: "dataset-1"})
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "new drop this week", first.Caption)
	assert.Equal(t, "Some User", first.FullName)
	assert.Equal(t, "someuser", first.Username)
	assert.Equal(t, "https://www.instagram.com/p/ABC123/", first.URL)
	assert.Equal(t, 12, first.CommentsCount)
	assert.Equal(t, 340, first.LikesCount)
	assert.Equal(t, 2024, first.Timestamp.Year())
	assert.Equal(t, "https://cdn.example.com/v.mp4", first.VideoURL)
	assert.Empty(t, first.DisplayURL)

	second := records[1]
	assert.Empty(t, second.Caption)
	assert.True(t, second.Timestamp.IsZero())
	assert.Equal(t, "https://cdn.example.com/i.jpg", second.DisplayURL)
}

func TestCollectResultsWithoutDataset(t *testing.T) {
	server := newMockActorServer("SUCCEEDED", 0, nil)
	defer server.server.Close()

	client := testClient(t, server)
	_, err := client.CollectResults(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeScrape))
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"bare handle", "someuser", "someuser", false},
		{"profile URL with trailing slash", "https://instagram.com/someuser/", "someuser", false},
		{"profile URL without scheme", "instagram.com/someuser", "someuser", false},
		{"www profile URL", "https://www.instagram.com/some.user_1/", "some.user_1", false},
		{"at-prefixed handle", "@someuser", "someuser", false},
		{"surrounding whitespace", "  someuser  ", "someuser", false},
		{"empty", "", "", true},
		{"only slashes", "///", "", true},
		{"whitespace only", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeUsername(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
