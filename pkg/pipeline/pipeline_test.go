package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igdigest/pkg/apify"
	"igdigest/pkg/config"
	"igdigest/pkg/errors"
	"igdigest/pkg/fetcher"
	"igdigest/pkg/logger"
	"igdigest/pkg/models"
	"igdigest/pkg/repository"
)

// fakeScraper returns canned results without touching the actor API.
type fakeScraper struct {
	records []models.PostRecord
	err     error
}

func (f *fakeScraper) RunScraper(ctx context.Context, username string) (*apify.RunHandle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &apify.RunHandle{ID: "run-1", DatasetID: "dataset-1", Status: "SUCCEEDED"}, nil
}

func (f *fakeScraper) CollectResults(ctx context.Context, handle *apify.RunHandle) ([]models.PostRecord, error) {
	return f.records, nil
}

// fakeSummarizer emits one fixed fragment per blob.
type fakeSummarizer struct {
	seenKeys []string
}

func (f *fakeSummarizer) SummarizeAll(ctx context.Context, refs []models.BlobRef) ([]models.SummaryFragment, error) {
	fragments := make([]models.SummaryFragment, 0, len(refs))
	for _, ref := range refs {
		f.seenKeys = append(f.seenKeys, ref.Key)
		fragments = append(fragments, models.SummaryFragment{
			Key:    ref.Key,
			Text:   "summary of " + ref.Key,
			Status: models.FragmentOK,
		})
	}
	return fragments, nil
}

func mediaServer(t *testing.T, failPaths ...string) *httptest.Server {
	t.Helper()
	fail := map[string]bool{}
	for _, p := range failPaths {
		fail[p] = true
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail[r.URL.Path] {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte("media for " + r.URL.Path))
	}))
}

func newPipeline(t *testing.T, scraper Scraper, summarizer Summarizer) (*Pipeline, repository.ContentRepository) {
	t.Helper()
	repo, err := repository.NewLocalRepository(t.TempDir(), logger.NewTestLogger())
	require.NoError(t, err)

	dl := &config.DownloadConfig{Timeout: 5 * time.Second, UserAgent: "test-agent"}
	f := fetcher.New(dl, repo, logger.NewTestLogger())
	return New(scraper, repo, f, summarizer, logger.NewTestLogger()), repo
}

func TestRunEndToEnd(t *testing.T) {
	server := mediaServer(t)
	defer server.Close()

	scraper := &fakeScraper{records: []models.PostRecord{
		{Username: "someuser", Caption: "a reel", VideoURL: server.URL + "/v.mp4"},
		{Username: "someuser", Caption: "a photo", DisplayURL: server.URL + "/i.jpg"},
	}}
	summarizer := &fakeSummarizer{}
	p, repo := newPipeline(t, scraper, summarizer)

	text, err := p.Run(context.Background(), "https://instagram.com/someuser/")
	require.NoError(t, err)

	records, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	refs, err := repo.ListBlobs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "0001.mp4", refs[0].Key)
	assert.Equal(t, "0002.jpg", refs[1].Key)

	assert.Equal(t, "summary of 0001.mp4\n\nsummary of 0002.jpg", text)
}

func TestRunPostWithoutMedia(t *testing.T) {
	scraper := &fakeScraper{records: []models.PostRecord{
		{Username: "someuser", Caption: "text only"},
	}}
	summarizer := &fakeSummarizer{}
	p, repo := newPipeline(t, scraper, summarizer)

	text, err := p.Run(context.Background(), "someuser")
	require.NoError(t, err)
	assert.Equal(t, "", text)

	records, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	refs, err := repo.ListBlobs(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestRunDownloadFailureSkipsPost(t *testing.T) {
	server := mediaServer(t, "/broken.jpg")
	defer server.Close()

	scraper := &fakeScraper{records: []models.PostRecord{
		{Username: "someuser", DisplayURL: server.URL + "/broken.jpg"},
		{Username: "someuser", DisplayURL: server.URL + "/fine.jpg"},
	}}
	summarizer := &fakeSummarizer{}
	p, repo := newPipeline(t, scraper, summarizer)

	text, err := p.Run(context.Background(), "someuser")
	require.NoError(t, err)

	// both records persist; only the reachable media is stored
	records, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)

	refs, err := repo.ListBlobs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "0002.jpg", refs[0].Key)

	assert.Equal(t, "summary of 0002.jpg", text)
}

func TestRunKeepsPostOrderPastTenPosts(t *testing.T) {
	server := mediaServer(t)
	defer server.Close()

	var records []models.PostRecord
	for i := 0; i < 11; i++ {
		records = append(records, models.PostRecord{
			Username:   "someuser",
			DisplayURL: fmt.Sprintf("%s/p%d.jpg", server.URL, i),
		})
	}
	scraper := &fakeScraper{records: records}
	summarizer := &fakeSummarizer{}
	p, _ := newPipeline(t, scraper, summarizer)

	_, err := p.Run(context.Background(), "someuser")
	require.NoError(t, err)

	require.Len(t, summarizer.seenKeys, 11)
	for i, key := range summarizer.seenKeys {
		assert.Equal(t, fmt.Sprintf("%04d.jpg", i+1), key)
	}
}

func TestRunScrapeFailureAborts(t *testing.T) {
	scraper := &fakeScraper{err: errors.New(errors.ErrorTypeScrape, "actor run finished with status FAILED")}
	summarizer := &fakeSummarizer{}
	p, _ := newPipeline(t, scraper, summarizer)

	_, err := p.Run(context.Background(), "someuser")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeScrape))
	assert.Empty(t, summarizer.seenKeys)
}

func TestRunInvalidUsernameAborts(t *testing.T) {
	scraper := &fakeScraper{}
	p, _ := newPipeline(t, scraper, &fakeSummarizer{})

	_, err := p.Run(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParsing))
}

func TestRunReplacesPreviousRun(t *testing.T) {
	server := mediaServer(t)
	defer server.Close()

	scraper := &fakeScraper{records: []models.PostRecord{
		{Username: "someuser", DisplayURL: server.URL + "/a.jpg"},
		{Username: "someuser", DisplayURL: server.URL + "/b.jpg"},
		{Username: "someuser", DisplayURL: server.URL + "/c.jpg"},
	}}
	p, repo := newPipeline(t, scraper, &fakeSummarizer{})

	_, err := p.Run(context.Background(), "someuser")
	require.NoError(t, err)

	scraper.records = []models.PostRecord{
		{Username: "someuser", VideoURL: server.URL + "/only.mp4"},
	}
	text, err := p.Run(context.Background(), "someuser")
	require.NoError(t, err)

	records, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)

	refs, err := repo.ListBlobs(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "0001.mp4", refs[0].Key)

	assert.Equal(t, "summary of 0001.mp4", text)
}
