package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/yt-dashboard/internal/config"
)

// fakeYouTube serves a three page search result chained by page tokens
type fakeYouTube struct {
	mu     sync.Mutex
	tokens []string
	query  string
	status int
}

func (f *fakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/search") {
		http.NotFound(w, r)
		return
	}

	token := r.URL.Query().Get("pageToken")
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.query = r.URL.Query().Get("q")
	status := f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"error": {"code": %d, "message": "quota exceeded"}}`, status)
		return
	}

	var page int
	var next string
	switch token {
	case "":
		page, next = 1, "T2"
	case "T2":
		page, next = 2, "T3"
	case "T3":
		page, next = 3, ""
	default:
		http.Error(w, "bad token", http.StatusBadRequest)
		return
	}

	fmt.Fprintf(w, `{
		"nextPageToken": %q,
		"pageInfo": {"totalResults": 5, "resultsPerPage": 2},
		"items": [
			{"id": {"kind": "youtube#video", "videoId": "vid%d-a"},
			 "snippet": {"publishedAt": "2025-01-0%dT10:00:00Z", "channelId": "UC%d", "title": "Match %d A",
			             "channelTitle": "Cricket", "thumbnails": {"default": {"url": "https://i.ytimg.com/%d.jpg"}}}},
			{"id": {"kind": "youtube#video", "videoId": "vid%d-b"},
			 "snippet": {"publishedAt": "2025-01-0%dT09:00:00Z", "channelId": "UC%d", "title": "Match %d B",
			             "channelTitle": "Cricket"}}
		]
	}`, next, page, page, page, page, page, page, page, page, page)
}

func (f *fakeYouTube) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

func (f *fakeYouTube) lastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.query
}

func newTestYouTubeSource(t *testing.T, fake *fakeYouTube) *YouTubeSource {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	src, err := NewYouTubeSource(context.Background(), "test-key", "cricket",
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return src
}

func TestYouTubeSourceFirstPage(t *testing.T) {
	fake := &fakeYouTube{}
	src := newTestYouTubeSource(t, fake)

	page, err := src.ListVideos(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{""}, fake.calls())
	assert.Equal(t, "cricket", fake.lastQuery())

	require.Len(t, page.Records, 2)
	first := page.Records[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "Match 1 A", first.Title)
	assert.Equal(t, "vid1-a", first.VideoID)
	assert.Equal(t, "UC1", first.ChannelID)
	assert.Equal(t, "https://i.ytimg.com/1.jpg", first.ThumbnailURL)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), first.PublishedAt.UTC())
	assert.Empty(t, page.Records[1].ThumbnailURL)

	assert.Equal(t, 1, page.Pagination.CurrentPage)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.Equal(t, 5, page.Pagination.TotalCount)
	assert.False(t, page.Pagination.HasPrevious)
	assert.True(t, page.Pagination.HasNext)
}

func TestYouTubeSourceWalksTokens(t *testing.T) {
	fake := &fakeYouTube{}
	src := newTestYouTubeSource(t, fake)

	page, err := src.ListVideos(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "T2", "T3"}, fake.calls())

	require.Len(t, page.Records, 2)
	assert.Equal(t, int64(5), page.Records[0].ID)
	assert.Equal(t, "Match 3 A", page.Records[0].Title)
	assert.True(t, page.Pagination.HasPrevious)
	assert.False(t, page.Pagination.HasNext)

	// Known tokens are reused.
	_, err = src.ListVideos(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "T2", "T3", "T2"}, fake.calls())
}

func TestYouTubeSourcePastTheEnd(t *testing.T) {
	fake := &fakeYouTube{}
	src := newTestYouTubeSource(t, fake)

	page, err := src.ListVideos(context.Background(), 5, 2)
	require.NoError(t, err)

	assert.Empty(t, page.Records)
	assert.Equal(t, 5, page.Pagination.CurrentPage)
	assert.True(t, page.Pagination.HasPrevious)
	assert.False(t, page.Pagination.HasNext)
}

func TestYouTubeSourceAPIError(t *testing.T) {
	fake := &fakeYouTube{status: http.StatusForbidden}
	src := newTestYouTubeSource(t, fake)

	page, err := src.ListVideos(context.Background(), 1, 2)
	assert.Nil(t, page)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusForbidden, fe.StatusCode)
}

func TestYouTubeSourceFarPageStartsFromNearestToken(t *testing.T) {
	fake := &fakeYouTube{}
	src := newTestYouTubeSource(t, fake)

	_, err := src.ListVideos(context.Background(), 3, 2)
	require.NoError(t, err)

	start := time.Now()
	page, err := src.ListVideos(context.Background(), 1_000_000_000, 2)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, []string{"", "T2", "T3", "T3"}, fake.calls())
	assert.Empty(t, page.Records)
	assert.Equal(t, 1_000_000_000, page.Pagination.CurrentPage)
	assert.False(t, page.Pagination.HasNext)
}

func TestYouTubeSourceRejectsOversizedPage(t *testing.T) {
	fake := &fakeYouTube{}
	src := newTestYouTubeSource(t, fake)

	_, err := src.ListVideos(context.Background(), 1, config.MaxYouTubePageSize+1)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, config.ErrInvalidPageSize)
	assert.Empty(t, fake.calls())
}
