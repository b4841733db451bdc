package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/go-querystring/query"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yt-dashboard/internal/models"
)

const videosPath = "/videos"

// listParams is the query string of GET /videos
type listParams struct {
	Page     int `url:"page"`
	PageSize int `url:"page_size"`
}

// VideosClient fetches pages from the videos API
type VideosClient struct {
	baseURL string
	client  *http.Client
	log     logrus.FieldLogger
}

// NewVideosClient creates a client for the videos API at baseURL.
// A zero timeout leaves requests bounded only by their context.
func NewVideosClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *VideosClient {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &VideosClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     logger.WithField("component", "videos_client"),
	}
}

// ListVideos fetches one page of videos
func (c *VideosClient) ListVideos(ctx context.Context, page, pageSize int) (*models.Page, error) {
	const op = "list videos"

	values, err := query.Values(listParams{Page: page, PageSize: pageSize})
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	endpoint := c.baseURL + videosPath + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	entry := c.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"page":       page,
		"page_size":  pageSize,
	})
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		entry.WithError(err).Warn("videos request failed")
		return nil, &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	entry = entry.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		entry.Warn("videos API returned an error status")
		return nil, &FetchError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var body models.VideoListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		entry.WithError(err).Warn("failed to decode videos response")
		return nil, &FetchError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	entry.WithField("records", len(body.Data)).Debug("videos page received")
	return body.Page(), nil
}
