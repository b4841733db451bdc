package api

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yt-dashboard/internal/config"
	"github.com/yt-dashboard/internal/models"
)

// VideoSource returns one page of videos
type VideoSource interface {
	ListVideos(ctx context.Context, page, pageSize int) (*models.Page, error)
}

// FetchError is returned for every failed page fetch: transport errors,
// non-2xx responses and undecodable bodies alike.
type FetchError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status code %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewSource builds the video source selected by cfg, wrapped in a circuit
// breaker when enabled.
func NewSource(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (VideoSource, error) {
	var source VideoSource
	switch cfg.Source {
	case config.SourceYouTube:
		yt, err := NewYouTubeSource(ctx, cfg.YouTubeAPIKey, cfg.YouTubeQuery)
		if err != nil {
			return nil, err
		}
		source = yt
	case config.SourceHTTP:
		source = NewVideosClient(cfg.VideosAPIURL, cfg.FetchTimeout, logger)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, cfg.Source)
	}

	if cfg.CircuitBreaker {
		source = WithBreaker(source, "videos-"+cfg.Source, logger)
	}
	logger.WithFields(logrus.Fields{
		"source":          cfg.Source,
		"circuit_breaker": cfg.CircuitBreaker,
	}).Info("video source ready")
	return source, nil
}
