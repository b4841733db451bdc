package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/yt-dashboard/internal/config"
	"github.com/yt-dashboard/internal/models"
)

type pageKey struct {
	size int
	page int
}

// YouTubeSource lists the newest videos matching a search query straight from
// the YouTube Data API. The API pages by token, so page N is reached by walking
// forward from the nearest page whose token is already known. Only tokens are
// retained between calls, never records.
type YouTubeSource struct {
	service *youtube.Service
	query   string

	mu     sync.Mutex
	tokens map[pageKey]string
}

// NewYouTubeSource creates a source searching YouTube for query
func NewYouTubeSource(ctx context.Context, apiKey, query string, opts ...option.ClientOption) (*YouTubeSource, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %v", err)
	}
	return &YouTubeSource{
		service: service,
		query:   query,
		tokens:  make(map[pageKey]string),
	}, nil
}

// ListVideos returns page of the search results, numbered from 1. pageSize
// must be within 1..config.MaxYouTubePageSize.
func (s *YouTubeSource) ListVideos(ctx context.Context, page, pageSize int) (*models.Page, error) {
	if pageSize < 1 || pageSize > config.MaxYouTubePageSize {
		return nil, &FetchError{
			Op:  "youtube search",
			Err: fmt.Errorf("%w: %d not in 1..%d", config.ErrInvalidPageSize, pageSize, config.MaxYouTubePageSize),
		}
	}

	known, token := s.nearestToken(page, pageSize)
	for p := known; p < page; p++ {
		resp, err := s.search(ctx, token, pageSize)
		if err != nil {
			return nil, err
		}
		if resp.NextPageToken == "" {
			return emptyPage(page, pageSize, resp), nil
		}
		token = resp.NextPageToken
		s.rememberToken(p+1, pageSize, token)
	}

	resp, err := s.search(ctx, token, pageSize)
	if err != nil {
		return nil, err
	}
	if resp.NextPageToken != "" {
		s.rememberToken(page+1, pageSize, resp.NextPageToken)
	}
	return toPage(page, pageSize, resp), nil
}

func (s *YouTubeSource) search(ctx context.Context, token string, pageSize int) (*youtube.SearchListResponse, error) {
	call := s.service.Search.List([]string{"snippet"}).
		Q(s.query).
		Type("video").
		Order("date").
		MaxResults(int64(pageSize)).
		Context(ctx)
	if token != "" {
		call = call.PageToken(token)
	}

	resp, err := call.Do()
	if err != nil {
		fe := &FetchError{Op: "youtube search", Err: err}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			fe.StatusCode = apiErr.Code
		}
		return nil, fe
	}
	return resp, nil
}

// nearestToken returns the highest known page not after page, with its token.
// Page 1 needs no token. The cost depends on the tokens held, not on page.
func (s *YouTubeSource) nearestToken(page, pageSize int) (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best, token := 1, ""
	for key, t := range s.tokens {
		if key.size == pageSize && key.page <= page && key.page > best {
			best, token = key.page, t
		}
	}
	return best, token
}

func (s *YouTubeSource) rememberToken(page, pageSize int, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[pageKey{size: pageSize, page: page}] = token
}

func toPage(page, pageSize int, resp *youtube.SearchListResponse) *models.Page {
	records := make([]models.VideoRecord, 0, len(resp.Items))
	for i, item := range resp.Items {
		if item == nil || item.Snippet == nil || item.Id == nil {
			continue
		}
		published, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)

		var thumbnail string
		if t := item.Snippet.Thumbnails; t != nil && t.Default != nil {
			thumbnail = t.Default.Url
		}

		records = append(records, models.VideoRecord{
			ID:           int64((page-1)*pageSize + i + 1),
			Title:        item.Snippet.Title,
			ChannelID:    item.Snippet.ChannelId,
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  published,
			ThumbnailURL: thumbnail,
			VideoID:      item.Id.VideoId,
		})
	}

	meta := pagination(page, pageSize, resp)
	meta.HasNext = resp.NextPageToken != ""
	return &models.Page{Records: records, Pagination: meta}
}

func emptyPage(page, pageSize int, last *youtube.SearchListResponse) *models.Page {
	return &models.Page{
		Records:    []models.VideoRecord{},
		Pagination: pagination(page, pageSize, last),
	}
}

func pagination(page, pageSize int, resp *youtube.SearchListResponse) models.PaginationMeta {
	var total int
	if resp.PageInfo != nil {
		total = int(resp.PageInfo.TotalResults)
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return models.PaginationMeta{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasPrevious: page > 1,
	}
}
