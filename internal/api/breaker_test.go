package api

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yt-dashboard/internal/models"
)

type stubSource struct {
	calls int
	err   error
}

func (s *stubSource) ListVideos(ctx context.Context, page, pageSize int) (*models.Page, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &models.Page{Records: []models.VideoRecord{}, Pagination: models.PaginationMeta{CurrentPage: page}}, nil
}

func TestBreakerPassesThrough(t *testing.T) {
	src := &stubSource{}
	b := WithBreaker(src, "test", nil)

	page, err := b.ListVideos(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pagination.CurrentPage)
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	src := &stubSource{err: &FetchError{Op: "list videos", StatusCode: 500}}
	b := WithBreaker(src, "test", logger)

	for i := 0; i < 3; i++ {
		_, err := b.ListVideos(context.Background(), 1, 10)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, b.State())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "circuit breaker state changed", hook.LastEntry().Message)

	_, err := b.ListVideos(context.Background(), 1, 10)
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, src.calls, "open circuit should not reach the source")
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	src := &stubSource{err: context.Canceled}
	b := WithBreaker(src, "test", nil)

	for i := 0; i < 5; i++ {
		_, err := b.ListVideos(context.Background(), 1, 10)
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.Equal(t, 5, src.calls)
}
