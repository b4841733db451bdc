package api

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/yt-dashboard/internal/models"
)

// BreakerSource guards a VideoSource with a circuit breaker. While the circuit
// is open calls fail fast with a FetchError.
type BreakerSource struct {
	next VideoSource
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps next in a circuit breaker named name
func WithBreaker(next VideoSource, name string, logger logrus.FieldLogger) *BreakerSource {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("circuit breaker state changed")
			}
		},
		// A superseded request is cancelled by the caller; that says nothing
		// about the health of the source.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerSource{next: next, cb: cb}
}

// ListVideos forwards to the wrapped source unless the circuit is open
func (b *BreakerSource) ListVideos(ctx context.Context, page, pageSize int) (*models.Page, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.ListVideos(ctx, page, pageSize)
	})
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FetchError{Op: "list videos", Err: err}
	}
	return result.(*models.Page), nil
}

// State reports the current breaker state
func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}
