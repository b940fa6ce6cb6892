// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package media

import (
	"context"
	"io"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/clipstream/clipstream/internal/config"
	"github.com/clipstream/clipstream/internal/logging"
	"github.com/clipstream/clipstream/internal/metrics"
	"github.com/clipstream/clipstream/internal/models"
)

// BreakerClient wraps Client with a circuit breaker so a down media host
// fails uploads fast instead of tying up request goroutines on timeouts.
//
// DETERMINISM NOTE: the breaker uses real time for its interval and timeout
// bookkeeping. Tests exercise the wrapped client directly.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
}

var _ Uploader = (*BreakerClient)(nil)

// NewBreakerClient builds the production media client:
// - max 3 concurrent probes in half-open state
// - 1 minute measurement window
// - 2 minute timeout before attempting recovery
// - opens at >=60% failure rate with minimum 10 requests
func NewBreakerClient(cfg *config.MediaConfig) *BreakerClient {
	metrics.MediaBreakerState.Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        "media-host",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening media host circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("[CIRCUIT BREAKER] Media host state transition")
			metrics.MediaBreakerState.Set(stateToFloat(to))
		},
	})

	return &BreakerClient{client: NewClient(cfg), cb: cb}
}

// Upload passes an upload through the breaker.
func (b *BreakerClient) Upload(ctx context.Context, kind, filename string, content io.Reader) (*models.UploadResult, error) {
	start := time.Now()
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.client.Upload(ctx, kind, filename, content)
	})
	metrics.RecordMediaRequest("upload", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return result.(*models.UploadResult), nil
}

// Delete passes an asset delete through the breaker.
func (b *BreakerClient) Delete(ctx context.Context, publicID string) error {
	start := time.Now()
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.client.Delete(ctx, publicID)
	})
	metrics.RecordMediaRequest("delete", time.Since(start), err)
	return err
}

// Ping checks liveness without breaker protection so health probes keep
// observing the real host state while the circuit is open.
func (b *BreakerClient) Ping(ctx context.Context) error {
	start := time.Now()
	err := b.client.Ping(ctx)
	metrics.RecordMediaRequest("ping", time.Since(start), err)
	return err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
