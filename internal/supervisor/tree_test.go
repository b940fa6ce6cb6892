// Clipstream - Video Sharing Platform Backend
// Copyright 2026 Clipstream Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/clipstream/clipstream

package supervisor

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clipstream/clipstream/internal/logging"
)

// countingService runs until canceled and counts its starts.
type countingService struct {
	starts atomic.Int32
}

func (c *countingService) Serve(ctx context.Context) error {
	c.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (c *countingService) String() string { return "counting-service" }

func TestTreeRunsAndStopsServices(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), DefaultTreeConfig())

	svc := &countingService{}
	tree.AddAPIService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for svc.starts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("service never started")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop")
	}

	unstopped, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if len(unstopped) != 0 {
		t.Errorf("expected clean shutdown, %d services unstopped", len(unstopped))
	}
}

func TestTreeConfigDefaults(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), TreeConfig{})
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("expected default threshold 5.0, got %f", tree.config.FailureThreshold)
	}
	if tree.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected default shutdown timeout 10s, got %s", tree.config.ShutdownTimeout)
	}
}
