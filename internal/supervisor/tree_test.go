// Reliva Feed - Realtime Reviews and Comment Synchronization
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reliva-app/reliva-feed

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/reliva-app/reliva-feed/internal/logging"
)

type countingService struct {
	starts atomic.Int32
}

func (s *countingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return "counting-service" }

func TestTreeRunsServices(t *testing.T) {
	tree := NewTree(logging.NewSlogLogger(), DefaultTreeConfig())

	svc := &countingService{}
	tree.AddMessagingService(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && svc.starts.Load() == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	if svc.starts.Load() == 0 {
		t.Fatal("service never started")
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected supervisor exit: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("supervisor did not stop")
	}
}

func TestTreeRestartsCrashedService(t *testing.T) {
	cfg := DefaultTreeConfig()
	cfg.FailureBackoff = 10 * time.Millisecond
	tree := NewTree(logging.NewSlogLogger(), cfg)

	crasher := &crashOnceService{}
	tree.AddDataService(crasher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && crasher.starts.Load() < 2 {
		time.Sleep(10 * time.Millisecond)
	}
	if crasher.starts.Load() < 2 {
		t.Fatalf("expected restart after crash, saw %d starts", crasher.starts.Load())
	}
}

type crashOnceService struct {
	starts atomic.Int32
}

func (s *crashOnceService) Serve(ctx context.Context) error {
	if s.starts.Add(1) == 1 {
		return errors.New("transient failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *crashOnceService) String() string { return "crash-once" }
