package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer the spinner goroutine writes to.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func quietSpinner(ctx context.Context, msg string) *Spinner {
	s := newSpinnerWithContext(ctx, msg)
	s.out = io.Discard
	return s
}

func TestSpinnerWritesMessage(t *testing.T) {
	var out syncBuffer
	s := newSpinner("Computing tiers layout...")
	s.out = &out
	s.Start()
	time.Sleep(3 * s.style.FPS)
	s.Stop()

	if !strings.Contains(out.String(), "Computing tiers layout...") {
		t.Errorf("spinner output = %q", out.String())
	}
	if s.Cancelled() {
		t.Error("Stop should not count as cancellation")
	}
}

func TestSpinnerSetMessage(t *testing.T) {
	var out syncBuffer
	s := newSpinner("first")
	s.out = &out
	s.Start()
	s.SetMessage("second")
	time.Sleep(3 * s.style.FPS)
	s.Stop()

	if !strings.Contains(out.String(), "second") {
		t.Errorf("spinner output = %q, want updated message", out.String())
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := quietSpinner(ctx, "Testing with context...")
	s.Start()
	cancel()
	s.Stop()

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := quietSpinner(ctx, "Testing with timeout...")
	s.Start()
	<-ctx.Done()
	s.Stop()

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := quietSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopBeforeStart(t *testing.T) {
	done := make(chan struct{})
	go func() {
		quietSpinner(context.Background(), "never started").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop before Start blocked")
	}
}

func TestSpinnerStopWithResult(t *testing.T) {
	s := quietSpinner(context.Background(), "Testing success...")
	s.Start()
	s.StopWithSuccess("Done!")

	s = quietSpinner(context.Background(), "Testing error...")
	s.Start()
	s.StopWithError("Failed!")
}
