package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newBroadcastClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(Config{AccessToken: "t", PhoneNumberID: "1"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	return client
}

func waitForCounter(t *testing.T, counter *int32, want int32) bool {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(counter) >= want {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}

func TestBroadcastSingleBatchRunsConcurrently(t *testing.T) {
	client := newBroadcastClient(t)
	recipients := []string{"a", "b", "c"}

	var started int32
	send := func(ctx context.Context, to string) (*SendMessageResponse, error) {
		atomic.AddInt32(&started, 1)
		// All three sends must be in flight at once: each waits until the
		// whole batch has started before settling.
		if !waitForCounter(t, &started, 3) {
			return nil, errors.New("batch mates never started")
		}
		return &SendMessageResponse{}, nil
	}

	startedAt := time.Now()
	report, err := client.Broadcast(context.Background(), recipients, send, BroadcastOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Sent) != 3 || len(report.Failed) != 0 {
		t.Fatalf("expected 3 sent / 0 failed, got %d/%d", len(report.Sent), len(report.Failed))
	}
	// One batch means zero pacing delays.
	if elapsed := time.Since(startedAt); elapsed >= defaultBroadcastDelay {
		t.Fatalf("single batch must not pace, took %v", elapsed)
	}
}

func TestBroadcastIsolatesFailures(t *testing.T) {
	client := newBroadcastClient(t)
	recipients := []string{"first", "second", "third"}

	send := func(ctx context.Context, to string) (*SendMessageResponse, error) {
		switch to {
		case "second":
			return nil, newAPIError([]byte(`{"error":{"code":131026,"message":"undeliverable"}}`), 400)
		case "third":
			// Finishing first must not reorder the report.
			return &SendMessageResponse{}, nil
		default:
			time.Sleep(20 * time.Millisecond)
			return &SendMessageResponse{}, nil
		}
	}

	report, err := client.Broadcast(context.Background(), recipients, send, BroadcastOptions{SkipDelay: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Sent) != 2 {
		t.Fatalf("expected 2 sent, got %d", len(report.Sent))
	}
	if len(report.Failed) != 1 {
		t.Fatalf("expected 1 failed, got %d", len(report.Failed))
	}
	if report.Failed[0].To != "second" {
		t.Fatalf("expected failure tagged with recipient %q, got %q", "second", report.Failed[0].To)
	}
	if _, ok := IsAPIError(report.Failed[0].Err); !ok {
		t.Fatalf("expected typed api error, got %v", report.Failed[0].Err)
	}
	if report.Sent[0].To != "first" || report.Sent[1].To != "third" {
		t.Fatalf("expected recipient order preserved, got %q, %q", report.Sent[0].To, report.Sent[1].To)
	}
}

func TestBroadcastBatchBoundsConcurrency(t *testing.T) {
	client := newBroadcastClient(t)
	recipients := make([]string, 6)
	for i := range recipients {
		recipients[i] = fmt.Sprintf("r%d", i)
	}

	var inFlight, peak int32
	send := func(ctx context.Context, to string) (*SendMessageResponse, error) {
		now := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if now <= old || atomic.CompareAndSwapInt32(&peak, old, now) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return &SendMessageResponse{}, nil
	}

	report, err := client.Broadcast(context.Background(), recipients, send, BroadcastOptions{BatchSize: 2, SkipDelay: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := atomic.LoadInt32(&peak); got > 2 {
		t.Fatalf("batch size 2 exceeded: %d sends in flight", got)
	}
	if len(report.Sent) != 6 {
		t.Fatalf("expected 6 sent, got %d", len(report.Sent))
	}
	for i, outcome := range report.Sent {
		if outcome.To != recipients[i] {
			t.Fatalf("order not preserved at %d: got %q want %q", i, outcome.To, recipients[i])
		}
	}
}

func TestBroadcastPacesBetweenBatches(t *testing.T) {
	client := newBroadcastClient(t)
	recipients := []string{"a", "b", "c", "d"}

	send := func(ctx context.Context, to string) (*SendMessageResponse, error) {
		return &SendMessageResponse{}, nil
	}

	startedAt := time.Now()
	if _, err := client.Broadcast(context.Background(), recipients, send, BroadcastOptions{BatchSize: 2, Delay: 50 * time.Millisecond}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(startedAt); elapsed < 50*time.Millisecond {
		t.Fatalf("expected one pacing delay, run took only %v", elapsed)
	}
}

func TestBroadcastContextCancelReturnsPartialReport(t *testing.T) {
	client := newBroadcastClient(t)
	ctx, cancel := context.WithCancel(context.Background())

	send := func(ctx context.Context, to string) (*SendMessageResponse, error) {
		if to == "b" {
			cancel()
		}
		return &SendMessageResponse{}, nil
	}

	report, err := client.Broadcast(ctx, []string{"a", "b", "c", "d"}, send, BroadcastOptions{BatchSize: 2, Delay: time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(report.Sent) != 2 {
		t.Fatalf("expected first batch settled before cancellation, got %d sent", len(report.Sent))
	}
}

func TestBroadcastRequiresSendFunc(t *testing.T) {
	client := newBroadcastClient(t)
	if _, err := client.Broadcast(context.Background(), []string{"a"}, nil, BroadcastOptions{}); err == nil {
		t.Fatal("expected error for nil send func")
	}
}
