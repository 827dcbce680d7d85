package whatsapp

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	defaultBroadcastBatchSize = 50
	defaultBroadcastDelay     = 100 * time.Millisecond
)

// BroadcastOptions tunes the dispatcher. The zero value picks the defaults
// (batches of 50, 100ms pacing). A zero Delay with SkipDelay set disables
// inter-batch pacing entirely.
type BroadcastOptions struct {
	// BatchSize bounds how many sends are in flight concurrently.
	BatchSize int
	// Delay is the fixed pause between consecutive batches. It is not
	// adaptive: failures never shorten, lengthen or abort the run.
	Delay time.Duration
	// SkipDelay disables pacing even when Delay is zero-valued.
	SkipDelay bool
}

func (o BroadcastOptions) withDefaults() BroadcastOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBroadcastBatchSize
	}
	if o.SkipDelay {
		o.Delay = 0
	} else if o.Delay <= 0 {
		o.Delay = defaultBroadcastDelay
	}
	return o
}

// SendFunc is the per-recipient operation a broadcast replays. It is invoked
// concurrently within a batch and must be safe for concurrent use; every
// client endpoint method qualifies.
type SendFunc func(ctx context.Context, to string) (*SendMessageResponse, error)

// BroadcastOutcome pairs a recipient with its successful send result.
type BroadcastOutcome struct {
	To       string
	Response *SendMessageResponse
}

// BroadcastFailure pairs a recipient with the error its send produced.
type BroadcastFailure struct {
	To  string
	Err error
}

// BroadcastReport aggregates the per-recipient outcomes of one broadcast.
// Both lists preserve recipient order within and across batches.
type BroadcastReport struct {
	Sent   []BroadcastOutcome
	Failed []BroadcastFailure
}

// Broadcast replays send across recipients in contiguous, order-preserving
// batches. All sends of one batch are in flight concurrently and every one
// settles before the batch closes; a failing recipient never cancels its
// batch mates. Batches run strictly sequentially with a fixed pacing delay
// between them (never after the last).
//
// The returned report is complete when the error is nil. When ctx is
// cancelled mid-run the report covers every batch that settled before the
// cancellation, alongside ctx's error.
func (c *Client) Broadcast(ctx context.Context, recipients []string, send SendFunc, opts BroadcastOptions) (*BroadcastReport, error) {
	if send == nil {
		return nil, errors.New("whatsapp broadcast: send function is required")
	}
	opts = opts.withDefaults()

	report := &BroadcastReport{}
	totalBatches := (len(recipients) + opts.BatchSize - 1) / opts.BatchSize

	for start := 0; start < len(recipients); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(recipients) {
			end = len(recipients)
		}
		batch := recipients[start:end]
		batchIndex := start / opts.BatchSize

		type outcome struct {
			resp *SendMessageResponse
			err  error
		}
		outcomes := make([]outcome, len(batch))

		var wg sync.WaitGroup
		for i, to := range batch {
			wg.Add(1)
			go func(i int, to string) {
				defer wg.Done()
				resp, err := send(ctx, to)
				outcomes[i] = outcome{resp: resp, err: err}
			}(i, to)
		}
		wg.Wait()

		for i, to := range batch {
			if outcomes[i].err != nil {
				report.Failed = append(report.Failed, BroadcastFailure{To: to, Err: outcomes[i].err})
				continue
			}
			report.Sent = append(report.Sent, BroadcastOutcome{To: to, Response: outcomes[i].resp})
		}

		c.logger.Debug().
			Int("batch", batchIndex+1).
			Int("batches", totalBatches).
			Int("batch_size", len(batch)).
			Int("sent", len(report.Sent)).
			Int("failed", len(report.Failed)).
			Msg("whatsapp broadcast: batch settled")

		if batchIndex == totalBatches-1 || opts.Delay <= 0 {
			continue
		}
		select {
		case <-time.After(opts.Delay):
		case <-ctx.Done():
			return report, ctx.Err()
		}
	}

	return report, nil
}

// BroadcastText fans one text message out to every recipient.
func (c *Client) BroadcastText(ctx context.Context, recipients []string, text Text, opts BroadcastOptions) (*BroadcastReport, error) {
	return c.Broadcast(ctx, recipients, func(ctx context.Context, to string) (*SendMessageResponse, error) {
		return c.SendText(ctx, to, text)
	}, opts)
}

// BroadcastTemplate fans one template message out to every recipient.
func (c *Client) BroadcastTemplate(ctx context.Context, recipients []string, tmpl Template, opts BroadcastOptions) (*BroadcastReport, error) {
	return c.Broadcast(ctx, recipients, func(ctx context.Context, to string) (*SendMessageResponse, error) {
		return c.SendTemplate(ctx, to, tmpl)
	}, opts)
}
