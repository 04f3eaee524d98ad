// Package push delivers notification pushes to an Expo-compatible
// gateway in gateway-sized batches. Delivery is best effort: the ledger
// row is the durable record, a dropped push surfaces on the next poll.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"podpulse/internal/domain"
)

const (
	defaultBatchSize   = 100 // gateway maximum per request
	defaultConcurrency = 3
	defaultQueueSize   = 256
	requestTimeout     = 10 * time.Second
)

// ErrQueueFull is returned by Deliver when the bounded job queue is at
// capacity. Callers log and drop; the queue never blocks a mutation.
var ErrQueueFull = errors.New("push delivery queue is full")

// Config holds settings for the gateway client.
type Config struct {
	GatewayURL  string
	BatchSize   int
	Concurrency int
	QueueSize   int
}

// Client is an explicitly constructed delivery client with its own
// lifecycle: jobs are drained FIFO by a single dispatcher goroutine and
// each job's batches are submitted with bounded parallelism.
type Client struct {
	gatewayURL  string
	batchSize   int
	concurrency int
	httpClient  *http.Client
	logger      *slog.Logger

	jobs      chan []domain.PushMessage
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient starts the dispatcher goroutine and returns the client.
// Callers must Close it to drain outstanding jobs on shutdown.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	c := &Client{
		gatewayURL:  cfg.GatewayURL,
		batchSize:   cfg.BatchSize,
		concurrency: cfg.Concurrency,
		httpClient:  &http.Client{Timeout: requestTimeout},
		logger:      logger,
		jobs:        make(chan []domain.PushMessage, cfg.QueueSize),
		done:        make(chan struct{}),
	}
	go c.run()
	return c
}

// Deliver enqueues one fan-out's messages and returns immediately.
func (c *Client) Deliver(messages []domain.PushMessage) error {
	if len(messages) == 0 {
		return nil
	}
	select {
	case c.jobs <- messages:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting jobs, drains the queue, and waits for the
// dispatcher to finish.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.jobs)
	})
	<-c.done
}

func (c *Client) run() {
	defer close(c.done)
	for messages := range c.jobs {
		c.send(context.Background(), messages)
	}
}

// send partitions messages into gateway-sized batches and submits them
// with at most c.concurrency requests in flight. A failed batch is
// logged and the remaining batches still go out.
func (c *Client) send(ctx context.Context, messages []domain.PushMessage) {
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for start := 0; start < len(messages); start += c.batchSize {
		end := min(start+c.batchSize, len(messages))
		batch := messages[start:end]
		g.Go(func() error {
			if err := c.postBatch(ctx, batch); err != nil {
				c.logger.Error("push batch failed", "size", len(batch), "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Client) postBatch(ctx context.Context, batch []domain.PushMessage) error {
	payload, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("marshal push batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post push batch: %w", err)
	}
	defer resp.Body.Close()
	// Per-message receipts are ignored for now: delivery is fire-and-forget.
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("push gateway returned %s", resp.Status)
	}
	return nil
}
