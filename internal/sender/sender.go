package sender

import (
	"context"
	"sync"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/stadium-map/internal/metrics"
	"github.com/Sh00ty/stadium-map/internal/models"
)

const (
	defaultMaxUnsent    = 10000
	defaultFlushTimeout = 5 * time.Second
)

// Publisher returns how many events from the head of the batch were
// published, even when it fails.
type Publisher interface {
	PublishClosureEvents(ctx context.Context, events []models.ClosureEvent) (int, error)
}

func NewSenderController(
	eventCh chan models.ClosureEvent,
	publisher Publisher,
	retryTimeout time.Duration,
	m metrics.Metrics,
) *SenderControler {
	if m == nil {
		m = metrics.Nop{}
	}
	return &SenderControler{
		events:       eventCh,
		publisher:    publisher,
		retryTimeout: retryTimeout,
		metrics:      m,
		maxUnsent:    defaultMaxUnsent,
		flushTimeout: defaultFlushTimeout,
		unsent:       make([]models.ClosureEvent, 0),
	}
}

type SenderControler struct {
	events       chan models.ClosureEvent
	retryTimeout time.Duration
	publisher    Publisher
	metrics      metrics.Metrics

	// oldest events are dropped once the queue holds more than maxUnsent
	maxUnsent int
	// bounds the last flush after ctx is done
	flushTimeout time.Duration

	unsentGuard sync.Mutex
	unsent      []models.ClosureEvent
}

// Run publishes events until the channel is closed or ctx is done, then
// makes one last attempt to flush the unsent queue.
// Events that failed three times wait in the unsent queue for the next tick.
func (c *SenderControler) Run(ctx context.Context) {
	ticker := time.NewTicker(c.retryTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.flush(ctx)
			return
		case <-ticker.C:
			c.sendUnsentEvents(ctx)
		case event, ok := <-c.events:
			if !ok {
				c.sendUnsentEvents(ctx)
				return
			}
			c.publish(ctx, event)
		}
	}
}

// publish keeps events of one closure in order: while older events are
// queued a new one goes behind them.
func (c *SenderControler) publish(ctx context.Context, event models.ClosureEvent) {
	if c.Unsent() > 0 {
		c.enqueue(event)
		c.sendUnsentEvents(ctx)
		return
	}

	err := retry.Do(
		func() error {
			_, err := c.publisher.PublishClosureEvents(ctx, []models.ClosureEvent{event})
			return err
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		log.Error().Err(err).Msgf("failed to publish closure %s event, put it into unsent queue", event.Op)
		c.metrics.Increment("sender.publish.failed")
		c.enqueue(event)
		return
	}
	c.metrics.Increment("sender.published")
}

func (c *SenderControler) enqueue(event models.ClosureEvent) {
	c.unsentGuard.Lock()
	defer c.unsentGuard.Unlock()

	c.unsent = append(c.unsent, event)
	if over := len(c.unsent) - c.maxUnsent; over > 0 {
		log.Warn().Msgf("unsent queue is full, dropping %d oldest closure events", over)
		for range over {
			c.metrics.Increment("sender.dropped")
		}
		c.unsent = append(c.unsent[:0], c.unsent[over:]...)
	}
	c.metrics.Gauge("sender.unsent", len(c.unsent))
}

// flush runs after ctx is done, so it gets its own deadline.
func (c *SenderControler) flush(ctx context.Context) {
	if c.Unsent() == 0 {
		return
	}
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.flushTimeout)
	defer cancel()

	c.sendUnsentEvents(flushCtx)
	if left := c.Unsent(); left > 0 {
		log.Error().Msgf("dropping %d unsent closure events on shutdown", left)
		for range left {
			c.metrics.Increment("sender.dropped")
		}
	}
}

func (c *SenderControler) sendUnsentEvents(ctx context.Context) {
	c.unsentGuard.Lock()
	defer c.unsentGuard.Unlock()

	if len(c.unsent) == 0 {
		return
	}
	done, err := c.publisher.PublishClosureEvents(ctx, c.unsent)
	if err != nil {
		log.Warn().Err(err).Msgf("failed to publish unsent closure events: done %d of %d", done, len(c.unsent))

		newUnsent := make([]models.ClosureEvent, len(c.unsent)-done)
		copy(newUnsent, c.unsent[done:])
		c.unsent = newUnsent
		c.metrics.Gauge("sender.unsent", len(c.unsent))
		return
	}
	c.unsent = c.unsent[:0]
	c.metrics.Gauge("sender.unsent", 0)
}

// Unsent is the number of events waiting for the next retry tick.
func (c *SenderControler) Unsent() int {
	c.unsentGuard.Lock()
	defer c.unsentGuard.Unlock()
	return len(c.unsent)
}
