package natsbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"
)

// HandlerFunc processes one event. A returned error redelivers the event.
type HandlerFunc func(ctx context.Context, ev Event) error

// batchSizer grows the fetch batch while batches come back full and shrinks
// it while they come back empty.
type batchSizer struct {
	size, min, max int
	full, empty    int
}

func newBatchSizer() *batchSizer {
	return &batchSizer{size: 64, min: 8, max: 512}
}

// observe records a fetch that returned n messages.
func (b *batchSizer) observe(n int) {
	switch {
	case n == 0:
		b.empty++
		b.full = 0
		if b.empty >= 3 && b.size > b.min {
			b.size = max(b.size/2, b.min)
			b.empty = 0
		}
	case n == b.size:
		b.full++
		b.empty = 0
		if b.full >= 3 && b.size < b.max {
			b.size = min(b.size*2, b.max)
			b.full = 0
		}
	default:
		b.full = 0
		b.empty = 0
	}
}

// Consume pulls events from the stream with the durable consumer and passes
// them to fn until ctx is done.
func (c *Client) Consume(ctx context.Context, durable string, fn HandlerFunc) error {
	sub, err := c.js.PullSubscribe(
		"crm.*.events.>",
		durable,
		nats.ManualAck(),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.MaxAckPending(1000),
	)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", durable, err)
	}
	defer sub.Unsubscribe() //nolint:errcheck

	logger := c.logger.With("consumer", durable)
	logger.Info("consumer started")

	sizer := newBatchSizer()
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		msgs, err := sub.Fetch(sizer.size, nats.MaxWait(5*time.Second))
		if err != nil && !errors.Is(err, nats.ErrTimeout) {
			logger.Warn("fetch", "err", err)
		}
		sizer.observe(len(msgs))

		for _, msg := range msgs {
			handle(ctx, msg, fn, logger)
		}
	}
}

func handle(ctx context.Context, msg *nats.Msg, fn HandlerFunc, logger *log.Logger) {
	ev, err := UnmarshalEvent(msg.Data)
	if err != nil {
		logger.Error("undecodable event, terminating", "subject", msg.Subject, "err", err)
		_ = msg.Term()
		return
	}
	if err := fn(ctx, ev); err != nil {
		logger.Warn("process event", "id", ev.ID, "err", err)
		_ = msg.NakWithDelay(5 * time.Second)
		return
	}
	_ = msg.Ack()
}
