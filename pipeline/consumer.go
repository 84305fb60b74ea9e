package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/flowkit/boundedbuf"
)

// Consumer drains a shared buffer into a destination slice it exclusively
// owns, with an optional simulated consumption delay between items. It
// terminates when the buffer reports closed-and-drained.
type Consumer[T any] struct {
	name  string
	buf   Buffer[T]
	dest  []T
	delay DelayRange
	rng   *rand.Rand
	log   *EventLog
}

// NewConsumer creates a consumer draining buf. The destination slice is
// created by the consumer and never shared while Run is in flight.
func NewConsumer[T any](name string, buf Buffer[T], delay DelayRange, seed int64, log *EventLog) *Consumer[T] {
	return &Consumer[T]{
		name:  name,
		buf:   buf,
		delay: delay,
		rng:   rand.New(rand.NewSource(seed)),
		log:   log,
	}
}

// Run takes items until the buffer is closed and drained, which it treats
// as normal completion. A done context while blocked or between items
// stops the consumer cleanly; items already taken are kept in the
// destination and counted.
func (c *Consumer[T]) Run(ctx context.Context) error {
	for {
		v, err := c.buf.Take(ctx)
		if errors.Is(err, boundedbuf.ErrClosed) {
			c.log.Record(Event{Entity: c.name, Action: eventConsumerDone, Count: len(c.dest), Size: c.buf.Len()})
			return nil
		}
		if err != nil {
			c.log.Record(Event{Entity: c.name, Action: eventUnitTerminated, Count: len(c.dest),
				Details: map[string]any{"cause": err.Error()}})
			return fmt.Errorf("%s: take: %w", c.name, err)
		}
		c.dest = append(c.dest, v)
		c.log.Record(Event{Entity: c.name, Action: eventConsumed, Item: v, Size: c.buf.Len()})
		if d := c.delay.pick(c.rng); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				c.log.Record(Event{Entity: c.name, Action: eventUnitTerminated, Count: len(c.dest),
					Details: map[string]any{"cause": ctx.Err().Error()}})
				return fmt.Errorf("%s: %w", c.name, ctx.Err())
			}
		}
	}
}

// Items returns the destination sequence in consumption order. Safe to
// read once Run has returned.
func (c *Consumer[T]) Items() []T { return c.dest }

// Consumed returns how many items this consumer took. Safe to read once
// Run has returned.
func (c *Consumer[T]) Consumed() int { return len(c.dest) }

// Name returns the unit's identity as used in the event log.
func (c *Consumer[T]) Name() string { return c.name }
