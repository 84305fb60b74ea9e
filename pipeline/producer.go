package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// DelayRange is a uniform random per-item pause. A zero range disables
// sleeping entirely.
type DelayRange struct {
	Min, Max time.Duration
}

func (d DelayRange) pick(rng *rand.Rand) time.Duration {
	if d.Max <= 0 {
		return 0
	}
	if d.Max == d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rng.Int63n(int64(d.Max-d.Min)+1))
}

// Producer drives a finite source sequence into a shared buffer, in order,
// with an optional simulated production delay between items. It borrows
// the buffer; the source slice is exclusively its own.
type Producer[T any] struct {
	name     string
	buf      Buffer[T]
	source   []T
	delay    DelayRange
	rng      *rand.Rand
	log      *EventLog
	produced int
}

// NewProducer creates a producer that will put every element of source
// into buf. Each producer owns its delay generator, seeded independently
// so units never share random state.
func NewProducer[T any](name string, buf Buffer[T], source []T, delay DelayRange, seed int64, log *EventLog) *Producer[T] {
	return &Producer[T]{
		name:   name,
		buf:    buf,
		source: source,
		delay:  delay,
		rng:    rand.New(rand.NewSource(seed)),
		log:    log,
	}
}

// Run puts each source item into the buffer, blocking as the buffer
// requires, and returns nil after the source is exhausted. If ctx is done
// while blocked or between items, the producer stops cleanly without a
// partial insert and reports the cause; items already put stay put.
func (p *Producer[T]) Run(ctx context.Context) error {
	for _, v := range p.source {
		if p.buf.Len() == p.buf.Cap() {
			p.log.Record(Event{Entity: p.name, Action: eventProducerWaits, Size: p.buf.Len()})
		}
		if err := p.buf.Put(ctx, v); err != nil {
			p.log.Record(Event{Entity: p.name, Action: eventUnitTerminated, Count: p.produced,
				Details: map[string]any{"cause": err.Error()}})
			return fmt.Errorf("%s: put: %w", p.name, err)
		}
		p.produced++
		p.log.Record(Event{Entity: p.name, Action: eventProduced, Item: v, Size: p.buf.Len()})
		if d := p.delay.pick(p.rng); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				p.log.Record(Event{Entity: p.name, Action: eventUnitTerminated, Count: p.produced,
					Details: map[string]any{"cause": ctx.Err().Error()}})
				return fmt.Errorf("%s: %w", p.name, ctx.Err())
			}
		}
	}
	p.log.Record(Event{Entity: p.name, Action: eventProducerDone, Count: p.produced, Size: p.buf.Len()})
	return nil
}

// Produced returns how many items this producer successfully put. Safe to
// read once Run has returned.
func (p *Producer[T]) Produced() int { return p.produced }

// Name returns the unit's identity as used in the event log.
func (p *Producer[T]) Name() string { return p.name }
