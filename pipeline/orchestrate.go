package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/flowkit/boundedbuf"
	"github.com/flowkit/boundedbuf/chanbuf"
)

// State is the orchestrator's lifecycle phase.
type State int32

const (
	// StateIdle: no run started yet.
	StateIdle State = iota
	// StateRunning: producers and consumers are active.
	StateRunning
	// StateDraining: all producers finished, buffer closed, consumers
	// still draining.
	StateDraining
	// StateDone: every consumer has observed closure.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// UnitStats reports one unit's contribution to a run.
type UnitStats struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
}

// Report is the outcome of a run: item accounting plus the verdict of the
// no-loss / no-duplication check.
type Report struct {
	RunID    string        `json:"run_id"`
	Produced int           `json:"produced"`
	Consumed int           `json:"consumed"`
	// Match is true when the multiset of consumed items equals the
	// multiset of produced items.
	Match          bool          `json:"match"`
	FinalBufferLen int           `json:"final_buffer_len"`
	Duration       time.Duration `json:"duration"`
	Producers      []UnitStats   `json:"producers"`
	Consumers      []UnitStats   `json:"consumers"`
}

// Runner supervises one producer/consumer run. It owns the buffer and the
// units it creates; it never reaches into buffer internals.
type Runner struct {
	cfg   Config
	state atomic.Int32
}

// NewRunner creates a runner for cfg. The configuration is validated when
// Run is called.
func NewRunner(cfg Config) *Runner {
	return &Runner{cfg: cfg}
}

// State returns the current lifecycle phase. Safe to call from any
// goroutine while Run is in flight.
func (r *Runner) State() State {
	return State(r.state.Load())
}

// Run executes the configured pipeline: it builds the buffer, starts every
// producer and consumer, closes the buffer after all producers finish,
// waits for the consumers, and verifies the item accounting.
//
// The returned Report is non-nil whenever the run started, including runs
// where a unit terminated early; in that case the error reports the cause
// and the Report still carries the real counts. A configuration error is
// returned before any goroutine starts.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	cfg := r.cfg
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	buf, err := newBuffer[int](cfg)
	if err != nil {
		return nil, err
	}

	source := make([]int, cfg.TotalItems)
	for i := range source {
		source[i] = i + 1
	}
	chunks := splitChunks(source, cfg.Producers)

	runID := uuid.NewString()
	log := cfg.Log
	log.Record(Event{RunID: runID, Entity: "orchestrator", Action: eventRunStarted, Details: map[string]any{
		"capacity":    cfg.Capacity,
		"producers":   cfg.Producers,
		"consumers":   cfg.Consumers,
		"total_items": cfg.TotalItems,
		"backend":     backendName(cfg),
		"seed":        seed,
	}})

	producers := make([]*Producer[int], cfg.Producers)
	for i := range producers {
		producers[i] = NewProducer(
			fmt.Sprintf("producer-%d", i+1),
			buf, chunks[i], cfg.producerDelay(),
			seed+int64(i)*17+99, log,
		)
	}
	consumers := make([]*Consumer[int], cfg.Consumers)
	for i := range consumers {
		consumers[i] = NewConsumer(
			fmt.Sprintf("consumer-%d", i+1),
			buf, cfg.consumerDelay(),
			seed+int64(i)*31+1000, log,
		)
	}

	start := time.Now()
	r.state.Store(int32(StateRunning))

	var pg, cg errgroup.Group
	for _, c := range consumers {
		c := c
		cg.Go(func() error { return c.Run(ctx) })
	}
	for _, p := range producers {
		p := p
		pg.Go(func() error { return p.Run(ctx) })
	}

	perr := pg.Wait()
	r.state.Store(int32(StateDraining))
	buf.Close()
	log.Record(Event{RunID: runID, Entity: "orchestrator", Action: eventBufferClosed, Size: buf.Len()})

	cerr := cg.Wait()
	r.state.Store(int32(StateDone))

	report := &Report{
		RunID:          runID,
		FinalBufferLen: buf.Len(),
		Duration:       time.Since(start),
	}
	produced := make(map[int]int)
	for i, p := range producers {
		report.Producers = append(report.Producers, UnitStats{Name: p.Name(), Items: p.Produced()})
		report.Produced += p.Produced()
		for _, v := range chunks[i][:p.Produced()] {
			produced[v]++
		}
	}
	consumed := make(map[int]int)
	for _, c := range consumers {
		report.Consumers = append(report.Consumers, UnitStats{Name: c.Name(), Items: c.Consumed()})
		report.Consumed += c.Consumed()
		for _, v := range c.Items() {
			consumed[v]++
		}
	}
	report.Match = multisetEqual(produced, consumed)

	log.Record(Event{RunID: runID, Entity: "orchestrator", Action: eventRunFinished, Size: report.FinalBufferLen,
		Details: map[string]any{
			"produced": report.Produced,
			"consumed": report.Consumed,
			"match":    report.Match,
		}})

	err = errors.Join(perr, cerr)
	if err == nil && !report.Match {
		err = fmt.Errorf("pipeline: item accounting mismatch: produced %d, consumed %d",
			report.Produced, report.Consumed)
	}
	return report, err
}

// Run is a convenience wrapper constructing a Runner and executing it.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	return NewRunner(cfg).Run(ctx)
}

func newBuffer[T any](cfg Config) (Buffer[T], error) {
	if cfg.Backend == BackendChan {
		b, err := chanbuf.New[T](cfg.Capacity)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	b, err := boundedbuf.New[T](cfg.Capacity)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func backendName(cfg Config) string {
	if cfg.Backend == "" {
		return BackendCond
	}
	return cfg.Backend
}

// splitChunks partitions src into parts contiguous slices whose lengths
// differ by at most one. Relative order is preserved within each chunk.
func splitChunks[T any](src []T, parts int) [][]T {
	chunks := make([][]T, parts)
	size := len(src) / parts
	rem := len(src) % parts
	off := 0
	for i := range chunks {
		n := size
		if i < rem {
			n++
		}
		chunks[i] = src[off : off+n]
		off += n
	}
	return chunks
}

func multisetEqual(a, b map[int]int) bool {
	if len(a) != len(b) {
		return false
	}
	for v, n := range a {
		if b[v] != n {
			return false
		}
	}
	return true
}
