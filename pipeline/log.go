package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// EventLog writes one JSON object per line for each significant event of a
// run. All methods are safe for concurrent use; a nil *EventLog discards
// every event, so callers never need to guard their Record calls.
type EventLog struct {
	mu   sync.Mutex
	enc  *json.Encoder
	file *os.File
}

// NewEventLog writes events to w.
func NewEventLog(w io.Writer) *EventLog {
	return &EventLog{enc: json.NewEncoder(w)}
}

// OpenEventLog creates (or truncates) the file at path and writes events
// to it. The caller owns the log and should Close it after the run.
func OpenEventLog(path string) (*EventLog, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &EventLog{enc: json.NewEncoder(file), file: file}, nil
}

// Close closes the underlying file, if any.
func (l *EventLog) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Record appends one event line. Encoding failures are reported on stderr
// rather than propagated; the event log is diagnostic, never load-bearing.
func (l *EventLog) Record(e Event) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if e.WallTime.IsZero() {
		e.WallTime = time.Now()
	}
	if err := l.enc.Encode(e); err != nil {
		fmt.Fprintf(os.Stderr, "event log error: %v\n", err)
	}
}

// Event describes a single logged occurrence. Size is the buffer length
// observed immediately after the operation; it is informational and may be
// stale by the time the line is read.
type Event struct {
	WallTime time.Time      `json:"wall_time"`
	RunID    string         `json:"run_id,omitempty"`
	Entity   string         `json:"entity"`
	Action   string         `json:"event"`
	Item     any            `json:"item,omitempty"`
	Size     int            `json:"size"`
	Count    int            `json:"count,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// Event names recorded during a run.
const (
	eventRunStarted     = "run_started"
	eventProduced       = "produced"
	eventProducerWaits  = "producer_waiting"
	eventProducerDone   = "producer_done"
	eventConsumed       = "consumed"
	eventConsumerDone   = "consumer_done"
	eventBufferClosed   = "buffer_closed"
	eventRunFinished    = "run_finished"
	eventUnitTerminated = "unit_terminated"
)
