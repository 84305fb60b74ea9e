package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Buffer backends selectable via Config.Backend.
const (
	// BackendCond is the condition-variable buffer from the root package.
	BackendCond = "cond"
	// BackendChan is the channel-backed buffer from the chanbuf package.
	BackendChan = "chan"
)

// Config describes a producer/consumer run. Delays are uniform random
// per-item pauses drawn from [min, max] milliseconds; a unit sleeps
// outside the buffer's critical section, never inside it.
type Config struct {
	// Capacity is the fixed buffer capacity, at least 1.
	Capacity int `yaml:"capacity"`
	// Producers and Consumers are the unit counts, each at least 1.
	Producers int `yaml:"producers"`
	Consumers int `yaml:"consumers"`
	// TotalItems is the length of the global source sequence 1..TotalItems,
	// partitioned into contiguous disjoint chunks across producers.
	TotalItems int `yaml:"total_items"`
	// Backend selects the buffer implementation; empty means BackendCond.
	Backend string `yaml:"backend"`
	// Seed feeds the per-unit delay generators; 0 derives a seed from the
	// wall clock at run start.
	Seed int64 `yaml:"seed"`

	ProducerDelayMinMs int `yaml:"producer_delay_min_ms"`
	ProducerDelayMaxMs int `yaml:"producer_delay_max_ms"`
	ConsumerDelayMinMs int `yaml:"consumer_delay_min_ms"`
	ConsumerDelayMaxMs int `yaml:"consumer_delay_max_ms"`

	// Log receives one JSON line per significant event; nil disables
	// event logging.
	Log *EventLog `yaml:"-"`
}

// DefaultConfig returns the demo configuration: one producer emitting
// 1..20 into a buffer of capacity 5, one slower consumer draining it.
func DefaultConfig() Config {
	return Config{
		Capacity:           5,
		Producers:          1,
		Consumers:          1,
		TotalItems:         20,
		Backend:            BackendCond,
		ProducerDelayMinMs: 100,
		ProducerDelayMaxMs: 100,
		ConsumerDelayMinMs: 150,
		ConsumerDelayMaxMs: 150,
	}
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (cfg Config) validate() error {
	if cfg.Capacity <= 0 {
		return errors.New("capacity must be > 0")
	}
	if cfg.Producers <= 0 {
		return errors.New("producers must be > 0")
	}
	if cfg.Consumers <= 0 {
		return errors.New("consumers must be > 0")
	}
	if cfg.TotalItems <= 0 {
		return errors.New("total items must be > 0")
	}
	if cfg.TotalItems < cfg.Producers {
		return errors.New("total items must be >= producer count")
	}
	if cfg.ProducerDelayMinMs < 0 || cfg.ProducerDelayMaxMs < cfg.ProducerDelayMinMs {
		return errors.New("invalid producer delay range")
	}
	if cfg.ConsumerDelayMinMs < 0 || cfg.ConsumerDelayMaxMs < cfg.ConsumerDelayMinMs {
		return errors.New("invalid consumer delay range")
	}
	switch cfg.Backend {
	case "", BackendCond, BackendChan:
	default:
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	return nil
}

func (cfg Config) producerDelay() DelayRange {
	return DelayRange{
		Min: time.Duration(cfg.ProducerDelayMinMs) * time.Millisecond,
		Max: time.Duration(cfg.ProducerDelayMaxMs) * time.Millisecond,
	}
}

func (cfg Config) consumerDelay() DelayRange {
	return DelayRange{
		Min: time.Duration(cfg.ConsumerDelayMinMs) * time.Millisecond,
		Max: time.Duration(cfg.ConsumerDelayMaxMs) * time.Millisecond,
	}
}
