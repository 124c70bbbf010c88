package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultCapacity         = 8
	DefaultQueueDepth       = 64
	DefaultProducerInterval = 100 * time.Millisecond
	DefaultConsumerInterval = 200 * time.Millisecond
	DefaultTolerance        = 250 * time.Millisecond
	DefaultSamplerPeriod    = time.Second
)

// Consumer read modes.
const (
	ModeFirst = "first"
	ModeLast  = "last"
	ModeAt    = "at"
)

// Config is the top-level configuration for the demo binary.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Buffer   BufferConfig   `yaml:"buffer"`
	Producer ProducerConfig `yaml:"producer"`
	Consumer ConsumerConfig `yaml:"consumer"`
	Sampler  SamplerConfig  `yaml:"sampler"`
}

// BufferConfig holds the synchronized buffer settings.
type BufferConfig struct {
	// Capacity is the number of entries each channel retains.
	Capacity int `yaml:"capacity"`

	// QueueDepth is how many insert jobs may wait on the worker before the
	// oldest pending one is evicted.
	QueueDepth int `yaml:"queue_depth"`
}

// ProducerConfig controls the demo's producer goroutines.
type ProducerConfig struct {
	// Interval is the delay between consecutive puts on each channel.
	Interval time.Duration `yaml:"interval"`

	// Count limits how many values each producer writes. Zero means
	// produce until shutdown.
	Count int `yaml:"count"`
}

// ConsumerConfig controls the demo's consumer loop.
type ConsumerConfig struct {
	// Interval is the delay between consecutive reads.
	Interval time.Duration `yaml:"interval"`

	// Mode selects the read operation: first | last | at.
	Mode string `yaml:"mode"`

	// Tolerance is the max_diff applied to "last" (write-time recency) and
	// "at" (payload-timestamp distance) reads.
	Tolerance time.Duration `yaml:"tolerance"`
}

// SamplerConfig controls the process-metrics sampler.
type SamplerConfig struct {
	// Period is the sampler's reporting interval.
	Period time.Duration `yaml:"period"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config usable without any config file.
func Default() *Config {
	return defaults()
}

func defaults() *Config {
	return &Config{
		Buffer: BufferConfig{
			Capacity:   DefaultCapacity,
			QueueDepth: DefaultQueueDepth,
		},
		Producer: ProducerConfig{
			Interval: DefaultProducerInterval,
		},
		Consumer: ConsumerConfig{
			Interval:  DefaultConsumerInterval,
			Mode:      ModeLast,
			Tolerance: DefaultTolerance,
		},
		Sampler: SamplerConfig{
			Period: DefaultSamplerPeriod,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Buffer.Capacity <= 0 {
		return fmt.Errorf("buffer.capacity must be positive")
	}
	if cfg.Buffer.QueueDepth <= 0 {
		return fmt.Errorf("buffer.queue_depth must be positive")
	}
	if cfg.Producer.Interval <= 0 {
		return fmt.Errorf("producer.interval must be positive")
	}
	if cfg.Producer.Count < 0 {
		return fmt.Errorf("producer.count must not be negative")
	}
	if cfg.Consumer.Interval <= 0 {
		return fmt.Errorf("consumer.interval must be positive")
	}
	switch cfg.Consumer.Mode {
	case ModeFirst, ModeLast, ModeAt:
	default:
		return fmt.Errorf("consumer.mode: unknown mode %q", cfg.Consumer.Mode)
	}
	if cfg.Consumer.Tolerance < 0 {
		return fmt.Errorf("consumer.tolerance must not be negative")
	}
	if cfg.Sampler.Period <= 0 {
		return fmt.Errorf("sampler.period must be positive")
	}
	return nil
}
