package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
buffer:
  capacity: 16
  queue_depth: 128
producer:
  interval: 50ms
  count: 200
consumer:
  interval: 100ms
  mode: at
  tolerance: 500ms
sampler:
  period: 2s
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Buffer.Capacity != 16 {
		t.Errorf("Buffer.Capacity = %d, want 16", cfg.Buffer.Capacity)
	}
	if cfg.Buffer.QueueDepth != 128 {
		t.Errorf("Buffer.QueueDepth = %d, want 128", cfg.Buffer.QueueDepth)
	}
	if cfg.Producer.Interval != 50*time.Millisecond {
		t.Errorf("Producer.Interval = %v, want 50ms", cfg.Producer.Interval)
	}
	if cfg.Producer.Count != 200 {
		t.Errorf("Producer.Count = %d, want 200", cfg.Producer.Count)
	}
	if cfg.Consumer.Mode != ModeAt {
		t.Errorf("Consumer.Mode = %q, want %q", cfg.Consumer.Mode, ModeAt)
	}
	if cfg.Consumer.Tolerance != 500*time.Millisecond {
		t.Errorf("Consumer.Tolerance = %v, want 500ms", cfg.Consumer.Tolerance)
	}
	if cfg.Sampler.Period != 2*time.Second {
		t.Errorf("Sampler.Period = %v, want 2s", cfg.Sampler.Period)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `
buffer:
  capacity: 4
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Buffer.Capacity != 4 {
		t.Errorf("Buffer.Capacity = %d, want 4", cfg.Buffer.Capacity)
	}
	if cfg.Buffer.QueueDepth != DefaultQueueDepth {
		t.Errorf("Buffer.QueueDepth = %d, want default %d", cfg.Buffer.QueueDepth, DefaultQueueDepth)
	}
	if cfg.Consumer.Mode != ModeLast {
		t.Errorf("Consumer.Mode = %q, want default %q", cfg.Consumer.Mode, ModeLast)
	}
	if cfg.Sampler.Period != DefaultSamplerPeriod {
		t.Errorf("Sampler.Period = %v, want default %v", cfg.Sampler.Period, DefaultSamplerPeriod)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() with missing file should fail")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "buffer: [not a mapping")
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() with invalid YAML should fail")
	}
}

func TestLoad_Validation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"zero capacity", "buffer:\n  capacity: 0\n", "buffer.capacity"},
		{"negative queue depth", "buffer:\n  queue_depth: -1\n", "buffer.queue_depth"},
		{"zero producer interval", "producer:\n  interval: 0s\n", "producer.interval"},
		{"negative count", "producer:\n  count: -5\n", "producer.count"},
		{"unknown mode", "consumer:\n  mode: newest\n", "consumer.mode"},
		{"negative tolerance", "consumer:\n  tolerance: -1s\n", "consumer.tolerance"},
		{"zero sampler period", "sampler:\n  period: 0s\n", "sampler.period"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() should fail validation")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := validate(cfg); err != nil {
		t.Fatalf("Default() config should validate: %v", err)
	}
}
