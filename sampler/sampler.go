package sampler

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultPeriod is the reporting interval when none is configured.
const DefaultPeriod = time.Second

// Report is one period's derived measurements.
type Report struct {
	// Frames is the number of Tick calls during the period.
	Frames int

	// Rate is frames per second over the period.
	Rate float64

	// MeanPeriod is the mean wall time between Tick calls.
	// Zero when no frames were counted.
	MeanPeriod time.Duration

	// CPUPercent is the process CPU use over the period, -1 when
	// unavailable (first sample, counter wrap, or no procfs).
	CPUPercent float64

	// ResidentMB is the process resident set size in megabytes,
	// -1 when unavailable.
	ResidentMB int

	// At is when the report was produced.
	At time.Time
}

// Counter accumulates Tick calls and produces a Report every period.
// All exported methods are safe for concurrent use.
type Counter struct {
	mu      sync.Mutex
	period  time.Duration
	begin   time.Time
	frames  int
	last    Report
	haveRep bool

	onReport func(Report)

	proc *procStats
	now  func() time.Time // injectable for deterministic tests
}

// Option configures a Counter.
type Option func(*Counter)

// WithPeriod sets the reporting interval. Non-positive values fall back to
// DefaultPeriod.
func WithPeriod(d time.Duration) Option {
	return func(c *Counter) {
		if d > 0 {
			c.period = d
		}
	}
}

// WithOnReport registers a callback invoked with each completed Report.
// The callback runs on the Tick caller's goroutine; keep it brief.
func WithOnReport(fn func(Report)) Option {
	return func(c *Counter) { c.onReport = fn }
}

// New returns a Counter that starts its first period at the first Tick.
func New(opts ...Option) *Counter {
	c := &Counter{
		period: DefaultPeriod,
		proc:   newProcStats(defaultProcRoot),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetPeriod changes the reporting interval of a running Counter. The demo
// binary calls this on config hot-reload.
func (c *Counter) SetPeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.period = d
	c.mu.Unlock()
}

// Tick records one frame. When the current period has elapsed it closes the
// period: derives the Report, logs it, invokes the callback, and starts the
// next period.
func (c *Counter) Tick() {
	c.mu.Lock()

	now := c.now()
	if c.begin.IsZero() {
		c.begin = now
	}
	c.frames++

	elapsed := now.Sub(c.begin)
	if elapsed < c.period {
		c.mu.Unlock()
		return
	}

	rep := Report{
		Frames:     c.frames,
		Rate:       float64(c.frames) / elapsed.Seconds(),
		CPUPercent: c.proc.cpuPercent(now),
		ResidentMB: c.proc.residentMB(),
		At:         now,
	}
	if c.frames > 0 {
		rep.MeanPeriod = elapsed / time.Duration(c.frames)
	}

	c.last = rep
	c.haveRep = true
	c.begin = now
	c.frames = 0
	cb := c.onReport
	c.mu.Unlock()

	slog.Info("sampler: period report",
		"fps", rep.Rate,
		"mean_period", rep.MeanPeriod,
		"cpu_pct", rep.CPUPercent,
		"mem_mb", rep.ResidentMB,
	)
	if cb != nil {
		cb(rep)
	}
}

// Last returns the most recent completed Report and whether one exists yet.
func (c *Counter) Last() (Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.haveRep
}
