package sampler

import (
	"strings"
	"testing"
	"time"
)

// steppedClock returns a clock that advances by step on every call.
func steppedClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func TestTick_NoReportBeforePeriodElapses(t *testing.T) {
	c := New(WithPeriod(time.Second))
	c.now = steppedClock(time.Now(), 10*time.Millisecond)

	for i := 0; i < 5; i++ {
		c.Tick()
	}
	if _, ok := c.Last(); ok {
		t.Error("Last: expected no report before the period elapsed")
	}
}

func TestTick_ReportAfterPeriod(t *testing.T) {
	c := New(WithPeriod(time.Second))
	// 100 ticks at 20ms apart cross the 1s period.
	c.now = steppedClock(time.Now(), 20*time.Millisecond)

	for i := 0; i < 100; i++ {
		c.Tick()
	}

	rep, ok := c.Last()
	if !ok {
		t.Fatal("Last: expected a report")
	}
	// 20ms per frame → 50 fps, allowing for the period boundary.
	if rep.Rate < 45 || rep.Rate > 55 {
		t.Errorf("Rate: got %.1f, want ~50", rep.Rate)
	}
	if rep.MeanPeriod < 15*time.Millisecond || rep.MeanPeriod > 25*time.Millisecond {
		t.Errorf("MeanPeriod: got %v, want ~20ms", rep.MeanPeriod)
	}
}

func TestTick_CallbackInvoked(t *testing.T) {
	var got []Report
	c := New(WithPeriod(time.Second), WithOnReport(func(r Report) {
		got = append(got, r)
	}))
	c.now = steppedClock(time.Now(), 300*time.Millisecond)

	for i := 0; i < 10; i++ {
		c.Tick()
	}
	if len(got) == 0 {
		t.Fatal("callback was never invoked")
	}
	if got[0].Frames == 0 {
		t.Error("report Frames: got 0, want > 0")
	}
}

func TestSetPeriod_TakesEffect(t *testing.T) {
	c := New(WithPeriod(time.Hour))
	c.now = steppedClock(time.Now(), 100*time.Millisecond)

	c.SetPeriod(200 * time.Millisecond)
	for i := 0; i < 5; i++ {
		c.Tick()
	}
	if _, ok := c.Last(); !ok {
		t.Error("Last: expected a report after shortening the period")
	}
}

func TestWriteMetrics_BeforeFirstReport(t *testing.T) {
	c := New()
	var sb strings.Builder
	if err := c.WriteMetrics(&sb); err != nil {
		t.Fatalf("WriteMetrics: %v", err)
	}
	if sb.Len() != 0 {
		t.Errorf("WriteMetrics before first report should write nothing, got:\n%s", sb.String())
	}
}

func TestWriteMetrics_Exposition(t *testing.T) {
	c := New(WithPeriod(time.Second))
	c.now = steppedClock(time.Now(), 500*time.Millisecond)

	for i := 0; i < 4; i++ {
		c.Tick()
	}

	var sb strings.Builder
	if err := c.WriteMetrics(&sb); err != nil {
		t.Fatalf("WriteMetrics: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		"# TYPE " + metricFrameRate + " gauge",
		metricFrameRate,
		metricMeanPeriod,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("exposition missing %q:\n%s", want, out)
		}
	}
}
