package sampler

import (
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric names used by WriteMetrics.
const (
	metricFrameRate  = "syncstack_frames_per_second"
	metricMeanPeriod = "syncstack_frame_period_seconds"
	metricCPU        = "syncstack_process_cpu_percent"
	metricResident   = "syncstack_process_resident_memory_megabytes"
)

// WriteMetrics encodes the latest Report to w in the Prometheus text
// exposition format. It is a no-op returning nil before the first completed
// period. CPU and memory gauges are omitted while they read -1.
func (c *Counter) WriteMetrics(w io.Writer) error {
	rep, ok := c.Last()
	if !ok {
		return nil
	}

	families := []*dto.MetricFamily{
		gaugeFamily(metricFrameRate, "Frames counted per second over the last period.", rep.Rate),
		gaugeFamily(metricMeanPeriod, "Mean wall time between frames over the last period.", rep.MeanPeriod.Seconds()),
	}
	if rep.CPUPercent >= 0 {
		families = append(families,
			gaugeFamily(metricCPU, "Process CPU use as a percentage of one core.", rep.CPUPercent))
	}
	if rep.ResidentMB >= 0 {
		families = append(families,
			gaugeFamily(metricResident, "Process resident set size in megabytes.", float64(rep.ResidentMB)))
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("sampler: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func gaugeFamily(name, help string, value float64) *dto.MetricFamily {
	typ := dto.MetricType_GAUGE
	return &dto.MetricFamily{
		Name: &name,
		Help: &help,
		Type: &typ,
		Metric: []*dto.Metric{
			{Gauge: &dto.Gauge{Value: &value}},
		},
	}
}
