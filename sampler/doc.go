// Package sampler measures the frame rate, CPU use, and resident memory of
// the calling process. A Counter is ticked once per loop iteration; every
// reporting period it derives a Report (frames per second, mean frame
// period, process CPU percent, resident set size) and hands it to an
// optional callback in addition to logging it.
//
// CPU and memory figures come from /proc/self/stat and /proc/self/status;
// on platforms without procfs both report -1 while frame accounting keeps
// working.
//
// WriteMetrics encodes the latest report in the Prometheus text exposition
// format, so a caller can serve or scrape-dump the sampler's view without
// this package owning any transport.
package sampler
