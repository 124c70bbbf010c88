// Package buffer provides a thread-safe, multi-channel, time-synchronized
// circular buffer for transferring timestamped data between producer and
// consumer goroutines, for example between a component's main loop and the
// goroutines feeding it sensor data.
//
// A Buffer owns a fixed set of typed channels, each a small bounded queue of
// (value, timestamp) entries with FIFO eviction. Producers write with
// Channel.Put, which returns immediately: the conversion from the channel's
// input type to its output type and the insert itself run on a single
// background worker shared by all channels, so the global insertion order
// across channels is deterministic. Consumers read without consuming:
//
//   - ReadFirst returns each channel's oldest entry, no consistency checks.
//   - ReadLast returns each channel's newest entry, but only for channels
//     written recently relative to the most recently written channel.
//   - ReadAt returns each channel's entry nearest a query timestamp, within
//     a tolerance that accepts only entries at or before the query.
//
// Every read mode takes an optional channel selection and returns one
// Result per selected channel; a channel with no acceptable entry yields a
// no-value Result, which is expected output rather than an error.
//
// Construction:
//
//	b, err := buffer.New(buffer.WithCapacity(8))
//	laser, err := buffer.Attach[[]int32, []float64](b)        // element-wise
//	state, err := buffer.Attach[string, string](b)            // identity
//	pose, err := buffer.Attach[RawPose, Pose](b,
//	    buffer.WithTransform(decodePose))                     // explicit fn
//
// Channels are attached before the buffer's first use; the set is fixed for
// the buffer's lifetime. Close stops new writes, drains the pending insert
// jobs, and joins the worker. Flush is the drain barrier for callers that
// need a just-written value to be visible.
package buffer
