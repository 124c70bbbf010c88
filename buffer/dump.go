package buffer

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Dump writes a human-readable table of every channel's current contents to
// w, oldest entries first. It is a debugging aid; the format is not stable
// and must not be parsed.
func (b *Buffer) Dump(w io.Writer) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "pos\tchannel\tvalue\ttimestamp")

	for pos := 0; pos < b.capacity; pos++ {
		wrote := false
		for idx, s := range b.slots {
			if v, ts, ok := s.at(pos); ok {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%d\n", pos, idx, formatValue(v), ts)
				wrote = true
			}
		}
		if !wrote {
			break
		}
	}
	tw.Flush()
}
