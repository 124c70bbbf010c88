package sampler

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

var errMalformedStat = errors.New("sampler: malformed stat file")

const defaultProcRoot = "/proc/self"

// userHZ is the kernel tick rate /proc/self/stat counters are expressed in.
// sysconf(_SC_CLK_TCK) is 100 on every mainstream Linux configuration and
// there is no cgo-free way to ask.
const userHZ = 100

// procStats reads process CPU and memory figures from procfs. The root is
// injectable so tests can point it at fixture files.
type procStats struct {
	root string

	lastSample time.Time
	lastUser   uint64
	lastSys    uint64
	haveBase   bool
}

func newProcStats(root string) *procStats {
	return &procStats{root: root}
}

// cpuPercent returns the process CPU use since the previous call, as a
// percentage of one core. It returns -1 on the first call, when the
// counters went backwards, or when procfs is unavailable.
func (p *procStats) cpuPercent(now time.Time) float64 {
	user, sys, err := p.readStat()
	if err != nil {
		return -1
	}

	defer func() {
		p.lastSample = now
		p.lastUser = user
		p.lastSys = sys
		p.haveBase = true
	}()

	if !p.haveBase {
		return -1
	}
	if user < p.lastUser || sys < p.lastSys {
		// Counter went backwards; skip this sample.
		return -1
	}
	wall := now.Sub(p.lastSample).Seconds()
	if wall <= 0 {
		return -1
	}

	ticks := float64(user-p.lastUser) + float64(sys-p.lastSys)
	return ticks / userHZ / wall * 100
}

// readStat parses the utime and stime tick counters out of <root>/stat.
func (p *procStats) readStat() (user, sys uint64, err error) {
	data, err := os.ReadFile(p.root + "/stat")
	if err != nil {
		return 0, 0, err
	}

	// The comm field is parenthesised and may contain spaces, so split
	// after the closing paren. utime and stime are the 14th and 15th
	// fields overall, which lands them at offsets 11 and 12 of the tail.
	s := string(data)
	i := strings.LastIndexByte(s, ')')
	if i < 0 {
		return 0, 0, errMalformedStat
	}
	fields := strings.Fields(s[i+1:])
	if len(fields) < 13 {
		return 0, 0, errMalformedStat
	}
	user, err = strconv.ParseUint(fields[11], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	sys, err = strconv.ParseUint(fields[12], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return user, sys, nil
}

// residentMB returns the process resident set size in megabytes from
// <root>/status (VmRSS), or -1 when unavailable.
func (p *procStats) residentMB() int {
	data, err := os.ReadFile(p.root + "/status")
	if err != nil {
		return -1
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "VmRSS:"))
		if len(fields) == 0 {
			return -1
		}
		kb, err := strconv.Atoi(fields[0])
		if err != nil {
			return -1
		}
		return kb / 1000
	}
	return -1
}
