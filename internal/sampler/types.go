package sampler

import "time"

// ProcessSnapshot is one process as observed at a single poll. CPUPercent is
// normalized against a single core and may exceed 100 for multi-threaded
// processes. StartTime is zero when the OS does not expose it.
type ProcessSnapshot struct {
	PID        int32
	Name       string
	CPUPercent float64
	StartTime  time.Time
}

// Sampler produces a fresh view of running processes on demand. CommandLine
// is a best-effort enrichment; the second return is false when the command
// line could not be resolved and the caller should fall back to the name.
type Sampler interface {
	Snapshot() ([]ProcessSnapshot, error)
	CommandLine(pid int32) (string, bool)
}
