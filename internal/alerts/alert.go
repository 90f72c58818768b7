package alerts

import (
	"fmt"
	"time"
)

// Alert is one delivered notification about a process over the CPU
// threshold.
type Alert struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	PID        int32     `json:"pid"`
	Name       string    `json:"name"`
	CPUPercent float64   `json:"cpu_percent"`
	Threshold  float64   `json:"threshold"`
	StartTime  time.Time `json:"start_time,omitempty"`
	Cmdline    string    `json:"cmdline"`
	Message    string    `json:"message"`
}

// StartedString renders the process start time, or "?" when unknown.
func (a Alert) StartedString() string {
	if a.StartTime.IsZero() {
		return "?"
	}
	return a.StartTime.UTC().Format(time.RFC3339)
}

func formatMessage(a Alert) string {
	return fmt.Sprintf(
		"⚠ Process above %.1f%% CPU\nName: %s\nPID: %d\nCPU: %.1f%%\nStarted: %s\nCmd: %s",
		a.Threshold, a.Name, a.PID, a.CPUPercent, a.StartedString(), a.Cmdline,
	)
}
