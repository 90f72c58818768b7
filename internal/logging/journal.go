package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cpu-sentinel/internal/alerts"
)

// Journal appends every delivered alert as one NDJSON line to a daily file
// under dir. It is an audit trail, separate from the operational log.
type Journal struct {
	dir  string
	mu   sync.Mutex
	file *os.File
	date string
}

type entry struct {
	ID         string  `json:"id"`
	Timestamp  string  `json:"timestamp"`
	PID        int32   `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	Threshold  float64 `json:"threshold"`
	Started    string  `json:"started"`
	Cmdline    string  `json:"cmdline"`
}

func NewJournal(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal dir: %w", err)
	}

	j := &Journal{dir: dir}
	if err := j.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) Record(a alerts.Alert) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.rotateIfNeeded(); err != nil {
		return err
	}

	e := entry{
		ID:         a.ID,
		Timestamp:  a.Time.UTC().Format(time.RFC3339),
		PID:        a.PID,
		Name:       a.Name,
		CPUPercent: a.CPUPercent,
		Threshold:  a.Threshold,
		Started:    a.StartedString(),
		Cmdline:    a.Cmdline,
	}

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	if _, err := j.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

func (j *Journal) rotateIfNeeded() error {
	currentDate := time.Now().UTC().Format("2006-01-02")

	if j.file != nil && j.date == currentDate {
		return nil
	}

	if j.file != nil {
		j.file.Close()
	}

	filename := filepath.Join(j.dir, fmt.Sprintf("alerts-%s.ndjson", currentDate))
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal file: %w", err)
	}

	j.file = file
	j.date = currentDate
	return nil
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file != nil {
		return j.file.Close()
	}
	return nil
}
