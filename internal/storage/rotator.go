package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"
)

// Rotator prunes journal files older than the retention window. It runs on
// its own goroutine; the journal itself only ever appends.
type Rotator struct {
	dir           string
	retentionDays int
	stopCh        chan struct{}
	doneCh        chan struct{}
}

var journalPattern = regexp.MustCompile(`^alerts-(\d{4}-\d{2}-\d{2})\.ndjson$`)

func NewRotator(dir string, retentionDays int) *Rotator {
	return &Rotator{
		dir:           dir,
		retentionDays: retentionDays,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

func (r *Rotator) Start() {
	go r.run()
}

func (r *Rotator) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *Rotator) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(6 * time.Hour)
	defer ticker.Stop()

	r.prune()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.prune()
		}
	}
}

func (r *Rotator) prune() {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		zap.S().Warnf("journal prune: %v", err)
		return
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -r.retentionDays)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		matches := journalPattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}

		fileDate, err := time.Parse("2006-01-02", matches[1])
		if err != nil {
			continue
		}

		if fileDate.Before(cutoff) {
			path := filepath.Join(r.dir, entry.Name())
			if err := os.Remove(path); err != nil {
				zap.S().Warnf("remove %s: %v", path, err)
			} else {
				zap.S().Debugf("pruned journal file %s", entry.Name())
			}
		}
	}
}
