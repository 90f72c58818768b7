package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cpu-sentinel/internal/config"
	"cpu-sentinel/internal/notify"
	"cpu-sentinel/internal/sampler"
)

// gcFactor sets how long a cooldown record may sit idle before the sweep
// drops it, as a multiple of the cooldown itself.
const gcFactor = 5

// Recorder persists a delivered alert. Failures are logged, never fatal.
type Recorder interface {
	Record(a Alert) error
}

// HookRunner reacts to a delivered alert.
type HookRunner interface {
	Run(a Alert)
}

// Engine owns the polling loop and the per-pid cooldown table. All table
// access happens on the loop goroutine, so the map needs no lock; anything
// that parallelizes evaluation must add one.
//
// The table is keyed by bare pid. A pid recycled for an unrelated process
// inside the cooldown window inherits the suppression; known limitation,
// keying by start time as well would change the alert semantics.
type Engine struct {
	cfg      *config.Config
	sampler  sampler.Sampler
	notifier notify.Notifier
	recorder Recorder
	hooks    HookRunner

	alerted map[int32]time.Time
	now     func() time.Time
}

func NewEngine(cfg *config.Config, smp sampler.Sampler, ntf notify.Notifier, rec Recorder, hooks HookRunner) *Engine {
	return &Engine{
		cfg:      cfg,
		sampler:  smp,
		notifier: ntf,
		recorder: rec,
		hooks:    hooks,
		alerted:  make(map[int32]time.Time),
		now:      time.Now,
	}
}

// Run drives evaluation until ctx is canceled. The ticker fires only after a
// full interval, so the loop never polls busier than configured and the
// first evaluation happens one interval after startup.
//
// There is no timeout around the snapshot itself; a sampler that blocks
// forever stalls the loop. Delivery attempts are individually bounded by
// the notifier.
func (e *Engine) Run(ctx context.Context) {
	zap.S().Infof("engine started (threshold=%.1f%%, interval=%s, cooldown=%s)",
		e.cfg.CPUThreshold, e.cfg.CheckInterval(), e.cfg.Cooldown())

	ticker := time.NewTicker(e.cfg.CheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			zap.S().Info("engine stopped")
			return
		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) tick(ctx context.Context) {
	now := e.now()

	procs, err := e.sampler.Snapshot()
	if err != nil {
		zap.S().Errorf("snapshot failed: %v", err)
	}
	for _, p := range procs {
		e.evaluate(ctx, p, now)
	}

	e.sweep(now)
}

// evaluate applies the threshold and cooldown checks to one process. Nothing
// in here may abort the rest of the tick; every failure degrades to a log
// line.
func (e *Engine) evaluate(ctx context.Context, p sampler.ProcessSnapshot, now time.Time) {
	if p.CPUPercent < e.cfg.CPUThreshold {
		return
	}

	// suppression counts from the recorded alert time, not a sliding
	// window; the timestamp is only touched on successful delivery
	if last, ok := e.alerted[p.PID]; ok && now.Sub(last) < e.cfg.Cooldown() {
		return
	}

	cmdline, ok := e.sampler.CommandLine(p.PID)
	if !ok || cmdline == "" {
		cmdline = p.Name
	}

	a := Alert{
		Time:       now,
		PID:        p.PID,
		Name:       p.Name,
		CPUPercent: p.CPUPercent,
		Threshold:  e.cfg.CPUThreshold,
		StartTime:  p.StartTime,
		Cmdline:    cmdline,
	}
	a.Message = formatMessage(a)

	delivered, err := e.notifier.Send(ctx, a.Message)
	if err != nil {
		zap.S().Errorf("notify pid %d (%s): %v", p.PID, p.Name, err)
		return
	}
	if !delivered {
		zap.S().Warnf("notification rejected for pid %d (%s)", p.PID, p.Name)
		return
	}

	e.alerted[p.PID] = now
	a.ID = uuid.NewString()
	zap.S().Infof("alert %s delivered: pid=%d name=%s cpu=%.1f%%", a.ID, a.PID, a.Name, a.CPUPercent)

	if e.recorder != nil {
		if err := e.recorder.Record(a); err != nil {
			zap.S().Errorf("record alert %s: %v", a.ID, err)
		}
	}
	if e.hooks != nil {
		go e.hooks.Run(a)
	}
}

// sweep drops cooldown records idle for gcFactor cooldowns so the table
// stays bounded under pid churn.
func (e *Engine) sweep(now time.Time) {
	cutoff := time.Duration(gcFactor) * e.cfg.Cooldown()
	for pid, last := range e.alerted {
		if now.Sub(last) >= cutoff {
			delete(e.alerted, pid)
		}
	}
}
