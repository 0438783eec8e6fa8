package bridge

import (
	"fmt"
	"sync"
	"time"

	"gdnvim/internal/nvim/process"
)

// watchdog counts request timeouts in a sliding window. Crossing the
// threshold trips it once; the trip stays latched until the recovery
// dialog is acknowledged so a reply storm cannot stack dialogs.
type watchdog struct {
	mu        sync.Mutex
	threshold int
	window    time.Duration
	times     []time.Time
	tripped   bool
}

func newWatchdog(threshold int, window time.Duration) *watchdog {
	return &watchdog{threshold: threshold, window: window}
}

// RecordTimeout notes one request timeout and reports whether this one
// crossed the threshold. Safe from any goroutine.
func (w *watchdog) RecordTimeout(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tripped {
		return false
	}
	cutoff := now.Add(-w.window)
	kept := w.times[:0]
	for _, t := range w.times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.times = append(kept, now)
	if len(w.times) < w.threshold {
		return false
	}
	w.times = w.times[:0]
	w.tripped = true
	return true
}

// SetPolicy retunes the threshold and window. Recorded timeouts keep
// counting against the new policy.
func (w *watchdog) SetPolicy(threshold int, window time.Duration) {
	w.mu.Lock()
	w.threshold = threshold
	w.window = window
	w.mu.Unlock()
}

// Tripped reports whether a crossing is waiting to be handled.
func (w *watchdog) Tripped() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tripped
}

// Acknowledge clears the latch once the dialog has been answered.
func (w *watchdog) Acknowledge() {
	w.mu.Lock()
	w.tripped = false
	w.times = w.times[:0]
	w.mu.Unlock()
}

// SetRecovery retunes the timeout watchdog, for settings reload.
// Values at or below zero fall back to the defaults.
func (b *Bridge) SetRecovery(threshold int, window time.Duration) {
	def := DefaultConfig()
	if threshold <= 0 {
		threshold = def.TimeoutThreshold
	}
	if window <= 0 {
		window = def.TimeoutWindow
	}
	b.watch.SetPolicy(threshold, window)
}

// onEngineExit runs on the supervisor's monitor goroutine. Expected
// exits follow a Stop call and need no dialog.
func (b *Bridge) onEngineExit(ev process.ExitEvent) {
	if ev.Expected {
		return
	}
	if ev.StderrTail != "" {
		b.log.Debug("engine stderr tail:\n%s", ev.StderrTail)
	}
	b.setTrouble(fmt.Sprintf("engine exited with code %d", ev.ExitCode))
}

// promptRestart raises the recovery dialog once and restarts the
// engine when the user asks for it.
func (b *Bridge) promptRestart(reason string) {
	if b.dialogOpen {
		return
	}
	b.log.Warn("engine trouble: %s", reason)
	b.dialogOpen = true
	restart := b.dialogs.AskRestart(reason)
	b.dialogOpen = false
	b.watch.Acknowledge()
	if !restart {
		return
	}
	if err := b.restart(); err != nil {
		b.log.Error("engine restart failed: %v", err)
		b.actions.Echo("Engine restart failed: " + err.Error())
	}
}

// restart replaces the engine session in place: old handle down, sync
// state dropped, fresh spawn and handshake, current buffer rebound.
func (b *Bridge) restart() error {
	b.closeSession()
	_ = b.sup.Stop(stopTimeout)
	b.tracker.Reset()
	b.queuedKeys = nil
	b.haveSynced = false

	r, w, err := b.spawn()
	if err != nil {
		return fmt.Errorf("spawn engine: %w", err)
	}
	if err := b.startSession(r, w); err != nil {
		return err
	}
	return b.rebind()
}
