package bridge

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"gdnvim/internal/nvim"
	"gdnvim/internal/nvim/nvimtest"
	"gdnvim/internal/nvim/process"
	"gdnvim/internal/nvim/runtime"
)

func TestWatchdogTripsOnThreshold(t *testing.T) {
	w := newWatchdog(3, 5*time.Second)
	base := time.Now()

	if w.RecordTimeout(base) {
		t.Error("first timeout tripped")
	}
	if w.RecordTimeout(base.Add(time.Second)) {
		t.Error("second timeout tripped")
	}
	if !w.RecordTimeout(base.Add(2 * time.Second)) {
		t.Error("third timeout in window did not trip")
	}
	if !w.Tripped() {
		t.Error("Tripped() = false after crossing")
	}

	// The latch holds until the dialog is answered.
	if w.RecordTimeout(base.Add(3 * time.Second)) {
		t.Error("latched watchdog tripped again")
	}
	w.Acknowledge()
	if w.Tripped() {
		t.Error("Tripped() = true after Acknowledge")
	}
}

func TestWatchdogWindowSlides(t *testing.T) {
	w := newWatchdog(3, 5*time.Second)
	base := time.Now()

	w.RecordTimeout(base)
	w.RecordTimeout(base.Add(time.Second))
	// By now the first two have left the window.
	if w.RecordTimeout(base.Add(6 * time.Second)) {
		t.Error("tripped on stale timeouts")
	}
	if w.RecordTimeout(base.Add(7 * time.Second)) {
		t.Error("tripped on two in window")
	}
	if !w.RecordTimeout(base.Add(8 * time.Second)) {
		t.Error("three fresh timeouts did not trip")
	}
}

func TestWatchdogSetPolicy(t *testing.T) {
	w := newWatchdog(5, 5*time.Second)
	base := time.Now()

	w.RecordTimeout(base)
	w.SetPolicy(2, 5*time.Second)
	if !w.RecordTimeout(base.Add(time.Second)) {
		t.Error("tightened threshold did not trip on recorded timeouts")
	}

	w.Acknowledge()
	w.SetPolicy(3, time.Second)
	w.RecordTimeout(base.Add(10 * time.Second))
	w.RecordTimeout(base.Add(11500 * time.Millisecond))
	// The first of the two has left the narrowed window.
	if w.RecordTimeout(base.Add(12 * time.Second)) {
		t.Error("tripped on timeouts outside the narrowed window")
	}
}

func TestTimeoutsTripRestartDialog(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RPC = nvim.Config{Timeout: 30 * time.Millisecond, ExtendedTimeout: 60 * time.Millisecond}
	cfg.TimeoutThreshold = 2
	r := newRigConfig(t, cfg, "abc")

	// Stall the engine: the handler sleeps on the fake's read loop, so
	// every request from here on outlives the call budget.
	r.fake.Handle("nvim_win_set_cursor", func([]any) (any, error) {
		time.Sleep(150 * time.Millisecond)
		return nil, nil
	})

	r.b.PushCursor()
	r.b.PushCursor()
	r.b.Poll()

	if len(r.dialogs.restarts) != 1 {
		t.Fatalf("restart dialogs = %d, want 1", len(r.dialogs.restarts))
	}
	if got := r.dialogs.restarts[0]; got != "engine not responding" {
		t.Errorf("dialog reason = %q, want %q", got, "engine not responding")
	}
	// Declined: the session stays up and the dialog does not repeat.
	if !r.b.Connected() {
		t.Error("Connected() = false after declined restart")
	}
	r.b.Poll()
	if len(r.dialogs.restarts) != 1 {
		t.Errorf("restart dialogs = %d after second poll, want 1", len(r.dialogs.restarts))
	}
}

func TestEngineExitOffersRestartAndRebinds(t *testing.T) {
	r := newRig(t, "extends Node")

	fake2 := nvimtest.New()
	script2 := scriptEngine(fake2)
	fake2.Start()
	t.Cleanup(func() { fake2.Close() })
	r.b.spawn = func() (io.Reader, io.WriteCloser, error) {
		return fake2.HostReader, fake2.HostWriter, nil
	}
	r.dialogs.restartAnswer = true

	r.b.onEngineExit(process.ExitEvent{State: process.StateExited, ExitCode: 127})
	r.b.Poll()

	if len(r.dialogs.restarts) != 1 {
		t.Fatalf("restart dialogs = %d, want 1", len(r.dialogs.restarts))
	}
	if got := r.dialogs.restarts[0]; got != "engine exited with code 127" {
		t.Errorf("dialog reason = %q, want exit code in it", got)
	}
	if !r.b.Connected() {
		t.Fatal("Connected() = false after accepted restart")
	}

	// The new session got the widget content re-registered.
	regs := luaCallsIn(fake2, runtime.FnBufferRegister)
	if len(regs) != 1 {
		t.Fatalf("registrations on new session = %d, want 1", len(regs))
	}
	lines, _ := luaArgs(regs[0])[1].([]any)
	if len(lines) != 1 || lines[0] != "extends Node" {
		t.Errorf("re-registered lines = %v, want widget content", lines)
	}

	// The counter was rebased: the new session's events apply.
	if got := script2.lastTick(); got != 1 {
		t.Fatalf("new session tick = %d, want 1", got)
	}
	fake2.Notify("nvim_buf_lines_event", int64(1), int64(2), int64(0), int64(1), []string{"reborn"}, false)
	if !r.pollUntil(func() bool { return r.widget.Line(0) == "reborn" }) {
		t.Errorf("widget line 0 = %q, want event from new session applied", r.widget.Line(0))
	}
}

func TestExpectedExitStaysSilent(t *testing.T) {
	r := newRig(t, "abc")

	r.b.onEngineExit(process.ExitEvent{State: process.StateExited, Expected: true})
	r.b.Poll()

	if len(r.dialogs.restarts) != 0 {
		t.Errorf("restart dialogs = %d for an expected exit, want 0", len(r.dialogs.restarts))
	}
}

func TestDeclinedRestartLeavesEngineDown(t *testing.T) {
	r := newRig(t, "abc")
	r.b.closeSession()

	r.b.onEngineExit(process.ExitEvent{State: process.StateExited, ExitCode: 1})
	r.b.Poll()

	if len(r.dialogs.restarts) != 1 {
		t.Fatalf("restart dialogs = %d, want 1", len(r.dialogs.restarts))
	}
	if r.b.Connected() {
		t.Error("Connected() = true after declined restart of a dead session")
	}
	if r.b.SendKeys("x") {
		t.Error("SendKeys = true with the engine down")
	}
	r.b.Poll()
	if len(r.dialogs.restarts) != 1 {
		t.Errorf("restart dialogs = %d after second poll, want 1", len(r.dialogs.restarts))
	}
}

func TestRestartSpawnFailureReported(t *testing.T) {
	r := newRig(t, "abc")
	r.dialogs.restartAnswer = true
	r.b.spawn = func() (io.Reader, io.WriteCloser, error) {
		return nil, nil, errors.New("no engine binary")
	}

	r.b.onEngineExit(process.ExitEvent{State: process.StateExited, ExitCode: 1})
	r.b.Poll()

	if got := r.actions.lastEcho(); !strings.HasPrefix(got, "Engine restart failed") {
		t.Errorf("echo = %q, want restart failure", got)
	}
	if r.b.Connected() {
		t.Error("Connected() = true after failed restart")
	}
}
