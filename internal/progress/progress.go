// =============================================================================
// Ledger Reconcile - Progress Logging
// =============================================================================
//
// The engine reports progress through a one-way, fire-and-forget callback.
// Two rules apply everywhere:
//   - Periodic progress inside long loops is emitted at a bounded
//     wall-clock cadence, never per row.
//   - A failing (panicking) callback is swallowed; it must never abort a
//     run.
//
// =============================================================================

package progress

import (
	"fmt"
	"time"
)

// Func is the log sink supplied by the caller.
type Func func(msg string)

// Logger wraps the caller's log sink.
type Logger struct {
	// Verbose enables per-sheet parser detail.
	Verbose bool

	emit     Func
	interval time.Duration
}

// New returns a Logger emitting through fn at the given minimum cadence for
// periodic messages. A nil fn discards everything.
func New(fn Func, interval time.Duration) *Logger {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Logger{emit: fn, interval: interval}
}

// Logf always emits one message.
func (l *Logger) Logf(format string, args ...any) {
	l.send(format, args...)
}

// Debugf emits only when Verbose is set.
func (l *Logger) Debugf(format string, args ...any) {
	if l != nil && l.Verbose {
		l.send(format, args...)
	}
}

// send formats and delivers one message, swallowing callback panics.
func (l *Logger) send(format string, args ...any) {
	if l == nil || l.emit == nil {
		return
	}
	defer func() {
		// The callback is fire-and-forget; its failures never abort a run.
		_ = recover()
	}()
	l.emit(fmt.Sprintf(format, args...))
}

// Ticker rate-limits periodic progress messages inside one loop.
type Ticker struct {
	l    *Logger
	last time.Time
}

// Ticker returns a rate limiter for one loop. The first Tickf call after
// the cadence interval elapses emits; all others are dropped.
func (l *Logger) Ticker() *Ticker {
	return &Ticker{l: l, last: time.Now()}
}

// Tickf emits the message only if the cadence interval has elapsed since
// the last emitted tick. Reports whether the message was emitted.
func (t *Ticker) Tickf(format string, args ...any) bool {
	if t == nil || t.l == nil {
		return false
	}
	now := time.Now()
	if now.Sub(t.last) < t.l.interval {
		return false
	}
	t.last = now
	t.l.send(format, args...)
	return true
}
