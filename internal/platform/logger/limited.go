package logger

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Limited emits at most one record per key and interval. Suppressed records
// are counted and reported on the next emitted one.
type Limited struct {
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time

	mu        sync.Mutex
	entries   map[string]*limitedEntry
	lastSweep time.Time
}

// staleIntervals bounds how long a key with pending suppressed records is kept.
const staleIntervals = 10

type limitedEntry struct {
	last       time.Time
	suppressed int
}

func NewLimited(logger *slog.Logger, interval time.Duration) *Limited {
	return &Limited{
		logger:   logger,
		interval: interval,
		now:      time.Now,
		entries:  make(map[string]*limitedEntry),
	}
}

func (l *Limited) Error(ctx context.Context, key, msg string, args ...any) {
	l.log(ctx, slog.LevelError, key, msg, args...)
}

func (l *Limited) Warn(ctx context.Context, key, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, key, msg, args...)
}

func (l *Limited) log(ctx context.Context, level slog.Level, key, msg string, args ...any) {
	now := l.now()

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &limitedEntry{}
		l.entries[key] = e
	}
	if ok && now.Sub(e.last) < l.interval {
		e.suppressed++
		l.mu.Unlock()
		return
	}
	suppressed := e.suppressed
	e.last, e.suppressed = now, 0
	l.sweep(now)
	l.mu.Unlock()

	if suppressed > 0 {
		args = append(args, "suppressed", suppressed)
	}
	l.logger.Log(ctx, level, msg, args...)
}

// sweep drops idle keys, at most once per interval. A key idle for an interval
// with nothing suppressed would be emitted on its next use anyway. Must be
// called with l.mu held.
func (l *Limited) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.interval {
		return
	}
	l.lastSweep = now
	for key, e := range l.entries {
		idle := now.Sub(e.last)
		if (e.suppressed == 0 && idle >= l.interval) || idle >= staleIntervals*l.interval {
			delete(l.entries, key)
		}
	}
}
