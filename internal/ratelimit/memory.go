package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryWindow struct {
	second int64
	count  int
}

// MemoryLimiter keeps per-key one-second windows in process memory. Windows
// from earlier seconds are dropped the first time a later second is seen.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]memoryWindow
	swept   int64
}

// NewMemoryLimiter constructs a MemoryLimiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]memoryWindow)}
}

// Allow counts a request for key in the window containing now.
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" {
		return Result{Allowed: true}, nil
	}
	second := now.Unix()

	l.mu.Lock()
	defer l.mu.Unlock()

	if second > l.swept {
		for k, w := range l.windows {
			if w.second < second {
				delete(l.windows, k)
			}
		}
		l.swept = second
	}

	w := l.windows[key]
	if w.second != second {
		w = memoryWindow{second: second}
	}
	w.count++
	l.windows[key] = w
	return windowResult(w.count, limit, time.Unix(second+1, 0).UTC()), nil
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}
