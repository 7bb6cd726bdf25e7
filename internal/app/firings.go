package service

import (
	"context"
	"sync"

	"github.com/okian/tactile/internal/domain/model"
)

const defaultFiringLogSize = 64

// FiringLog keeps the most recent firings in a ring. Pass its Add method
// to WithFiringObserver.
type FiringLog struct {
	mu    sync.RWMutex
	buf   []model.Firing
	next  int
	full  bool
	total int64
}

// NewFiringLog creates a log holding up to size firings.
func NewFiringLog(size int) *FiringLog {
	if size <= 0 {
		size = defaultFiringLogSize
	}
	return &FiringLog{buf: make([]model.Firing, size)}
}

// Add appends f, overwriting the oldest entry when full.
func (l *FiringLog) Add(_ context.Context, f model.Firing) { //nolint:gocritic // hugeParam: firings are values
	l.mu.Lock()
	defer l.mu.Unlock()

	l.buf[l.next] = f
	l.next = (l.next + 1) % len(l.buf)
	if l.next == 0 {
		l.full = true
	}
	l.total++
}

// Recent returns up to n firings, newest first. n <= 0 returns all.
func (l *FiringLog) Recent(_ context.Context, n int) []model.Firing {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := l.next
	if l.full {
		size = len(l.buf)
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]model.Firing, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.buf)) % len(l.buf)
		out = append(out, l.buf[idx])
	}
	return out
}

// Total returns the number of firings ever added.
func (l *FiringLog) Total() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}
