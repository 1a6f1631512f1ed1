// Package schedule rate-limits expensive recomputation at the host
// boundary. Cheap work such as ghost updates should not go through it.
package schedule

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"golang.org/x/time/rate"
)

// Throttle runs the first call of a burst immediately and the last one
// after the burst settles.
type Throttle struct {
	limiter  *rate.Limiter
	trailing func(func())
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		trailing: debounce.New(interval),
	}
}

// Do reports whether f ran synchronously.
func (t *Throttle) Do(f func()) bool {
	if t.limiter.Allow() {
		f()
		return true
	}
	t.trailing(f)
	return false
}

// Keyed keeps one Throttle per key, e.g. per section.
type Keyed struct {
	interval time.Duration
	mu       sync.Mutex
	byKey    map[string]*Throttle
}

func NewKeyed(interval time.Duration) *Keyed {
	return &Keyed{interval: interval, byKey: make(map[string]*Throttle)}
}

func (k *Keyed) Do(key string, f func()) bool {
	k.mu.Lock()
	t, ok := k.byKey[key]
	if !ok {
		t = NewThrottle(k.interval)
		k.byKey[key] = t
	}
	k.mu.Unlock()
	return t.Do(f)
}
