package js

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/jonboulle/clockwork"
)

// timer is one setTimeout or setInterval registration. every is zero for
// one-shot timers.
type timer struct {
	id      int
	fn      goja.Callable
	args    []goja.Value
	due     time.Time
	every   time.Duration
	cleared bool
}

// timerManager owns page timers. Due times come from the runtime clock so
// tests can advance it.
type timerManager struct {
	mu     sync.Mutex
	clock  clockwork.Clock
	timers map[int]*timer
	lastID int
}

func newTimerManager(clock clockwork.Clock) *timerManager {
	return &timerManager{clock: clock, timers: make(map[int]*timer)}
}

func (tm *timerManager) add(fn goja.Callable, delay, every time.Duration, args []goja.Value) int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.lastID++
	t := &timer{
		id:    tm.lastID,
		fn:    fn,
		args:  args,
		due:   tm.clock.Now().Add(delay),
		every: every,
	}
	tm.timers[t.id] = t
	return t.id
}

func (tm *timerManager) setTimeout(fn goja.Callable, delay time.Duration, args []goja.Value) int {
	return tm.add(fn, delay, 0, args)
}

func (tm *timerManager) setInterval(fn goja.Callable, every time.Duration, args []goja.Value) int {
	return tm.add(fn, every, every, args)
}

// clearTimer serves both clearTimeout and clearInterval. Unknown ids are
// ignored.
func (tm *timerManager) clearTimer(id int) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if t := tm.timers[id]; t != nil {
		t.cleared = true
		delete(tm.timers, id)
	}
}

func (tm *timerManager) clearAll() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	for id, t := range tm.timers {
		t.cleared = true
		delete(tm.timers, id)
	}
}

// process runs every due timer, earliest first.
func (tm *timerManager) process(r *Runtime) {
	tm.mu.Lock()
	now := tm.clock.Now()
	var due []*timer
	for _, t := range tm.timers {
		if !t.cleared && !now.Before(t.due) {
			due = append(due, t)
		}
	}
	tm.mu.Unlock()

	slices.SortFunc(due, func(a, b *timer) int {
		if c := a.due.Compare(b.due); c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})

	for _, t := range due {
		// A callback may clear a timer that is due later in this pass.
		tm.mu.Lock()
		cleared := t.cleared
		tm.mu.Unlock()
		if cleared {
			continue
		}

		r.call(t.fn, goja.Undefined(), t.args...)

		tm.mu.Lock()
		if t.every > 0 && !t.cleared {
			t.due = tm.clock.Now().Add(t.every)
		} else {
			delete(tm.timers, t.id)
		}
		tm.mu.Unlock()
	}
}

func (tm *timerManager) hasPending() bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return len(tm.timers) > 0
}

// nextDueTime is how long until the earliest timer fires. It is 0 when a
// timer is already due or none are pending.
func (tm *timerManager) nextDueTime() time.Duration {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	now := tm.clock.Now()
	var next time.Duration
	for _, t := range tm.timers {
		wait := t.due.Sub(now)
		if wait <= 0 {
			return 0
		}
		if next == 0 || wait < next {
			next = wait
		}
	}
	return next
}
