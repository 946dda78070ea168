package js

import (
	"context"
	"sync"

	"github.com/dop251/goja"
)

type job struct {
	fn   goja.Callable
	args []goja.Value
}

// jobQueue holds queueMicrotask callbacks. It is drained completely before
// any timer fires.
type jobQueue struct {
	mu   sync.Mutex
	jobs []job
}

func (q *jobQueue) push(fn goja.Callable, args ...goja.Value) {
	q.mu.Lock()
	q.jobs = append(q.jobs, job{fn: fn, args: args})
	q.mu.Unlock()
}

// take removes and returns everything queued so far.
func (q *jobQueue) take() []job {
	q.mu.Lock()
	defer q.mu.Unlock()
	jobs := q.jobs
	q.jobs = nil
	return jobs
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *jobQueue) reset() {
	q.mu.Lock()
	q.jobs = nil
	q.mu.Unlock()
}

// drainJobs runs queued jobs, including ones queued while draining.
func (r *Runtime) drainJobs() {
	for jobs := r.jobs.take(); len(jobs) > 0; jobs = r.jobs.take() {
		for _, j := range jobs {
			r.call(j.fn, goja.Undefined(), j.args...)
		}
	}
}

// RunEventLoop runs queued jobs, then due timers, then the jobs those
// timers queued. It reports whether work remains.
func (r *Runtime) RunEventLoop() bool {
	r.drainJobs()
	r.timers.process(r)
	r.drainJobs()
	return r.HasPendingWork()
}

func (r *Runtime) HasPendingWork() bool {
	return r.jobs.len() > 0 || r.timers.hasPending()
}

// Run drives the loop on the calling goroutine until nothing is pending
// or ctx is done, sleeping on the runtime's clock until the next timer.
func (r *Runtime) Run(ctx context.Context) error {
	for r.RunEventLoop() {
		if r.jobs.len() > 0 {
			continue
		}
		wait := r.timers.nextDueTime()
		if wait <= 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.clock.After(wait):
		}
	}
	return nil
}

// Stop drops every queued job and timer.
func (r *Runtime) Stop() {
	r.jobs.reset()
	r.timers.clearAll()
}
