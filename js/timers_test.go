package js

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func calls(t *testing.T, r *Runtime) []string {
	t.Helper()
	v, err := r.Execute("calls.join(',')")
	require.NoError(t, err)
	if v.String() == "" {
		return nil
	}
	return strings.Split(v.String(), ",")
}

func TestSetTimeoutRunsWhenDue(t *testing.T) {
	r, clock, _ := newTestRuntime(t)

	_, err := r.Execute(`
		var calls = [];
		setTimeout(function (tag) { calls.push(tag); }, 100, "late");
		setTimeout(function () { calls.push("early"); }, 10);
	`)
	require.NoError(t, err)

	r.RunEventLoop()
	assert.Empty(t, calls(t, r))

	clock.Advance(10 * time.Millisecond)
	r.RunEventLoop()
	assert.Equal(t, []string{"early"}, calls(t, r))

	clock.Advance(90 * time.Millisecond)
	assert.False(t, r.RunEventLoop())
	assert.Equal(t, []string{"early", "late"}, calls(t, r))
	assert.False(t, r.HasPendingWork())
}

func TestTimersRunInDueOrder(t *testing.T) {
	r, clock, _ := newTestRuntime(t)

	_, err := r.Execute(`
		var calls = [];
		setTimeout(function () { calls.push("c"); }, 30);
		setTimeout(function () { calls.push("a"); }, 10);
		setTimeout(function () { calls.push("b"); }, 10);
	`)
	require.NoError(t, err)

	clock.Advance(50 * time.Millisecond)
	r.RunEventLoop()
	assert.Equal(t, []string{"a", "b", "c"}, calls(t, r))
}

func TestClearTimeout(t *testing.T) {
	r, clock, _ := newTestRuntime(t)

	_, err := r.Execute(`
		var calls = [];
		var id = setTimeout(function () { calls.push("never"); }, 10);
		setTimeout(function () { calls.push("first"); clearTimeout(later); }, 5);
		var later = setTimeout(function () { calls.push("cleared"); }, 5);
		clearTimeout(id);
	`)
	require.NoError(t, err)

	clock.Advance(20 * time.Millisecond)
	r.RunEventLoop()
	assert.Equal(t, []string{"first"}, calls(t, r))
	assert.False(t, r.HasPendingWork())
}

func TestSetInterval(t *testing.T) {
	r, clock, _ := newTestRuntime(t)

	_, err := r.Execute(`
		var calls = [];
		var n = 0;
		var id = setInterval(function () {
			n++;
			calls.push("tick" + n);
			if (n === 3) clearInterval(id);
		}, 20);
	`)
	require.NoError(t, err)

	for range 5 {
		clock.Advance(20 * time.Millisecond)
		r.RunEventLoop()
	}
	assert.Equal(t, []string{"tick1", "tick2", "tick3"}, calls(t, r))
	assert.False(t, r.HasPendingWork())
}

func TestMicrotasksRunBeforeTimers(t *testing.T) {
	r, clock, _ := newTestRuntime(t)

	_, err := r.Execute(`
		var calls = [];
		setTimeout(function () { calls.push("timer"); }, 0);
		queueMicrotask(function () { calls.push("micro"); });
		requestAnimationFrame(function (ts) { calls.push("frame"); });
	`)
	require.NoError(t, err)

	r.RunEventLoop()
	assert.Equal(t, []string{"micro", "timer"}, calls(t, r))

	clock.Advance(16 * time.Millisecond)
	r.RunEventLoop()
	assert.Equal(t, []string{"micro", "timer", "frame"}, calls(t, r))
}

func TestTimerCallbackErrorIsRecorded(t *testing.T) {
	r, clock, _ := newTestRuntime(t)

	_, err := r.Execute(`
		var calls = [];
		setTimeout(function () { throw new Error("boom"); }, 1);
		setTimeout(function () { calls.push("after"); }, 2);
	`)
	require.NoError(t, err)

	clock.Advance(5 * time.Millisecond)
	r.RunEventLoop()
	require.Len(t, r.Errors(), 1)
	assert.Contains(t, r.Errors()[0].Error(), "boom")
	assert.Equal(t, []string{"after"}, calls(t, r))
}

func TestRunWaitsOnClock(t *testing.T) {
	r, clock, _ := newTestRuntime(t)

	_, err := r.Execute(`
		var calls = [];
		setTimeout(function () { calls.push("done"); }, 1000);
	`)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"done"}, calls(t, r))
}

func TestRunStopsOnCancel(t *testing.T) {
	r, clock, _ := newTestRuntime(t)

	_, err := r.Execute(`setInterval(function () {}, 50)`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	clock.BlockUntil(1)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	r.Stop()
	assert.False(t, r.HasPendingWork())
}
