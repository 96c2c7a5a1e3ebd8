package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blackwell-systems/hubctl/internal/hub"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type scriptedGetter struct {
	states []string
	calls  int
	err    error
}

func (g *scriptedGetter) GetTask(_ context.Context, id string) (*hub.Task, error) {
	if g.err != nil {
		return nil, g.err
	}
	i := g.calls
	if i >= len(g.states) {
		i = len(g.states) - 1
	}
	g.calls++
	t := &hub.Task{PulpHref: id, State: g.states[i]}
	if t.State == hub.TaskFailed {
		t.Error = &hub.TaskError{Description: "signing service unavailable"}
	}
	return t, nil
}

// instant records requested delays and fires immediately.
func instant(delays *[]time.Duration) func(time.Duration) <-chan time.Time {
	return func(d time.Duration) <-chan time.Time {
		*delays = append(*delays, d)
		ch := make(chan time.Time, 1)
		ch <- time.Now()
		return ch
	}
}

func TestWait_PollsUntilCompleted(t *testing.T) {
	g := &scriptedGetter{states: []string{hub.TaskWaiting, hub.TaskRunning, hub.TaskCompleted}}
	w := NewWaiter(g, 0, nil)
	var delays []time.Duration
	w.after = instant(&delays)

	task, err := w.Wait(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if task.State != hub.TaskCompleted {
		t.Errorf("state = %q, want completed", task.State)
	}
	if g.calls != 3 {
		t.Errorf("polls = %d, want 3", g.calls)
	}
	if len(delays) != 2 {
		t.Fatalf("sleeps = %d, want 2", len(delays))
	}
	for _, d := range delays {
		if d < MinInterval {
			t.Errorf("poll delay %v below minimum %v", d, MinInterval)
		}
	}
}

func TestWait_FailedTask(t *testing.T) {
	g := &scriptedGetter{states: []string{hub.TaskRunning, hub.TaskFailed}}
	w := NewWaiter(g, time.Second, nil)
	var delays []time.Duration
	w.after = instant(&delays)

	_, err := w.Wait(context.Background(), "t2")
	if !errors.Is(err, hub.ErrTaskFailed) {
		t.Fatalf("err = %v, want task_failed", err)
	}
	if delays[0] != time.Second {
		t.Errorf("interval = %v, want 1s", delays[0])
	}
}

func TestWait_GetterErrorPropagates(t *testing.T) {
	g := &scriptedGetter{err: hub.NetworkError("GET task", errors.New("refused"))}
	w := NewWaiter(g, 0, nil)

	_, err := w.Wait(context.Background(), "t3")
	if hub.KindOf(err) != hub.KindNetwork {
		t.Errorf("KindOf = %q, want network", hub.KindOf(err))
	}
}

func TestWait_ContextCancelStopsPolling(t *testing.T) {
	g := &scriptedGetter{states: []string{hub.TaskRunning}}
	w := NewWaiter(g, 0, nil)
	w.after = func(time.Duration) <-chan time.Time { return make(chan time.Time) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := w.Wait(ctx, "t4")
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

func TestNewWaiter_ClampsInterval(t *testing.T) {
	w := NewWaiter(&scriptedGetter{}, 10*time.Millisecond, nil)
	if w.Interval() != MinInterval {
		t.Errorf("Interval = %v, want %v", w.Interval(), MinInterval)
	}
}
