// Package task waits for hub tasks to reach a terminal state.
package task

import (
	"context"
	"time"

	"github.com/blackwell-systems/hubctl/internal/hub"
	"github.com/charmbracelet/log"
)

// MinInterval is the shortest delay between two polls of the same task.
const MinInterval = 500 * time.Millisecond

// Getter fetches a task by ID.
type Getter interface {
	GetTask(ctx context.Context, id string) (*hub.Task, error)
}

// Waiter polls tasks until they finish.
type Waiter struct {
	getter   Getter
	interval time.Duration
	logger   *log.Logger

	// after is time.After, replaced in tests.
	after func(time.Duration) <-chan time.Time
}

// NewWaiter creates a Waiter polling every interval. Intervals below
// MinInterval are raised to it.
func NewWaiter(g Getter, interval time.Duration, logger *log.Logger) *Waiter {
	if interval < MinInterval {
		interval = MinInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Waiter{getter: g, interval: interval, logger: logger, after: time.After}
}

// Interval returns the effective poll interval.
func (w *Waiter) Interval() time.Duration { return w.interval }

// Wait polls the task until it is terminal. The first poll is immediate.
// A failed or canceled task yields a task_failed error. Cancelling ctx stops
// polling only; the hub keeps running the task.
func (w *Waiter) Wait(ctx context.Context, id string) (*hub.Task, error) {
	for {
		t, err := w.getter.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		if t.Terminal() {
			if !t.Succeeded() {
				desc := ""
				if t.Error != nil {
					desc = t.Error.Description
				}
				return t, hub.TaskFailedError(id, t.State, desc)
			}
			w.logger.Debug("task finished", "task", id, "state", t.State)
			return t, nil
		}

		w.logger.Debug("task pending", "task", id, "state", t.State)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-w.after(w.interval):
		}
	}
}
