package hostbridge

import "sync"

// Task is a native action handed to the host for deferred execution.
type Task func() error

// Once owns a Task until it is invoked. Invoke takes the task out before
// running it, so a second invocation finds nothing and reports
// ErrClosureConsumed instead of running the task again.
type Once struct {
	mu   sync.Mutex
	task Task
}

// NewOnce wraps task. A nil task behaves as an already consumed closure.
func NewOnce(task Task) *Once {
	return &Once{task: task}
}

// Invoke runs the task the first time it is called.
func (o *Once) Invoke() error {
	task := o.take()
	if task == nil {
		return ErrClosureConsumed
	}
	return task()
}

// Consumed reports whether the task has been taken.
func (o *Once) Consumed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.task == nil
}

func (o *Once) take() Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	task := o.task
	o.task = nil
	return task
}
