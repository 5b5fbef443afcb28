// Package taskqueue runs submitted tasks strictly one after another.
package taskqueue

import (
	"context"
	"fmt"
	"sync"
)

// Queue runs tasks one at a time in submission order. Each task waits for
// the completion channel of the task before it; the first task waits on an
// already closed channel.
//
// A failing task does not stop the chain. Tasks are never cancelled once
// submitted: a caller that gives up still leaves its task to run.
type Queue struct {
	mu      sync.Mutex
	tail    chan struct{}
	pending int
}

func New() *Queue {
	done := make(chan struct{})
	close(done)
	return &Queue{tail: done}
}

// Enqueue appends task to the chain and returns a channel that receives its
// result once it has run.
func (q *Queue) Enqueue(task func() error) <-chan error {
	result := make(chan error, 1)
	done := make(chan struct{})

	q.mu.Lock()
	prev := q.tail
	q.tail = done
	q.pending++
	q.mu.Unlock()

	go func() {
		defer close(done)
		<-prev
		err := run(task)
		q.mu.Lock()
		q.pending--
		q.mu.Unlock()
		result <- err
	}()
	return result
}

// Do enqueues task and waits for it. If ctx ends first Do returns ctx.Err()
// and the task still runs to completion.
func (q *Queue) Do(ctx context.Context, task func() error) error {
	result := q.Enqueue(task)
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every task submitted before the call has finished.
// Tasks submitted afterwards are not waited for.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	tail := q.tail
	q.mu.Unlock()

	select {
	case <-tail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many tasks are queued or running.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

func run(task func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("queued task panicked: %v", r)
		}
	}()
	return task()
}
