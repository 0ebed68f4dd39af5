package asset

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// Result is the outcome of one background load.
type Result[T any] struct {
	Name  string
	Value T
	Err   error

	slot *Slot[T]
}

// Loader runs load functions on a worker pool and hands their results back
// through a channel. Results are only applied to their slots by Drain, so the
// goroutine calling Drain (the frame loop) is the single writer of every slot.
type Loader[T any] struct {
	pool    worker.DynamicWorkerPool
	results chan Result[T]
	nextID  atomic.Int64
	pending atomic.Int64
	logger  *slog.Logger
}

// NewLoader creates a Loader backed by a dynamic worker pool.
//
// Parameters:
//   - workers: maximum concurrent loads (values < 1 become 1)
//   - logger: logger for load outcomes (nil discards)
//
// Returns:
//   - *Loader[T]: the loader
func NewLoader[T any](workers int, logger *slog.Logger) *Loader[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loader[T]{
		pool:    worker.NewDynamicWorkerPool(max(workers, 1), 16, 5*time.Second),
		results: make(chan Result[T], 16),
		logger:  logger,
	}
}

// Submit marks slot as loading and runs load in the background. Panics inside
// load are converted into a failed result.
//
// Parameters:
//   - name: a label for logging
//   - slot: the slot that receives the result at the next Drain
//   - load: the blocking load function
//
// Returns:
//   - bool: false if the slot already has a load in flight
func (l *Loader[T]) Submit(name string, slot *Slot[T], load func() (T, error)) bool {
	if !slot.Begin() {
		return false
	}
	l.pending.Add(1)
	l.logger.Debug("asset load started", "asset", name)

	id := int(l.nextID.Add(1))
	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			res := Result[T]{Name: name, slot: slot}
			func() {
				defer func() {
					if r := recover(); r != nil {
						res.Err = fmt.Errorf("asset %s: load panicked: %v", name, r)
					}
				}()
				res.Value, res.Err = load()
			}()
			l.results <- res
			return nil, res.Err
		},
	})
	return true
}

// Pending returns the number of submitted loads not yet drained.
func (l *Loader[T]) Pending() int {
	return int(l.pending.Load())
}

// Drain applies every completed result to its slot without blocking.
//
// Parameters:
//   - onResult: optional callback invoked after each result has been applied
//
// Returns:
//   - int: the number of results applied
func (l *Loader[T]) Drain(onResult func(Result[T])) int {
	n := 0
	for {
		select {
		case res := <-l.results:
			l.apply(res)
			n++
			if onResult != nil {
				onResult(res)
			}
		default:
			return n
		}
	}
}

// Wait blocks until one result arrives or the timeout elapses, then drains the rest.
//
// Parameters:
//   - timeout: the maximum time to wait
//   - onResult: optional callback invoked after each result has been applied
//
// Returns:
//   - int: the number of results applied
func (l *Loader[T]) Wait(timeout time.Duration, onResult func(Result[T])) int {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-l.results:
		l.apply(res)
		if onResult != nil {
			onResult(res)
		}
		return 1 + l.Drain(onResult)
	case <-timer.C:
		return 0
	}
}

func (l *Loader[T]) apply(res Result[T]) {
	l.pending.Add(-1)
	if res.Err != nil {
		res.slot.Fail(res.Err)
		l.logger.Error("asset load failed", "asset", res.Name, "error", res.Err)
		return
	}
	res.slot.Resolve(res.Value)
	l.logger.Info("asset loaded", "asset", res.Name)
}
