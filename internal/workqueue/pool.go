// Package workqueue implements the fixed-size worker pool that executes
// render jobs off the owning goroutine.
package workqueue

import "runtime"
import "sync"

// A Pool runs submitted functions on a fixed set of worker goroutines.
//
// Pools distinguish between worker shutdown ([Pool.Close]) and draining
// ([Pool.Wait]): the renderer pool must be fully vacated before its
// source can change, which requires waiting for every in-flight job
// without tearing the workers down.
//
// Thread safety: Submit and Wait are safe for concurrent use, though the
// renderer only ever calls them from its owning goroutine.
type Pool struct {
	tasks chan func()
	workersDone sync.WaitGroup
	inflight sync.WaitGroup
	closeOnce sync.Once
}

// Creates a new pool with the given number of workers. Zero or negative
// values default to [runtime.GOMAXPROCS].
func New(workers int) *Pool {
	if workers <= 0 { workers = runtime.GOMAXPROCS(0) }
	pool := &Pool{ tasks: make(chan func(), workers*4) }
	pool.workersDone.Add(workers)
	for i := 0; i < workers; i++ {
		go pool.work()
	}
	return pool
}

func (self *Pool) work() {
	defer self.workersDone.Done()
	for task := range self.tasks {
		task()
		self.inflight.Done()
	}
}

// Submit enqueues a task for execution. It may block if all workers are
// busy and the queue is full. Submitting to a closed pool panics, like
// sending on a closed channel does.
func (self *Pool) Submit(task func()) {
	if task == nil { return }
	self.inflight.Add(1)
	self.tasks <- task
}

// Wait blocks until every submitted task has finished. The workers stay
// alive and keep accepting new tasks afterwards.
func (self *Pool) Wait() {
	self.inflight.Wait()
}

// Close waits for all pending tasks and then stops the workers.
// Close is safe to call multiple times.
func (self *Pool) Close() {
	self.closeOnce.Do(func() {
		self.inflight.Wait()
		close(self.tasks)
	})
	self.workersDone.Wait()
}
