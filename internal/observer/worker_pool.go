package observer

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// WorkerPool runs observer callbacks off the request path with a bounded
// number of goroutines
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	start    sync.Once
	stop     sync.Once
	mu       sync.RWMutex
	closed   bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*4),
	}
}

// Start launches the workers. Calling it more than once is a no-op.
func (wp *WorkerPool) Start() {
	wp.start.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *WorkerPool) worker() {
	for job := range wp.jobQueue {
		wp.run(job)
	}
}

func (wp *WorkerPool) run(job func()) {
	defer wp.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("Worker job panicked")
		}
	}()
	job()
}

// Submit queues a job. It reports false once the pool is closed.
func (wp *WorkerPool) Submit(job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	wp.wg.Add(1)
	wp.jobQueue <- job
	return true
}

// TrySubmit queues a job without waiting for room in the queue. It reports
// false when the queue is full or the pool is closed.
func (wp *WorkerPool) TrySubmit(job func()) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}
	wp.wg.Add(1)
	select {
	case wp.jobQueue <- job:
		return true
	default:
		wp.wg.Done()
		return false
	}
}

// Wait blocks until every submitted job has finished
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

// Close stops accepting jobs, drains the queue and stops the workers
func (wp *WorkerPool) Close() {
	wp.stop.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.jobQueue)
		wp.mu.Unlock()
	})
}
