package workerpool

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/paulexconde/vaxreview/pkg/fault"
)

type Job func(ctx context.Context)

// Submitter is what request handlers see of the pool.
type Submitter interface {
	Submit(job Job) bool
}

type WorkerPool struct {
	queue  chan Job
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewWorkerPool(ctx context.Context, workerCount int, queueSize int) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}

	pool := &WorkerPool{
		queue: make(chan Job, queueSize),
	}

	pool.wg.Add(workerCount)
	for range workerCount {
		go pool.worker(ctx)
	}

	return pool
}

func (p *WorkerPool) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			log.Println("Worker received shutdown signal")
			return
		case job, ok := <-p.queue:
			if !ok {
				// queue closed
				return
			}
			run(ctx, job)
		}
	}
}

// run keeps one panicking job from taking the worker down with it.
func run(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("job panicked: %v", r)
			log.Println(err)
			sentry.CaptureException(err)
		}
	}()
	job(ctx)
}

// Submit enqueues job without blocking. It reports false when the job was dropped.
func (p *WorkerPool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		log.Println("Worker pool closed: job dropped")
		return false
	}

	select {
	case p.queue <- job:
		return true
	default:
		log.Println("Worker pool queue full: job dropped")
		return false
	}
}

func (p *WorkerPool) Shutdown(ctx context.Context) {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})

	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		log.Println("Worker pool shutdown timed out")
	case <-done:
		log.Println("Worker pool shutdown complete")
	}
}

// WithRetry runs job up to retries times. A client fault is not retried. The
// last failure is logged and sent to sentry; it never reaches the request that
// submitted the job.
func WithRetry(name string, retries int, delay time.Duration, job func(ctx context.Context) error) Job {
	if retries < 1 {
		retries = 1
	}

	return func(ctx context.Context) {
		var err error
		for i := range retries {
			if ctx.Err() != nil {
				log.Printf("Job %s canceled before execution", name)
				return
			}

			if err = job(ctx); err == nil {
				return // success
			}
			log.Printf("Job %s failed (attempt %d/%d): %v", name, i+1, retries, err)
			if fault.IsClientError(err) {
				break
			}

			if i < retries-1 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(delay):
				}
			}
		}

		log.Printf("Job %s gave up: %v", name, err)
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("job", name)
			sentry.CaptureException(err)
		})
	}
}
