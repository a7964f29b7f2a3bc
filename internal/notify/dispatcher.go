package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/paulexconde/vaxreview/internal/pkg/workerpool"
)

// Dispatcher hands mail and push deliveries to the worker pool. Delivery
// failures are retried, logged and reported there; callers only learn whether
// the job was queued.
type Dispatcher struct {
	pool       workerpool.Submitter
	mailer     Mailer
	pusher     Pusher
	retries    int
	retryDelay time.Duration
}

func NewDispatcher(pool workerpool.Submitter, mailer Mailer, pusher Pusher, retries int, retryDelay time.Duration) *Dispatcher {
	return &Dispatcher{
		pool:       pool,
		mailer:     mailer,
		pusher:     pusher,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// Go queues an arbitrary delivery task under the dispatcher's retry policy.
func (d *Dispatcher) Go(name string, task func(ctx context.Context) error) bool {
	return d.pool.Submit(workerpool.WithRetry(name, d.retries, d.retryDelay, task))
}

func (d *Dispatcher) SendMail(mail Mail) bool {
	return d.Go(fmt.Sprintf("mail(%s)", mail.Subject), func(ctx context.Context) error {
		return d.mailer.Send(ctx, mail)
	})
}

// SendPush queues n as a single attempt; the pusher retries per batch.
func (d *Dispatcher) SendPush(n Notification) bool {
	if len(n.Tokens) == 0 {
		return false
	}
	return d.pool.Submit(workerpool.WithRetry(fmt.Sprintf("push(%s)", n.Title), 1, 0, func(ctx context.Context) error {
		return d.pusher.Push(ctx, n)
	}))
}
