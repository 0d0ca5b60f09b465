package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pratyek/grocery-app/internal/metrics"
)

type Sender interface {
	Send(ctx context.Context, sc StatusChange) error
}

type QueueConfig struct {
	Workers     int
	Size        int
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	SendTimeout time.Duration
}

// Queue delivers notifications on background workers with retry.
type Queue struct {
	sender Sender
	cfg    QueueConfig
	log    zerolog.Logger

	jobs chan StatusChange
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	// canceled when Stop gives up waiting
	ctx    context.Context
	cancel context.CancelFunc
}

func NewQueue(sender Sender, cfg QueueConfig, log zerolog.Logger) *Queue {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		sender: sender,
		cfg:    cfg,
		log:    log,
		jobs:   make(chan StatusChange, cfg.Size),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (q *Queue) Start() {
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.log.Info().Int("workers", q.cfg.Workers).Int("size", q.cfg.Size).Msg("notification queue started")
}

// Notify enqueues without blocking. It reports whether the job was accepted.
func (q *Queue) Notify(_ context.Context, sc StatusChange) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.log.Warn().Str("order_ref", sc.OrderRef).Msg("notification queue stopped, dropping")
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return false
	}

	select {
	case q.jobs <- sc:
		metrics.NotificationQueueDepth.Set(float64(len(q.jobs)))
		return true
	default:
		q.log.Warn().Str("order_ref", sc.OrderRef).Msg("notification queue full, dropping")
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		return false
	}
}

// Stop refuses new jobs and waits for queued ones. When ctx ends first the
// remaining jobs are abandoned.
func (q *Queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for sc := range q.jobs {
		metrics.NotificationQueueDepth.Set(float64(len(q.jobs)))
		if q.ctx.Err() != nil {
			continue
		}
		q.deliver(sc)
	}
}

func (q *Queue) deliver(sc StatusChange) {
	var err error
	for attempt := 1; attempt <= q.cfg.MaxAttempts; attempt++ {
		if err = q.send(sc); err == nil {
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
			q.log.Info().Str("order_ref", sc.OrderRef).Int("attempt", attempt).Msg("status notification sent")
			return
		}
		if attempt == q.cfg.MaxAttempts {
			break
		}

		delay := backoffDelay(q.cfg.Backoff, q.cfg.MaxBackoff, attempt)
		q.log.Warn().Err(err).Str("order_ref", sc.OrderRef).Int("attempt", attempt).Dur("retry_in", delay).Msg("status notification failed, retrying")

		select {
		case <-time.After(delay):
		case <-q.ctx.Done():
			q.log.Warn().Str("order_ref", sc.OrderRef).Msg("notification abandoned on shutdown")
			metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
			return
		}
	}

	metrics.NotificationsTotal.WithLabelValues("failed").Inc()
	q.log.Error().Err(err).Str("order_ref", sc.OrderRef).Int("attempts", q.cfg.MaxAttempts).Msg("status notification gave up")
}

func (q *Queue) send(sc StatusChange) error {
	ctx := q.ctx
	if q.cfg.SendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.SendTimeout)
		defer cancel()
	}
	return q.sender.Send(ctx, sc)
}

// backoffDelay is base * 2^(attempt-1), capped at max when max > 0.
func backoffDelay(base, max time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if max > 0 && d >= max {
			return max
		}
	}
	if max > 0 && d > max {
		return max
	}
	return d
}
