// internal/app/system/workers/outboxdelivery.go
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dalemusser/congregate/internal/app/store/outbox"
	"github.com/dalemusser/congregate/internal/app/system/mailer"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Queue is the slice of the outbox store the delivery worker needs.
type Queue interface {
	ClaimNext(ctx context.Context) (*models.OutboxMessage, error)
	MarkSent(ctx context.Context, id primitive.ObjectID) error
	MarkRetry(ctx context.Context, id primitive.ObjectID, cause string, next time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, cause string) error
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, e mailer.Email) error
}

// DeliveryConfig tunes the outbox delivery worker.
type DeliveryConfig struct {
	Interval    time.Duration // poll interval
	MaxAttempts int           // attempts before a message is marked failed
	BaseBackoff time.Duration // first retry delay; doubles per attempt
	MaxBackoff  time.Duration
	BatchSize   int // messages sent per tick
}

func (c DeliveryConfig) withDefaults() DeliveryConfig {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 30 * time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	return c
}

// OutboxDelivery drains the notification outbox in the background.
type OutboxDelivery struct {
	q      Queue
	sender Sender
	cfg    DeliveryConfig
	log    *zap.Logger
	now    func() time.Time
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewOutboxDelivery creates a delivery worker.
func NewOutboxDelivery(q Queue, sender Sender, cfg DeliveryConfig, logger *zap.Logger) *OutboxDelivery {
	return &OutboxDelivery{
		q:      q,
		sender: sender,
		cfg:    cfg.withDefaults(),
		log:    logger,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Start begins the background delivery loop.
func (w *OutboxDelivery) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("outbox delivery worker started",
		zap.Duration("interval", w.cfg.Interval),
		zap.Int("max_attempts", w.cfg.MaxAttempts))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *OutboxDelivery) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("outbox delivery worker stopped")
}

func (w *OutboxDelivery) run() {
	defer w.wg.Done()

	w.releaseStale()

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Drain(context.Background())
		}
	}
}

func (w *OutboxDelivery) releaseStale() {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()

	// A claim older than two send timeouts belongs to a dead process.
	n, err := w.q.ReleaseStale(ctx, 2*timeouts.Notify())
	if err != nil {
		w.log.Error("failed to release stale outbox messages", zap.Error(err))
		return
	}
	if n > 0 {
		w.log.Info("released stale outbox messages", zap.Int64("count", n))
	}
}

// Drain sends up to BatchSize due messages and returns how many were sent.
func (w *OutboxDelivery) Drain(ctx context.Context) int {
	sent := 0
	for i := 0; i < w.cfg.BatchSize; i++ {
		select {
		case <-w.stopCh:
			return sent
		default:
		}

		claimCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
		msg, err := w.q.ClaimNext(claimCtx)
		cancel()
		if errors.Is(err, outbox.ErrEmpty) {
			return sent
		}
		if err != nil {
			w.log.Error("failed to claim outbox message", zap.Error(err))
			return sent
		}

		if w.deliver(ctx, msg) {
			sent++
		}
	}
	return sent
}

func (w *OutboxDelivery) deliver(ctx context.Context, msg *models.OutboxMessage) bool {
	sendCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Notify(), w.log, "outbox send")
	err := w.sender.Send(sendCtx, mailer.Email{
		To:       msg.To,
		Subject:  msg.Subject,
		TextBody: msg.TextBody,
		HTMLBody: msg.HTMLBody,
	})
	cancel()

	markCtx, markCancel := context.WithTimeout(ctx, timeouts.Short())
	defer markCancel()

	if err == nil {
		if mErr := w.q.MarkSent(markCtx, msg.ID); mErr != nil {
			w.log.Error("failed to mark outbox message sent", zap.Error(mErr), zap.String("id", msg.ID.Hex()))
		}
		return true
	}

	attempt := msg.Attempts + 1
	if attempt >= w.cfg.MaxAttempts {
		w.log.Error("outbox message failed permanently",
			zap.String("id", msg.ID.Hex()),
			zap.String("kind", msg.Kind),
			zap.Int("attempts", attempt),
			zap.Error(err))
		if mErr := w.q.MarkFailed(markCtx, msg.ID, err.Error()); mErr != nil {
			w.log.Error("failed to mark outbox message failed", zap.Error(mErr))
		}
		return false
	}

	next := w.now().Add(w.backoff(attempt))
	w.log.Warn("outbox send failed, will retry",
		zap.String("id", msg.ID.Hex()),
		zap.String("kind", msg.Kind),
		zap.Int("attempt", attempt),
		zap.Time("next_attempt_at", next),
		zap.Error(err))
	if mErr := w.q.MarkRetry(markCtx, msg.ID, err.Error(), next); mErr != nil {
		w.log.Error("failed to reschedule outbox message", zap.Error(mErr))
	}
	return false
}

// backoff returns BaseBackoff * 2^(attempt-1), capped at MaxBackoff.
func (w *OutboxDelivery) backoff(attempt int) time.Duration {
	d := w.cfg.BaseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= w.cfg.MaxBackoff {
			return w.cfg.MaxBackoff
		}
	}
	return d
}
