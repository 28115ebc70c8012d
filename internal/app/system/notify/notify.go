// Package notify is the notification port used by the workflows.
//
// Workflows call Notify after their state change has been committed. A
// Notify error never undoes that change; callers log it and move on.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/congregate/internal/app/system/mailer"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Message kinds.
const (
	KindRegistration = "registration"
	KindApproval     = "approval"
	KindRejection    = "rejection"
)

// Message is one notification to a single address.
type Message struct {
	Kind  string
	Email mailer.Email
}

// Notifier accepts messages for delivery.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Sender delivers an email immediately. *mailer.Mailer implements it.
type Sender interface {
	Send(ctx context.Context, e mailer.Email) error
}

// Enqueuer persists a message for later delivery. *outbox.Store implements it.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind string, e mailer.Email) error
}

// Outbox queues messages; the delivery worker sends them with retries.
type Outbox struct {
	q Enqueuer
}

func NewOutbox(q Enqueuer) *Outbox { return &Outbox{q: q} }

func (o *Outbox) Notify(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	if err := o.q.Enqueue(ctx, msg.Kind, msg.Email); err != nil {
		return fmt.Errorf("enqueue %s notification: %w", msg.Kind, err)
	}
	return nil
}

// Direct sends inline, bounded by timeout. Used when the outbox is disabled.
type Direct struct {
	s       Sender
	timeout time.Duration
	log     *zap.Logger
}

func NewDirect(s Sender, timeout time.Duration, logger *zap.Logger) *Direct {
	return &Direct{s: s, timeout: timeout, log: logger}
}

func (d *Direct) Notify(ctx context.Context, msg Message) error {
	ctx, cancel := timeouts.WithTimeout(ctx, d.timeout, d.log, "notify "+msg.Kind)
	defer cancel()
	return d.s.Send(ctx, msg.Email)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Notify(context.Context, Message) error { return nil }
