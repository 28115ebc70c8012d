// internal/domain/models/outbox.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Outbox message statuses.
const (
	OutboxPending = "pending"
	OutboxSending = "sending"
	OutboxSent    = "sent"
	OutboxFailed  = "failed"
)

// OutboxMessage is a queued outbound email. The delivery worker claims pending
// messages whose NextAttemptAt has passed.
type OutboxMessage struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind     string             `bson:"kind" json:"kind"` // registration | approval | rejection
	To       string             `bson:"to" json:"to"`
	Subject  string             `bson:"subject" json:"subject"`
	TextBody string             `bson:"text_body" json:"text_body"`
	HTMLBody string             `bson:"html_body,omitempty" json:"html_body,omitempty"`

	Status        string     `bson:"status" json:"status"`
	Attempts      int        `bson:"attempts" json:"attempts"`
	LastError     string     `bson:"last_error,omitempty" json:"last_error,omitempty"`
	NextAttemptAt time.Time  `bson:"next_attempt_at" json:"next_attempt_at"`
	ClaimedAt     *time.Time `bson:"claimed_at,omitempty" json:"claimed_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	SentAt        *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
}
