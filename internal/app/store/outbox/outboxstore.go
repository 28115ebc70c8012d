// internal/app/store/outbox/outboxstore.go
package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/congregate/internal/app/system/mailer"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrEmpty is returned by ClaimNext when nothing is due.
var ErrEmpty = errors.New("outbox: no message due")

// Store persists queued notifications in the "outbox" collection.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("outbox"), now: time.Now}
}

// Enqueue stores e as a pending message due immediately.
func (s *Store) Enqueue(ctx context.Context, kind string, e mailer.Email) error {
	now := s.now().UTC()
	msg := models.OutboxMessage{
		ID:            primitive.NewObjectID(),
		Kind:          kind,
		To:            e.To,
		Subject:       e.Subject,
		TextBody:      e.TextBody,
		HTMLBody:      e.HTMLBody,
		Status:        models.OutboxPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}
	_, err := s.c.InsertOne(ctx, msg)
	return err
}

// ClaimNext atomically moves the oldest due pending message to "sending" and
// returns it. Returns ErrEmpty when nothing is due.
func (s *Store) ClaimNext(ctx context.Context) (*models.OutboxMessage, error) {
	now := s.now().UTC()
	filter := bson.M{
		"status":          models.OutboxPending,
		"next_attempt_at": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{"status": models.OutboxSending, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetReturnDocument(options.After)

	var msg models.OutboxMessage
	if err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&msg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	return &msg, nil
}

// dropBodies removes the message text once delivery is settled. Approval
// bodies carry the member's PIN.
var dropBodies = bson.M{"text_body": "", "html_body": ""}

// MarkSent records a successful delivery and discards the bodies.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := s.now().UTC()
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"status": models.OutboxSent, "sent_at": now},
		"$unset": dropBodies,
		"$inc":   bson.M{"attempts": 1},
	})
	return err
}

// MarkRetry returns the message to pending with a later due time.
func (s *Store) MarkRetry(ctx context.Context, id primitive.ObjectID, cause string, next time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":          models.OutboxPending,
			"last_error":      cause,
			"next_attempt_at": next.UTC(),
		},
		"$inc": bson.M{"attempts": 1},
	})
	return err
}

// MarkFailed gives up on the message and discards the bodies.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID, cause string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set":   bson.M{"status": models.OutboxFailed, "last_error": cause},
		"$unset": dropBodies,
		"$inc":   bson.M{"attempts": 1},
	})
	return err
}

// ReleaseStale returns messages stuck in "sending" longer than olderThan to
// pending. This recovers work from a worker that died mid-delivery.
func (s *Store) ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-olderThan)
	res, err := s.c.UpdateMany(ctx,
		bson.M{"status": models.OutboxSending, "claimed_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{"status": models.OutboxPending}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountByStatus returns how many messages have the given status.
func (s *Store) CountByStatus(ctx context.Context, status string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"status": status})
}
