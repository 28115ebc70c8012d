// Package moderation is the approve/reject capability shared by every entity
// that waits for an admin decision before it becomes visible.
package moderation

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is implemented by the user and photo stores. Single-record methods
// return mongo.ErrNoDocuments for an unknown id.
type Store[T any] interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*T, error)
	Approve(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*T, error)
	ListByApproval(ctx context.Context, approved bool) ([]T, error)
}

// Moderator wraps a Store with id parsing, timeouts and error mapping.
type Moderator[T any] struct {
	store Store[T]
	noun  string
}

// New returns a Moderator. noun is used in client messages ("user", "photo").
func New[T any](store Store[T], noun string) *Moderator[T] {
	return &Moderator[T]{store: store, noun: noun}
}

// ParseID converts a hex id to an ObjectID or returns a validation error.
func (m *Moderator[T]) ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid " + m.noun + " id.")
	}
	return id, nil
}

// Get loads one item.
func (m *Moderator[T]) Get(ctx context.Context, rawID string) (*T, error) {
	id, err := m.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	item, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, m.mapErr("load", err)
	}
	return item, nil
}

// Approve marks the item approved, applying extra fields in the same write.
func (m *Moderator[T]) Approve(ctx context.Context, rawID string, fields map[string]any) (*T, error) {
	id, err := m.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	item, err := m.store.Approve(ctx, id, fields)
	if err != nil {
		return nil, m.mapErr("approve", err)
	}
	return item, nil
}

// Reject deletes the item and returns what was removed.
func (m *Moderator[T]) Reject(ctx context.Context, rawID string) (*T, error) {
	id, err := m.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	item, err := m.store.Delete(ctx, id)
	if err != nil {
		return nil, m.mapErr("reject", err)
	}
	return item, nil
}

// List returns items in the given approval state.
func (m *Moderator[T]) List(ctx context.Context, approved bool) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	items, err := m.store.ListByApproval(ctx, approved)
	if err != nil {
		return nil, apperr.Dependency("Failed to load "+m.noun+"s.", err)
	}
	return items, nil
}

func (m *Moderator[T]) mapErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(title(m.noun) + " not found.")
	}
	return apperr.Dependency("Failed to "+op+" "+m.noun+".", err)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
