package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dalemusser/congregate/internal/app/system/apperr"
	"github.com/dalemusser/congregate/internal/app/system/moderation"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type item struct {
	ID       primitive.ObjectID
	Approved bool
	Note     string
}

type memStore struct {
	items map[primitive.ObjectID]*item
	err   error
}

func (s *memStore) GetByID(ctx context.Context, id primitive.ObjectID) (*item, error) {
	if s.err != nil {
		return nil, s.err
	}
	it, ok := s.items[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return it, nil
}

func (s *memStore) Approve(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*item, error) {
	it, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	it.Approved = true
	if n, ok := fields["note"].(string); ok {
		it.Note = n
	}
	return it, nil
}

func (s *memStore) Delete(ctx context.Context, id primitive.ObjectID) (*item, error) {
	it, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	delete(s.items, id)
	return it, nil
}

func (s *memStore) ListByApproval(ctx context.Context, approved bool) ([]item, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []item
	for _, it := range s.items {
		if it.Approved == approved {
			out = append(out, *it)
		}
	}
	return out, nil
}

func newStore(items ...*item) *memStore {
	s := &memStore{items: map[primitive.ObjectID]*item{}}
	for _, it := range items {
		s.items[it.ID] = it
	}
	return s
}

func TestApprove(t *testing.T) {
	it := &item{ID: primitive.NewObjectID()}
	m := moderation.New[item](newStore(it), "photo")

	got, err := m.Approve(context.Background(), it.ID.Hex(), map[string]any{"note": "ok"})
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if !got.Approved || got.Note != "ok" {
		t.Errorf("unexpected item %+v", got)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name  string
		store *memStore
		id    string
		kind  apperr.Kind
		msg   string
	}{
		{"malformed id", newStore(), "nope", apperr.KindValidation, "Invalid photo id."},
		{"unknown id", newStore(), primitive.NewObjectID().Hex(), apperr.KindNotFound, "Photo not found."},
		{"store down", &memStore{err: errors.New("boom")}, primitive.NewObjectID().Hex(), apperr.KindDependency, "Failed to reject photo."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := moderation.New[item](tt.store, "photo")
			_, err := m.Reject(context.Background(), tt.id)
			if apperr.KindOf(err) != tt.kind {
				t.Errorf("kind = %v, want %v", apperr.KindOf(err), tt.kind)
			}
			if apperr.MessageOf(err) != tt.msg {
				t.Errorf("message = %q, want %q", apperr.MessageOf(err), tt.msg)
			}
		})
	}
}

func TestReject_RemovesItem(t *testing.T) {
	it := &item{ID: primitive.NewObjectID()}
	s := newStore(it)
	m := moderation.New[item](s, "user")

	if _, err := m.Reject(context.Background(), it.ID.Hex()); err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if _, err := m.Get(context.Background(), it.ID.Hex()); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found after reject, got %v", err)
	}
}

func TestList_FiltersByApproval(t *testing.T) {
	s := newStore(&item{ID: primitive.NewObjectID()}, &item{ID: primitive.NewObjectID(), Approved: true})
	m := moderation.New[item](s, "photo")

	pending, err := m.List(context.Background(), false)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("expected 1 pending, got %d", len(pending))
	}
}
