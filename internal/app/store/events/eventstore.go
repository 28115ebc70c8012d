// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"time"

	"github.com/dalemusser/congregate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events"), now: time.Now}
}

// List returns all events, most recent date first.
func (s *Store) List(ctx context.Context) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Event, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts an event.
func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	e.ID = primitive.NewObjectID()
	e.Date = e.Date.UTC()
	e.CreatedAt = s.now().UTC()
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// Count returns the number of stored events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// DefaultEvents are the past events shown on a fresh install.
func DefaultEvents() []models.Event {
	return []models.Event{
		{
			Title:       "Christmas Service 2023",
			Date:        time.Date(2023, time.December, 25, 0, 0, 0, 0, time.UTC),
			Description: "A special service celebrating the birth of Jesus.",
			MediaURL:    "https://example.com/images/christmas.jpg",
		},
		{
			Title:       "Youth Revival 2023",
			Date:        time.Date(2023, time.August, 12, 0, 0, 0, 0, time.UTC),
			Description: "A youth-focused event with powerful sermons and music.",
			MediaURL:    "https://example.com/images/revival.jpg",
		},
		{
			Title:       "Thanksgiving Outreach 2023",
			Date:        time.Date(2023, time.November, 23, 0, 0, 0, 0, time.UTC),
			Description: "Reaching out to the community with food and love.",
			MediaURL:    "https://example.com/images/thanksgiving.jpg",
		},
	}
}

// SeedDefaults inserts DefaultEvents when the collection is empty and
// returns how many were inserted.
func (s *Store) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	defaults := DefaultEvents()
	now := s.now().UTC()
	docs := make([]any, 0, len(defaults))
	for _, e := range defaults {
		e.ID = primitive.NewObjectID()
		e.CreatedAt = now
		docs = append(docs, e)
	}
	if _, err := s.c.InsertMany(ctx, docs); err != nil {
		return 0, err
	}
	return len(docs), nil
}
