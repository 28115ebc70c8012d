// internal/app/store/photos/photostore.go
package photostore

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
	return &Store{c: db.Collection("photos"), now: time.Now}
}

// Create inserts an unapproved photo.
func (s *Store) Create(ctx context.Context, p models.Photo) (models.Photo, error) {
	p.ID = primitive.NewObjectID()
	p.Approved = false
	p.ApprovedAt = nil
	p.CreatedAt = s.now().UTC()
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Photo{}, err
	}
	return p, nil
}

// GetByID returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	var p models.Photo
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Approve marks the photo approved. fields is applied alongside.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*models.Photo, error) {
	set := bson.M{"approved": true, "approved_at": s.now().UTC()}
	for k, v := range fields {
		set[k] = v
	}
	var p models.Photo
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes the photo record and returns it so the caller can remove the stored file.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.Photo, error) {
	var p models.Photo
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByApproval returns photos with the given approval state, newest first.
func (s *Store) ListByApproval(ctx context.Context, approved bool) ([]models.Photo, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"approved": approved}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Photo, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
