// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"time"

	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store holds admin credentials in the "admins" collection.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins"), now: time.Now}
}

// GetByEmail returns the admin credential for email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.AdminCredential, error) {
	var a models.AdminCredential
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new admin credential.
func (s *Store) Create(ctx context.Context, email, pinHash string) (models.AdminCredential, error) {
	a := models.AdminCredential{
		ID:        primitive.NewObjectID(),
		Email:     normalize.Email(email),
		PINHash:   pinHash,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.AdminCredential{}, err
	}
	return a, nil
}

// Rotate replaces the stored PIN hash.
func (s *Store) Rotate(ctx context.Context, id primitive.ObjectID, pinHash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"pin_hash": pinHash, "rotated_at": s.now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes an admin credential. Returns mongo.ErrNoDocuments if not found.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// List returns all admins ordered by email.
func (s *Store) List(ctx context.Context) ([]models.AdminCredential, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "email", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.AdminCredential, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
