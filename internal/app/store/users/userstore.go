package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/congregate/internal/app/system/normalize"
	"github.com/dalemusser/congregate/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users"), now: time.Now}
}

// Create inserts a pending user. The email is normalized before insert and
// the unique index on email turns a concurrent duplicate into ErrDuplicateEmail.
func (s *Store) Create(ctx context.Context, email string) (models.User, error) {
	now := s.now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     normalize.Email(email),
		Approved:  false,
		Online:    false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Approve marks the user approved and applies fields (the new pin_hash).
// Returns the updated user, or mongo.ErrNoDocuments if the id is unknown.
func (s *Store) Approve(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*models.User, error) {
	now := s.now().UTC()
	set := bson.M{
		"approved":    true,
		"approved_at": now,
		"updated_at":  now,
	}
	for k, v := range fields {
		set[k] = v
	}

	var u models.User
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Delete removes the user and returns the deleted record.
// Returns mongo.ErrNoDocuments if the id is unknown.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByApproval returns users with the given approval state, oldest first.
func (s *Store) ListByApproval(ctx context.Context, approved bool) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"approved": approved}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.User, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the total number of users.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}

// CountOnline returns the number of users currently marked online.
func (s *Store) CountOnline(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"online": true})
}

// SetOnline updates the presence flag. Returns mongo.ErrNoDocuments if the id is unknown.
func (s *Store) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"online": online, "updated_at": s.now().UTC()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
