package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/congregate/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user directly, bypassing the store.
func (f *Fixtures) CreateUser(ctx context.Context, email string, approved bool, createdAt time.Time) models.User {
	f.t.Helper()

	u := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Approved:  approved,
		CreatedAt: createdAt.UTC(),
		UpdatedAt: createdAt.UTC(),
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreatePhoto inserts a photo directly, bypassing the store.
func (f *Fixtures) CreatePhoto(ctx context.Context, caption string, approved bool, createdAt time.Time) models.Photo {
	f.t.Helper()

	p := models.Photo{
		ID:          primitive.NewObjectID(),
		URL:         "/files/gallery/" + caption + ".jpg",
		StoragePath: "gallery/" + caption + ".jpg",
		Caption:     caption,
		ContentType: "image/jpeg",
		Approved:    approved,
		CreatedAt:   createdAt.UTC(),
	}
	if _, err := f.db.Collection("photos").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test photo: %v", err)
	}
	return p
}
