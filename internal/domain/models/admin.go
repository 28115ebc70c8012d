// internal/domain/models/admin.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminCredential is the stored admin identity used by login.
// It is seeded from configuration at startup and rotated when the configured PIN changes.
type AdminCredential struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	PINHash   string             `bson:"pin_hash" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	RotatedAt *time.Time         `bson:"rotated_at,omitempty" json:"rotated_at,omitempty"`
}
