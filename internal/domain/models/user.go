// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a self-registered congregation member.
//
// NOTE:
//   - A user is pending while Approved is false and has no PIN yet.
//   - PINHash holds a bcrypt hash and is never serialized to JSON.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	PINHash  string             `bson:"pin_hash,omitempty" json:"-"`
	Approved bool               `bson:"approved" json:"approved"`
	Online   bool               `bson:"online" json:"online"`

	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updatedAt"`
	ApprovedAt *time.Time `bson:"approved_at,omitempty" json:"approvedAt,omitempty"`
}

// IsPending reports whether the user is still awaiting an admin decision.
func (u User) IsPending() bool { return !u.Approved }
