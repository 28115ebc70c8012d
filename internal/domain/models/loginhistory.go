// internal/domain/models/loginhistory.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Login roles.
const (
	LoginRoleMember = "member"
	LoginRoleAdmin  = "admin"
)

// LoginRecord captures a single successful login.
// CreatedAt is indexed for the recent-logins view.
type LoginRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Role      string             `bson:"role" json:"role"`
	UserID    string             `bson:"user_id,omitempty" json:"userId,omitempty"`
	IP        string             `bson:"ip" json:"ip"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
