// internal/domain/models/photo.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Photo is a gallery submission. Only approved photos are publicly listed.
type Photo struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	URL         string             `bson:"url" json:"url"`
	StoragePath string             `bson:"storage_path" json:"-"`
	Caption     string             `bson:"caption" json:"caption"`
	ContentType string             `bson:"content_type,omitempty" json:"contentType,omitempty"`
	Size        int64              `bson:"size,omitempty" json:"size,omitempty"`
	Approved    bool               `bson:"approved" json:"approved"`

	CreatedAt  time.Time  `bson:"created_at" json:"createdAt"`
	ApprovedAt *time.Time `bson:"approved_at,omitempty" json:"approvedAt,omitempty"`
}
