// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a past or upcoming congregation event shown on the events page.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Date        time.Time          `bson:"date" json:"date"`
	Description string             `bson:"description" json:"description"`
	MediaURL    string             `bson:"media_url" json:"mediaUrl"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}
