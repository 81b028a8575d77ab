package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Training is a reusable training definition inside a Category. A demo video
// may be attached via an object-storage key; the core only links to it.
type Training struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CategoryID  primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	MediaObjectKey   string `bson:"mediaObjectKey,omitempty" json:"mediaObjectKey,omitempty"`
	MediaContentType string `bson:"mediaContentType,omitempty" json:"mediaContentType,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
