package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistItem struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email   string             `bson:"email" json:"email"`
	BookID  primitive.ObjectID `bson:"bookId" json:"book_id"`
	AddedAt time.Time          `bson:"addedAt" json:"added_at"`
}

type Wishlist struct {
	Email string `json:"email"`
	Items []Book `json:"items"`
}
