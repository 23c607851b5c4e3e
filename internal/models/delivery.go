package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DeliveryStatusPending  = "pending"
	DeliveryStatusApproved = "approved"
	DeliveryStatusRejected = "rejected"
	DeliveryStatusReturned = "returned"
	DeliveryStatusReceived = "received"
)

type DeliveryRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"order_id"`
	Email     string             `bson:"email" json:"email"`
	BookTitle string             `bson:"bookTitle" json:"book_title"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"created_at"`
}
