package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Statuts de commande. Le champ canonique est "status" — l'ancien backend
// écrivait tantôt "status", tantôt "orderStatus", on n'en garde qu'un.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

type Order struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email  string             `bson:"email" json:"email"`
	// userEmail n'est jamais écrit par ce backend, on le lit seulement pour
	// les documents hérités de l'ancienne application.
	LegacyEmail   string             `bson:"userEmail,omitempty" json:"-"`
	UserName      string             `bson:"userName,omitempty" json:"user_name,omitempty"`
	BookID        primitive.ObjectID `bson:"bookId,omitempty" json:"book_id,omitempty"`
	BookTitle     string             `bson:"bookTitle" json:"book_title"`
	Price         float64            `bson:"price" json:"price"`
	Status        string             `bson:"status" json:"status"`
	PaymentStatus string             `bson:"paymentStatus" json:"payment_status"`
	PaymentID     string             `bson:"paymentId,omitempty" json:"payment_id,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"created_at"`
}

// RequesterEmail retourne l'email canonique, ou l'ancien champ si le
// document date d'avant la migration.
func (o Order) RequesterEmail() string {
	if o.Email != "" {
		return o.Email
	}
	return o.LegacyEmail
}
