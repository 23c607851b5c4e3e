package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice est un reçu de paiement : créé une seule fois au moment où le
// paiement aboutit, jamais modifié, jamais supprimé.
type Invoice struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"order_id"`
	Email     string             `bson:"email" json:"email"`
	UserName  string             `bson:"userName,omitempty" json:"user_name,omitempty"`
	BookTitle string             `bson:"bookTitle" json:"book_title"`
	Price     float64            `bson:"price" json:"price"`
	PaymentID string             `bson:"paymentId" json:"payment_id"`
	OrderDate time.Time          `bson:"orderDate" json:"order_date"`
	PaidAt    time.Time          `bson:"paidAt" json:"paid_at"`
}
