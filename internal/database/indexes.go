package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes pose les contraintes que l'applicatif ne peut pas garantir
// seul : les vérifications avant insertion sont consultatives, ce sont ces
// index qui bornent les courses (double avis, double wishlist).
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	// Un seul avis par couple (livre, utilisateur).
	_, err := db.Collection("reviews").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "bookId", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// Une seule entrée de wishlist par couple (utilisateur, livre).
	_, err = db.Collection("wishlists").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}, {Key: "bookId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// Un seul compte par email.
	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	// La balayeuse compte les demandes par commande à chaque passage.
	_, err = db.Collection("deliveryRequests").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "orderId", Value: 1}},
	})
	if err != nil {
		return err
	}

	// Listes par utilisateur : couvre email et le champ hérité.
	for _, key := range []string{"email", "userEmail"} {
		for _, col := range []string{"orders", "invoices"} {
			if _, err := db.Collection(col).Indexes().CreateOne(ctx, mongo.IndexModel{
				Keys: bson.D{{Key: key, Value: 1}},
			}); err != nil {
				return err
			}
		}
	}
	return nil
}
