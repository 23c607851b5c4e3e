package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Erreurs remontées par le store. Les handlers ne voient jamais une erreur
// driver brute : tout passe par ces sentinelles.
var (
	ErrNoDocument = errors.New("document introuvable")
	ErrDuplicate  = errors.New("document en double")
	ErrTimeout    = errors.New("délai de la base de données dépassé")
	ErrInvalidID  = errors.New("identifiant invalide")
)

// Store est le contrat minimal consommé par la logique métier : recherche
// par filtre exact, insertion avec identifiant généré, patch partiel,
// suppression. L'implémentation réelle est MongoDB (voir mongo.go), les
// tests utilisent la version en mémoire (memory.go).
type Store interface {
	FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error
	Find(ctx context.Context, collection string, filter bson.M, out interface{}) error
	InsertOne(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error)
	UpdateOne(ctx context.Context, collection string, filter bson.M, set bson.M) (matched int64, modified int64, err error)
	DeleteOne(ctx context.Context, collection string, filter bson.M) (deleted int64, err error)
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)
}

// ParseID valide un identifiant reçu dans l'URL avant qu'il n'atteigne le
// store. Un encodage invalide est rejeté ici, pas par le driver.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}
