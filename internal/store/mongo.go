package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultTimeout borne chaque opération quand l'appelant n'a pas déjà posé
// de deadline. Aucune opération ne doit pouvoir bloquer indéfiniment.
const DefaultTimeout = 5 * time.Second

type MongoStore struct {
	db      *mongo.Database
	timeout time.Duration
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db, timeout: DefaultTimeout}
}

func (s *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *MongoStore) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w (%s)", ErrTimeout, op)
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	err := s.db.Collection(collection).FindOne(ctx, filter).Decode(out)
	return s.wrap("findOne "+collection, err)
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	cursor, err := s.db.Collection(collection).Find(ctx, filter)
	if err != nil {
		return s.wrap("find "+collection, err)
	}
	defer cursor.Close(ctx)

	return s.wrap("find "+collection, cursor.All(ctx, out))
}

func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, s.wrap("insertOne "+collection, err)
	}
	// Identifiant généré par le store, sauf pour les documents à _id fixe
	// (réglages du site) où l'identifiant retourné n'a pas d'intérêt.
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid, nil
	}
	return primitive.NilObjectID, nil
}

func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, 0, s.wrap("updateOne "+collection, err)
	}
	return res.MatchedCount, res.ModifiedCount, nil
}

func (s *MongoStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, s.wrap("deleteOne "+collection, err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, s.wrap("count "+collection, err)
	}
	return n, nil
}
