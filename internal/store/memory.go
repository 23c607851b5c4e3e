package store

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore est l'implémentation en mémoire du contrat Store, utilisée par
// les tests à la place de MongoDB. Le filtrage couvre ce que le backend
// utilise réellement : égalité exacte sur des champs de premier niveau et
// l'opérateur $or. Chaque opération est atomique sous un même mutex, ce qui
// reproduit la garantie "un seul updateOne conditionnel gagne".
type MemoryStore struct {
	mu      sync.Mutex
	data    map[string][]bson.M
	uniques map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:    make(map[string][]bson.M),
		uniques: make(map[string][][]string),
	}
}

// EnsureUnique simule un index d'unicité : toute insertion dont les champs
// listés coïncident avec un document existant échoue avec ErrDuplicate.
func (s *MemoryStore) EnsureUnique(collection string, fields ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniques[collection] = append(s.uniques[collection], fields)
}

func (s *MemoryStore) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return ErrTimeout
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.data[collection] {
		if matchFilter(doc, filter) {
			return decodeInto(doc, out)
		}
	}
	return ErrNoDocument
}

func (s *MemoryStore) Find(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return ErrTimeout
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []bson.M
	for _, doc := range s.data[collection] {
		if matchFilter(doc, filter) {
			matches = append(matches, doc)
		}
	}
	return decodeAll(matches, out)
}

func (s *MemoryStore) InsertOne(ctx context.Context, collection string, doc interface{}) (primitive.ObjectID, error) {
	if err := ctx.Err(); err != nil {
		return primitive.NilObjectID, ErrTimeout
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := bson.Marshal(doc)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insertOne %s: %w", collection, err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return primitive.NilObjectID, fmt.Errorf("insertOne %s: %w", collection, err)
	}

	for _, fields := range s.uniques[collection] {
		for _, existing := range s.data[collection] {
			same := true
			for _, f := range fields {
				if !valuesEqual(existing[f], m[f]) {
					same = false
					break
				}
			}
			if same {
				return primitive.NilObjectID, ErrDuplicate
			}
		}
	}

	switch id := m["_id"].(type) {
	case primitive.ObjectID:
		if id.IsZero() {
			id = primitive.NewObjectID()
			m["_id"] = id
		}
		s.data[collection] = append(s.data[collection], m)
		return id, nil
	case string:
		// _id fixe fourni par l'appelant (réglages du site).
		s.data[collection] = append(s.data[collection], m)
		return primitive.NilObjectID, nil
	default:
		oid := primitive.NewObjectID()
		m["_id"] = oid
		s.data[collection] = append(s.data[collection], m)
		return oid, nil
	}
}

func (s *MemoryStore) UpdateOne(ctx context.Context, collection string, filter bson.M, set bson.M) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, ErrTimeout
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.data[collection] {
		if !matchFilter(doc, filter) {
			continue
		}
		var modified int64
		for k, v := range set {
			nv := normalize(v)
			if !valuesEqual(doc[k], nv) {
				doc[k] = nv
				modified = 1
			}
		}
		return 1, modified, nil
	}
	return 0, 0, nil
}

func (s *MemoryStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, ErrTimeout
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.data[collection]
	for i, doc := range docs {
		if matchFilter(doc, filter) {
			s.data[collection] = append(docs[:i], docs[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *MemoryStore) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, ErrTimeout
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, doc := range s.data[collection] {
		if matchFilter(doc, filter) {
			n++
		}
	}
	return n, nil
}

func matchFilter(doc bson.M, filter bson.M) bool {
	for key, want := range filter {
		if key == "$or" {
			if !matchOr(doc, want) {
				return false
			}
			continue
		}
		if !valuesEqual(doc[key], want) {
			return false
		}
	}
	return true
}

func matchOr(doc bson.M, clauses interface{}) bool {
	v := reflect.ValueOf(clauses)
	if v.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < v.Len(); i++ {
		if sub, ok := v.Index(i).Interface().(bson.M); ok && matchFilter(doc, sub) {
			return true
		}
	}
	return false
}

// valuesEqual compare une valeur stockée (post-sérialisation BSON) avec une
// valeur de filtre fournie par l'appelant, en normalisant les types
// numériques et les dates.
func valuesEqual(stored, want interface{}) bool {
	stored, want = normalize(stored), normalize(want)
	return reflect.DeepEqual(stored, want)
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float32:
		return float64(x)
	case float64:
		return x
	case primitive.DateTime:
		return x.Time().UTC().Truncate(time.Millisecond)
	case time.Time:
		return x.UTC().Truncate(time.Millisecond)
	default:
		return v
	}
}

func decodeInto(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func decodeAll(matches []bson.M, out interface{}) error {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find: la destination doit être un pointeur de slice, reçu %T", out)
	}
	slice := v.Elem()
	result := reflect.MakeSlice(slice.Type(), 0, len(matches))
	for _, m := range matches {
		el := reflect.New(slice.Type().Elem())
		if err := decodeInto(m, el.Interface()); err != nil {
			return err
		}
		result = reflect.Append(result, el.Elem())
	}
	slice.Set(result)
	return nil
}
