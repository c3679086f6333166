package database

import (
	"context"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryStore is an in-memory Store used by tests and local development.
// Documents are kept per collection in insertion order, matched by exact
// field equality on the filter. Write operations are serialized, which gives
// NextSequence the same atomicity guarantee as the Mongo implementation.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string][]bson.M
	failing     bool
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string][]bson.M)}
}

// SetFailing makes every operation return ErrStoreUnavailable when on is true
func (s *MemoryStore) SetFailing(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = on
}

// toDoc round-trips a value through bson so stored documents use the same
// field names and types the Mongo driver would produce.
func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeInto(doc bson.M, out interface{}) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func matches(doc bson.M, filter bson.M) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

// looseEqual compares values ignoring bson numeric widening (int vs int32 vs int64)
func looseEqual(a, b interface{}) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	ai, aok := asInt64(a)
	bi, bok := asInt64(b)
	return aok && bok && ai == bi
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// FindOne decodes the first matching document into out
func (s *MemoryStore) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrStoreUnavailable
	}

	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			return decodeInto(doc, out)
		}
	}
	return ErrNotFound
}

// Find decodes all matching documents into out, a pointer to a slice
func (s *MemoryStore) Find(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrStoreUnavailable
	}

	slicePtr := reflect.ValueOf(out)
	if slicePtr.Kind() != reflect.Ptr || slicePtr.Elem().Kind() != reflect.Slice {
		return ErrNotFound
	}
	sliceVal := slicePtr.Elem()
	elemType := sliceVal.Type().Elem()

	for _, doc := range s.collections[collection] {
		if !matches(doc, filter) {
			continue
		}
		elem := reflect.New(elemType)
		if err := decodeInto(doc, elem.Interface()); err != nil {
			return err
		}
		sliceVal = reflect.Append(sliceVal, elem.Elem())
	}
	slicePtr.Elem().Set(sliceVal)
	return nil
}

// InsertOne appends a document to the collection
func (s *MemoryStore) InsertOne(ctx context.Context, collection string, doc interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrStoreUnavailable
	}

	converted, err := toDoc(doc)
	if err != nil {
		return err
	}
	s.collections[collection] = append(s.collections[collection], converted)
	return nil
}

// UpdateOne applies $set/$inc to the first matching document, inserting when
// upsert is true and nothing matches
func (s *MemoryStore) UpdateOne(ctx context.Context, collection string, filter bson.M, update bson.M, upsert bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return ErrStoreUnavailable
	}

	for i, doc := range s.collections[collection] {
		if matches(doc, filter) {
			applyUpdate(doc, update)
			s.collections[collection][i] = doc
			return nil
		}
	}

	if !upsert {
		return nil
	}
	doc := bson.M{}
	for k, v := range filter {
		doc[k] = v
	}
	applyUpdate(doc, update)
	s.collections[collection] = append(s.collections[collection], doc)
	return nil
}

func applyUpdate(doc bson.M, update bson.M) {
	if set, ok := update["$set"].(bson.M); ok {
		for k, v := range set {
			doc[k] = v
		}
	}
	if inc, ok := update["$inc"].(bson.M); ok {
		for k, v := range inc {
			cur, _ := asInt64(doc[k])
			delta, _ := asInt64(v)
			doc[k] = cur + delta
		}
	}
}

// DeleteOne removes the first matching document
func (s *MemoryStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return false, ErrStoreUnavailable
	}

	docs := s.collections[collection]
	for i, doc := range docs {
		if matches(doc, filter) {
			s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// DeleteMany removes every matching document and returns the count
func (s *MemoryStore) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, ErrStoreUnavailable
	}

	var kept []bson.M
	var removed int64
	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	s.collections[collection] = kept
	return removed, nil
}

// NextSequence increments and returns the counter for key
func (s *MemoryStore) NextSequence(ctx context.Context, collection, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return 0, ErrStoreUnavailable
	}

	docs := s.collections[collection]
	for i, doc := range docs {
		if looseEqual(doc["_id"], key) {
			seq, _ := asInt64(doc["seq"])
			seq++
			doc["seq"] = seq
			docs[i] = doc
			return seq, nil
		}
	}
	s.collections[collection] = append(docs, bson.M{"_id": key, "seq": int64(1)})
	return 1, nil
}
