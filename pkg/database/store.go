package database

import (
	"context"
	"errors"
	"time"

	"github.com/anurag-krmkr/Parrot/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no document matches the filter
	ErrNotFound = errors.New("document not found")
	// ErrStoreUnavailable is returned when the database is unreachable.
	// Writes fail closed: a warning that cannot be persisted must not
	// appear to succeed.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Store is the persistence capability consumed by the moderation core.
// The Mongo implementation lives here; tests use MemoryStore.
type Store interface {
	FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error
	Find(ctx context.Context, collection string, filter bson.M, out interface{}) error
	InsertOne(ctx context.Context, collection string, doc interface{}) error
	UpdateOne(ctx context.Context, collection string, filter bson.M, update bson.M, upsert bool) error
	DeleteOne(ctx context.Context, collection string, filter bson.M) (bool, error)
	DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error)
	// NextSequence atomically increments and returns the named counter.
	// Concurrent callers are guaranteed distinct values.
	NextSequence(ctx context.Context, collection, key string) (int64, error)
}

// MongoStore implements Store on top of a Database connection
type MongoStore struct {
	db *Database
}

// NewMongoStore creates a Store backed by the given database
func NewMongoStore(db *Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) coll(name string) (*mongo.Collection, error) {
	if s.db == nil || !s.db.Connected() {
		return nil, ErrStoreUnavailable
	}
	col := s.db.GetCollection(name)
	if col == nil {
		return nil, ErrStoreUnavailable
	}
	return col, nil
}

func opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

// FindOne decodes the first document matching filter into out
func (s *MongoStore) FindOne(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	col, err := s.coll(collection)
	if err != nil {
		return err
	}

	ctx, cancel := opCtx(ctx)
	defer cancel()

	if err := col.FindOne(ctx, filter).Decode(out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Find decodes all documents matching filter into out (a pointer to a slice)
func (s *MongoStore) Find(ctx context.Context, collection string, filter bson.M, out interface{}) error {
	col, err := s.coll(collection)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := col.Find(ctx, filter)
	if err != nil {
		return err
	}
	defer func() { _ = cursor.Close(ctx) }()

	return cursor.All(ctx, out)
}

// InsertOne inserts a single document
func (s *MongoStore) InsertOne(ctx context.Context, collection string, doc interface{}) error {
	col, err := s.coll(collection)
	if err != nil {
		return err
	}

	ctx, cancel := opCtx(ctx)
	defer cancel()

	_, err = col.InsertOne(ctx, doc)
	return err
}

// UpdateOne applies update to the first document matching filter
func (s *MongoStore) UpdateOne(ctx context.Context, collection string, filter bson.M, update bson.M, upsert bool) error {
	col, err := s.coll(collection)
	if err != nil {
		return err
	}

	ctx, cancel := opCtx(ctx)
	defer cancel()

	opts := options.Update().SetUpsert(upsert)
	_, err = col.UpdateOne(ctx, filter, update, opts)
	return err
}

// DeleteOne removes the first document matching filter. Returns true iff a
// document existed and was removed.
func (s *MongoStore) DeleteOne(ctx context.Context, collection string, filter bson.M) (bool, error) {
	col, err := s.coll(collection)
	if err != nil {
		return false, err
	}

	ctx, cancel := opCtx(ctx)
	defer cancel()

	res, err := col.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// DeleteMany removes every document matching filter and returns the count
func (s *MongoStore) DeleteMany(ctx context.Context, collection string, filter bson.M) (int64, error) {
	col, err := s.coll(collection)
	if err != nil {
		return 0, err
	}

	ctx, cancel := opCtx(ctx)
	defer cancel()

	res, err := col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// NextSequence increments and returns the counter for key using an atomic
// find-and-modify, so concurrent warnings never collide on ids.
func (s *MongoStore) NextSequence(ctx context.Context, collection, key string) (int64, error) {
	col, err := s.coll(collection)
	if err != nil {
		return 0, err
	}

	ctx, cancel := opCtx(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter models.Counter
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": key}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
