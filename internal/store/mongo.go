package store

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/evroutex/fleet-dispatch/internal/models"
)

// documentID is the _id of the singleton state record. The whole
// application document lives in one MongoDB record so the replace
// granularity matches the file backend exactly.
const documentID = "state"

// casRetries bounds how often an optimistic write is retried before
// giving up with ErrConflict.
const casRetries = 5

// ConnectMongo connects to MongoDB and verifies the connection.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// mongoDocument wraps the application document with the fixed record id.
type mongoDocument struct {
	ID              string `bson:"_id"`
	models.Document `bson:",inline"`
}

// MongoStore persists the document as a singleton record and guards
// mutations with optimistic versioning: a save only matches when the
// stored version still equals the one that was read (compare-and-swap).
type MongoStore struct {
	collection *mongo.Collection
	bootstrap  Bootstrap
}

// NewMongoStore creates a Mongo-backed store on the given collection.
func NewMongoStore(collection *mongo.Collection, bootstrap Bootstrap) *MongoStore {
	return &MongoStore{collection: collection, bootstrap: bootstrap}
}

// Load returns the current document, healing missing or corrupt state.
func (s *MongoStore) Load(ctx context.Context) (*models.Document, error) {
	var rec mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": documentID}).Decode(&rec)
	if err == nil && valid(&rec.Document) {
		return &rec.Document, nil
	}
	if err != nil && err != mongo.ErrNoDocuments {
		log.WithError(err).Warn("Resetting unreadable state record")
	}
	return s.reset(ctx)
}

// Update applies mutate to a fresh snapshot and commits it with a
// compare-and-swap on the document version, retrying on conflict.
func (s *MongoStore) Update(ctx context.Context, mutate func(*models.Document) error) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		doc, err := s.Load(ctx)
		if err != nil {
			return err
		}

		readVersion := doc.Version
		if err := mutate(doc); err != nil {
			return err
		}
		doc.Version = readVersion + 1

		res, err := s.collection.ReplaceOne(
			ctx,
			bson.M{"_id": documentID, "version": readVersion},
			mongoDocument{ID: documentID, Document: *doc},
		)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if res.MatchedCount == 1 {
			return nil
		}
		// Lost the race to another writer; reload and try again.
	}
	return ErrConflict
}

// reset writes the bootstrap default over whatever is stored.
func (s *MongoStore) reset(ctx context.Context) (*models.Document, error) {
	doc, err := DefaultDocument(s.bootstrap)
	if err != nil {
		return nil, err
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": documentID}, mongoDocument{ID: documentID, Document: *doc}, opts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return doc, nil
}
