package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps saves in a MongoDB collection, keyed by name with a
// unique index, for deployments where several dashboard instances share
// layouts.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the name index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "topoview"
	}
	if cfg.Collection == "" {
		cfg.Collection = "layouts"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// Put stores a save, upserting on name.
func (s *MongoStore) Put(ctx context.Context, save *Save) error {
	if err := prepare(save); err != nil {
		return err
	}

	var prev Save
	err := s.coll.FindOne(ctx, bson.M{"name": save.Name}).Decode(&prev)
	if err == nil {
		save.ID = prev.ID
		save.CreatedAt = prev.CreatedAt
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	_, err = s.coll.ReplaceOne(ctx, bson.M{"name": save.Name}, save,
		options.Replace().SetUpsert(true))
	return err
}

// Get retrieves a save by name.
func (s *MongoStore) Get(ctx context.Context, name string) (*Save, error) {
	var save Save
	err := s.coll.FindOne(ctx, bson.M{"name": name}).Decode(&save)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, err
	}
	return &save, nil
}

// List returns all saves, most recently updated first.
func (s *MongoStore) List(ctx context.Context) ([]*Save, error) {
	cursor, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*Save
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a save by name.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"name": name})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
