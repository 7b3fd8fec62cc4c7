package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/tierviz/pkg/chart"
)

// MongoOptions configures NewMongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps layouts in a MongoDB collection, one document per
// layout with the layout ID as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects, pings the server and ensures the listing index.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewMongoStoreFromCollection(client, client.Database(opts.Database).Collection(opts.Collection))
	if _, err := s.coll.Indexes().CreateOne(ctx, listIndex()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create index: %w", err)
	}
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. client may be
// nil if the caller manages the connection.
func NewMongoStoreFromCollection(client *mongo.Client, coll *mongo.Collection) *MongoStore {
	return &MongoStore{client: client, coll: coll}
}

func (s *MongoStore) Save(ctx context.Context, l chart.Layout) error {
	if !validID(l.ID) {
		return ErrInvalidID
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": l.ID}, l, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save layout %s: %w", l.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (chart.Layout, error) {
	var l chart.Layout
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return chart.Layout{}, ErrNotFound
	}
	if err != nil {
		return chart.Layout{}, fmt.Errorf("get layout %s: %w", id, err)
	}
	return l, nil
}

func (s *MongoStore) List(ctx context.Context, opts ListOptions) ([]chart.Layout, error) {
	cur, err := s.coll.Find(ctx, listFilter(opts), findOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	out := []chart.Layout{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode layouts: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete layout %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the client if the store owns one.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

func listFilter(opts ListOptions) bson.D {
	filter := bson.D{}
	if opts.Scenario != "" {
		filter = append(filter, bson.E{Key: "scenario", Value: opts.Scenario})
	}
	if opts.Mode != "" {
		filter = append(filter, bson.E{Key: "mode", Value: string(opts.Mode)})
	}
	return filter
}

func findOptions(opts ListOptions) *options.FindOptions {
	fo := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if opts.Limit > 0 {
		fo.SetLimit(int64(opts.Limit))
	}
	return fo
}

func listIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "scenario", Value: 1}, {Key: "created_at", Value: -1}},
	}
}

var _ Store = (*MongoStore)(nil)
