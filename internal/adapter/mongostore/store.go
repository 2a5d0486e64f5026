package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"featurestore/internal/port"
	"featurestore/internal/table"
)

// Store is a DocumentStore backed by a MongoDB client.
type Store struct {
	client *mongo.Client
}

var _ port.DocumentStore = (*Store)(nil)

func NewStore(client *mongo.Client) *Store {
	return &Store{client: client}
}

// Client returns the underlying driver client.
func (s *Store) Client() *mongo.Client {
	return s.client
}

func (s *Store) ListDatabaseNames(ctx context.Context) ([]string, error) {
	return s.client.ListDatabaseNames(ctx, bson.D{})
}

func (s *Store) Database(name string) port.Database {
	return &database{db: s.client.Database(name)}
}

func (s *Store) Disconnect(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type database struct {
	db *mongo.Database
}

func (d *database) Name() string { return d.db.Name() }

func (d *database) Collection(name string) port.Collection {
	return &collection{coll: d.db.Collection(name)}
}

type collection struct {
	coll *mongo.Collection
}

func (c *collection) Name() string { return c.coll.Name() }

func (c *collection) CountDocuments(ctx context.Context) (int64, error) {
	return c.coll.CountDocuments(ctx, bson.D{})
}

func (c *collection) Find(ctx context.Context, opts port.FindOptions) ([]table.Record, error) {
	cur, err := c.coll.Find(ctx, bson.D{}, findOptions(opts))
	if err != nil {
		return nil, err
	}

	var docs []bson.D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]table.Record, len(docs))
	for i, doc := range docs {
		records[i] = toRecord(doc)
	}
	return records, nil
}

func findOptions(opts port.FindOptions) *options.FindOptions {
	fo := options.Find().SetSkip(opts.Skip).SetLimit(opts.Limit)
	if opts.SortKey != "" {
		fo.SetSort(bson.D{{Key: opts.SortKey, Value: 1}})
	}
	return fo
}
