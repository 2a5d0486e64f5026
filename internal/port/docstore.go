package port

import (
	"context"

	"featurestore/internal/table"
)

// DocumentStore is a connected document database.
type DocumentStore interface {
	// ListDatabaseNames returns every logical database the store reports.
	ListDatabaseNames(ctx context.Context) ([]string, error)

	// Database binds a logical database by name. It does no I/O.
	Database(name string) Database

	// Disconnect releases the underlying connection.
	Disconnect(ctx context.Context) error
}

// Database is a named grouping of collections.
type Database interface {
	Name() string

	Collection(name string) Collection
}

// Collection is the read-only query surface the exporter consumes.
type Collection interface {
	Name() string

	// CountDocuments counts every document in the collection.
	CountDocuments(ctx context.Context) (int64, error)

	// Find returns one page of documents matching all.
	Find(ctx context.Context, opts FindOptions) ([]table.Record, error)
}

// FindOptions selects a page. An empty SortKey keeps the store's natural order.
type FindOptions struct {
	Skip    int64
	Limit   int64
	SortKey string
}
