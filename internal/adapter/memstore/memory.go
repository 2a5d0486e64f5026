package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"featurestore/internal/port"
	"featurestore/internal/table"
)

// MemoryStore is an in-process DocumentStore. It keeps documents in insertion
// order and records every page query it serves.
type MemoryStore struct {
	mu        sync.RWMutex
	databases map[string]map[string][]table.Record
	finds     []FindCall
	failures  map[string]error
}

// FindCall is one recorded page query.
type FindCall struct {
	Database   string
	Collection string
	Options    port.FindOptions
}

var _ port.DocumentStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		databases: make(map[string]map[string][]table.Record),
		failures:  make(map[string]error),
	}
}

// Insert appends documents to a collection, creating the database and
// collection on first use.
func (s *MemoryStore) Insert(database, collection string, docs ...table.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	db, ok := s.databases[database]
	if !ok {
		db = make(map[string][]table.Record)
		s.databases[database] = db
	}
	db[collection] = append(db[collection], docs...)
}

// CreateDatabase registers an empty database.
func (s *MemoryStore) CreateDatabase(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.databases[name]; !ok {
		s.databases[name] = make(map[string][]table.Record)
	}
}

// FailOn makes the named operation ("list", "count" or "find") return err.
func (s *MemoryStore) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Finds returns the page queries served so far.
func (s *MemoryStore) Finds() []FindCall {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]FindCall(nil), s.finds...)
}

func (s *MemoryStore) ListDatabaseNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.failures["list"]; err != nil {
		return nil, err
	}
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Database(name string) port.Database {
	return &database{store: s, name: name}
}

func (s *MemoryStore) Disconnect(ctx context.Context) error {
	return nil
}

type database struct {
	store *MemoryStore
	name  string
}

func (d *database) Name() string { return d.name }

func (d *database) Collection(name string) port.Collection {
	return &collection{store: d.store, database: d.name, name: name}
}

type collection struct {
	store    *MemoryStore
	database string
	name     string
}

func (c *collection) Name() string { return c.name }

func (c *collection) CountDocuments(ctx context.Context) (int64, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	if err := c.store.failures["count"]; err != nil {
		return 0, err
	}
	return int64(len(c.store.databases[c.database][c.name])), nil
}

func (c *collection) Find(ctx context.Context, opts port.FindOptions) ([]table.Record, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	c.store.finds = append(c.store.finds, FindCall{Database: c.database, Collection: c.name, Options: opts})
	if err := c.store.failures["find"]; err != nil {
		return nil, err
	}

	docs := c.store.databases[c.database][c.name]
	if opts.SortKey != "" {
		docs = sortedBy(docs, opts.SortKey)
	}

	start := int(opts.Skip)
	if start >= len(docs) {
		return nil, nil
	}
	end := len(docs)
	if opts.Limit > 0 && start+int(opts.Limit) < end {
		end = start + int(opts.Limit)
	}
	return append([]table.Record(nil), docs[start:end]...), nil
}

func sortedBy(docs []table.Record, key string) []table.Record {
	out := append([]table.Record(nil), docs...)
	sort.SliceStable(out, func(i, j int) bool {
		return fmt.Sprint(lookup(out[i], key)) < fmt.Sprint(lookup(out[j], key))
	})
	return out
}

func lookup(rec table.Record, key string) any {
	for _, f := range rec {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}
