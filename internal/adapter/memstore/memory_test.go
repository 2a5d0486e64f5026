package memstore

import (
	"context"
	"testing"

	"featurestore/internal/port"
	"featurestore/internal/table"
)

func doc(id string) table.Record {
	return table.Record{{Key: "_id", Value: id}}
}

func TestFindPages(t *testing.T) {
	st := NewMemoryStore()
	st.Insert("db", "c", doc("a"), doc("b"), doc("c"))
	coll := st.Database("db").Collection("c")

	n, err := coll.CountDocuments(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("expected 3 documents, got %d (%v)", n, err)
	}

	page, err := coll.Find(context.Background(), port.FindOptions{Skip: 2, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0][0].Value != "c" {
		t.Errorf("expected [c], got %v", page)
	}

	page, _ = coll.Find(context.Background(), port.FindOptions{Skip: 3, Limit: 2})
	if len(page) != 0 {
		t.Errorf("expected empty page past the end, got %v", page)
	}
	if len(st.Finds()) != 2 {
		t.Errorf("expected 2 recorded finds, got %d", len(st.Finds()))
	}
}

func TestFindSorted(t *testing.T) {
	st := NewMemoryStore()
	st.Insert("db", "c", doc("z"), doc("m"), doc("a"))

	page, err := st.Database("db").Collection("c").Find(context.Background(), port.FindOptions{Limit: 10, SortKey: "_id"})
	if err != nil {
		t.Fatal(err)
	}
	var got []any
	for _, rec := range page {
		got = append(got, rec[0].Value)
	}
	if len(got) != 3 || got[0] != "a" || got[2] != "z" {
		t.Errorf("expected sorted ids, got %v", got)
	}
}

func TestListDatabaseNames(t *testing.T) {
	st := NewMemoryStore()
	st.CreateDatabase("b")
	st.Insert("a", "c", doc("x"))

	names, err := st.ListDatabaseNames(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected [a b], got %v", names)
	}
}
