package usecase

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"featurestore/config"
	"featurestore/internal/adapter/memstore"
	"featurestore/internal/adapter/mongostore"
	"featurestore/internal/errors"
	"featurestore/internal/logging"
	"featurestore/internal/metrics"
	"featurestore/internal/port"
	"featurestore/internal/table"
)

const testDB = "Proj1"

func seed(st *memstore.MemoryStore, collection string, n int) {
	docs := make([]table.Record, n)
	for i := range docs {
		docs[i] = table.Record{
			{Key: "_id", Value: fmt.Sprintf("oid-%06d", i)},
			{Key: "case_id", Value: fmt.Sprintf("EZYV%d", i)},
			{Key: "education", Value: "na"},
			{Key: "wage", Value: float64(i) * 10.5},
		}
	}
	st.Insert(testDB, collection, docs...)
}

func newConn(st *memstore.MemoryStore) *mongostore.Connection {
	st.CreateDatabase(testDB)
	return &mongostore.Connection{Store: st, Database: st.Database(testDB), Name: testDB}
}

func newExporter(st *memstore.MemoryStore, mutate func(*config.IngestionConfig)) *ExportUseCase {
	cfg := config.DefaultConfig().Ingestion
	if mutate != nil {
		mutate(&cfg)
	}
	return NewExportUseCase(newConn(st), cfg, metrics.New(), logging.Discard())
}

func TestExportTwoPages(t *testing.T) {
	st := memstore.NewMemoryStore()
	seed(st, "visa", 100000)

	tbl, stats, err := newExporter(st, nil).Export(context.Background(), ExportRequest{Collection: "visa", BatchSize: 50000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if tbl.Len() != 100000 {
		t.Errorf("expected 100000 rows, got %d", tbl.Len())
	}
	if tbl.ColumnIndex("_id") != -1 {
		t.Errorf("expected _id column to be dropped, got columns %v", tbl.Columns)
	}
	if stats.Pages != 2 || stats.Total != 100000 || stats.Fetched != 100000 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	finds := st.Finds()
	expected := []port.FindOptions{
		{Skip: 0, Limit: 50000},
		{Skip: 50000, Limit: 50000},
	}
	if len(finds) != len(expected) {
		t.Fatalf("expected %d finds, got %d", len(expected), len(finds))
	}
	for i, f := range finds {
		if f.Options != expected[i] {
			t.Errorf("find %d: expected %+v, got %+v", i, expected[i], f.Options)
		}
	}
}

func TestExportRowCountMatchesStore(t *testing.T) {
	for _, tc := range []struct{ docs, batch int }{
		{1, 50000}, {7, 3}, {9, 3}, {10, 1}, {11, 50},
	} {
		t.Run(fmt.Sprintf("%d_docs_batch_%d", tc.docs, tc.batch), func(t *testing.T) {
			st := memstore.NewMemoryStore()
			seed(st, "visa", tc.docs)

			tbl, stats, err := newExporter(st, nil).Export(context.Background(), ExportRequest{Collection: "visa", BatchSize: tc.batch})
			if err != nil {
				t.Fatal(err)
			}
			if tbl.Len() != tc.docs {
				t.Errorf("expected %d rows, got %d", tc.docs, tbl.Len())
			}
			wantPages := (tc.docs + tc.batch - 1) / tc.batch
			if stats.Pages != wantPages {
				t.Errorf("expected %d pages, got %d", wantPages, stats.Pages)
			}
		})
	}
}

func TestExportPreservesOrderAndNormalizesNulls(t *testing.T) {
	st := memstore.NewMemoryStore()
	seed(st, "visa", 5)

	tbl, stats, err := newExporter(st, nil).Export(context.Background(), ExportRequest{Collection: "visa", BatchSize: 2})
	if err != nil {
		t.Fatal(err)
	}

	for i, row := range tbl.Rows {
		if row[0] != fmt.Sprintf("EZYV%d", i) {
			t.Errorf("row %d: expected EZYV%d, got %v", i, i, row[0])
		}
		if !table.IsNull(row[1]) {
			t.Errorf("row %d: expected null education, got %v", i, row[1])
		}
	}
	if stats.Nulls != 5 {
		t.Errorf("expected 5 normalized nulls, got %d", stats.Nulls)
	}
}

func TestExportEmptyCollection(t *testing.T) {
	st := memstore.NewMemoryStore()

	tbl, stats, err := newExporter(st, nil).Export(context.Background(), ExportRequest{Collection: "visa"})
	if err != nil {
		t.Fatalf("expected no error for empty collection, got %v", err)
	}
	if !tbl.Empty() || len(tbl.Columns) != 0 {
		t.Errorf("expected empty columnless table, got %d rows, columns %v", tbl.Len(), tbl.Columns)
	}
	if len(st.Finds()) != 0 || stats.Pages != 0 {
		t.Errorf("expected no page fetches, got %d", len(st.Finds()))
	}
}

func TestExportStopsOnEmptyPage(t *testing.T) {
	st := memstore.NewMemoryStore()
	seed(st, "visa", 4)
	exp := newExporter(st, nil)

	// The collection shrinks between count and fetch.
	shrinking := &shrinkingStore{MemoryStore: st, reportedCount: 10}
	exp.conn = &mongostore.Connection{Store: shrinking, Database: shrinking.Database(testDB), Name: testDB}

	tbl, stats, err := exp.Export(context.Background(), ExportRequest{Collection: "visa", BatchSize: 3})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 4 || stats.Total != 10 || stats.Pages != 2 {
		t.Errorf("expected 4 rows in 2 pages of a reported 10, got rows=%d stats=%+v", tbl.Len(), stats)
	}
	if len(st.Finds()) != 3 {
		t.Errorf("expected a third, empty page fetch, got %d finds", len(st.Finds()))
	}
}

func TestExportDatabaseOverride(t *testing.T) {
	st := memstore.NewMemoryStore()
	st.Insert("archive", "visa", table.Record{{Key: "a", Value: "x"}})
	st.Insert("archive", "visa", table.Record{{Key: "a", Value: "y"}})

	tbl, stats, err := newExporter(st, nil).Export(context.Background(), ExportRequest{Collection: "visa", Database: "archive"})
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Len() != 2 || stats.Database != "archive" {
		t.Errorf("expected 2 rows from archive, got %d from %s", tbl.Len(), stats.Database)
	}
}

func TestExportSortKeyAndExcludedColumns(t *testing.T) {
	st := memstore.NewMemoryStore()
	seed(st, "visa", 3)

	exp := newExporter(st, func(c *config.IngestionConfig) {
		c.SortKey = "case_id"
		c.ExcludeColumns = []string{"edu*"}
	})
	tbl, _, err := exp.Export(context.Background(), ExportRequest{Collection: "visa"})
	if err != nil {
		t.Fatal(err)
	}

	if got := tbl.Columns; len(got) != 2 || got[0] != "case_id" || got[1] != "wage" {
		t.Errorf("expected columns [case_id wage], got %v", got)
	}
	if st.Finds()[0].Options.SortKey != "case_id" {
		t.Errorf("expected sort key to reach the store, got %+v", st.Finds()[0].Options)
	}
}

func TestExportQueryErrors(t *testing.T) {
	for _, op := range []string{"count", "find"} {
		t.Run(op, func(t *testing.T) {
			st := memstore.NewMemoryStore()
			seed(st, "visa", 3)
			cause := stderrors.New("socket closed")
			st.FailOn(op, cause)

			tbl, _, err := newExporter(st, nil).Export(context.Background(), ExportRequest{Collection: "visa"})
			if tbl != nil {
				t.Error("expected no partial table")
			}
			if !errors.Is(err, errors.ErrQuery) {
				t.Errorf("expected query error, got %v", err)
			}
			if !stderrors.Is(err, cause) {
				t.Errorf("expected cause to be kept, got %v", err)
			}
		})
	}
}

func TestExportProgress(t *testing.T) {
	st := memstore.NewMemoryStore()
	seed(st, "visa", 5)
	exp := newExporter(st, nil)

	var calls [][2]int
	exp.OnProgress(func(fetched, total int) {
		calls = append(calls, [2]int{fetched, total})
	})
	if _, _, err := exp.Export(context.Background(), ExportRequest{Collection: "visa", BatchSize: 2}); err != nil {
		t.Fatal(err)
	}

	expected := [][2]int{{2, 5}, {4, 5}, {5, 5}}
	if fmt.Sprint(calls) != fmt.Sprint(expected) {
		t.Errorf("expected progress %v, got %v", expected, calls)
	}
}

type shrinkingStore struct {
	*memstore.MemoryStore
	reportedCount int64
}

func (s *shrinkingStore) Database(name string) port.Database {
	return shrinkingDB{Database: s.MemoryStore.Database(name), count: s.reportedCount}
}

type shrinkingDB struct {
	port.Database
	count int64
}

func (d shrinkingDB) Collection(name string) port.Collection {
	return shrinkingColl{Collection: d.Database.Collection(name), count: d.count}
}

type shrinkingColl struct {
	port.Collection
	count int64
}

func (c shrinkingColl) CountDocuments(ctx context.Context) (int64, error) {
	return c.count, nil
}
