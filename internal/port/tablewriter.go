package port

import "featurestore/internal/table"

// TableWriter persists a table snapshot at a path, replacing any existing file.
type TableWriter interface {
	WriteTable(path string, t *table.Table) error
}

// TableReader loads a persisted table snapshot.
type TableReader interface {
	ReadTable(path string) (*table.Table, error)
}
