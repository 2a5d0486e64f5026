package port

import "featurestore/internal/domain"

// ArtifactStore keeps the history of ingestion runs.
type ArtifactStore interface {
	PutRun(run domain.IngestionRun) error

	// ListRuns returns up to limit runs, newest first. limit <= 0 returns all.
	ListRuns(limit int) ([]domain.IngestionRun, error)

	LastRun() (*domain.IngestionRun, error)

	// LastRunFor returns the newest run of one collection, or nil if none.
	LastRunFor(database, collection string) (*domain.IngestionRun, error)

	Close() error
}
