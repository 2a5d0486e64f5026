package domain

import "time"

// IngestionArtifact is what an ingestion run hands to the next stage.
type IngestionArtifact struct {
	TrainedFilePath string `json:"trained_file_path"`
	TestFilePath    string `json:"test_file_path"`
}

// ExportStats describes one batched export.
type ExportStats struct {
	Collection string
	Database   string
	Total      int
	Fetched    int
	Pages      int
	Columns    int
	Nulls      int
}

type SplitStats struct {
	TrainRows int
	TestRows  int
}

// IngestionRun is the bookkeeping record kept for every run, successful or not.
type IngestionRun struct {
	ID               string             `json:"id"`
	Collection       string             `json:"collection"`
	Database         string             `json:"database"`
	ConfigHash       string             `json:"config_hash,omitempty"`
	StartedAt        time.Time          `json:"started_at"`
	FinishedAt       time.Time          `json:"finished_at"`
	Rows             int                `json:"rows"`
	TrainRows        int                `json:"train_rows"`
	TestRows         int                `json:"test_rows"`
	FeatureStorePath string             `json:"feature_store_path,omitempty"`
	Artifact         *IngestionArtifact `json:"artifact,omitempty"`
	Error            string             `json:"error,omitempty"`
}

// Succeeded reports whether the run produced an artifact.
func (r IngestionRun) Succeeded() bool {
	return r.Artifact != nil && r.Error == ""
}
