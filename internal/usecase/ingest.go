package usecase

import (
	"context"
	"log/slog"

	"featurestore/config"
	"featurestore/internal/domain"
	"featurestore/internal/errors"
	"featurestore/internal/metrics"
	"featurestore/internal/port"
	"featurestore/internal/table"
)

// Exporter produces the table for one collection.
type Exporter interface {
	Export(ctx context.Context, req ExportRequest) (*table.Table, domain.ExportStats, error)
}

// IngestUseCase drives one ingestion cycle: export, feature store, split.
type IngestUseCase struct {
	cfg      config.IngestionConfig
	exporter Exporter
	writer   port.TableWriter
	metrics  *metrics.Metrics
	logger   *slog.Logger

	lastExport domain.ExportStats
	lastSplit  domain.SplitStats
}

// NewIngestUseCase creates a new ingest use case.
func NewIngestUseCase(
	cfg config.IngestionConfig,
	exporter Exporter,
	writer port.TableWriter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *IngestUseCase {
	return &IngestUseCase{
		cfg:      cfg,
		exporter: exporter,
		writer:   writer,
		metrics:  m,
		logger:   logger,
	}
}

// ExportAndStore exports the configured collection and writes it to the
// feature store path. An empty export is an error and writes nothing.
func (u *IngestUseCase) ExportAndStore(ctx context.Context) (*table.Table, error) {
	u.logger.Info("exporting data from document store", "collection", u.cfg.Collection)

	t, stats, err := u.exporter.Export(ctx, ExportRequest{
		Collection: u.cfg.Collection,
		BatchSize:  u.cfg.BatchSize,
	})
	u.lastExport = stats
	if err != nil {
		return nil, errors.WithMessage(err, "exporting feature store")
	}

	u.logger.Info("rows fetched", "rows", t.Len(), "columns", t.Columns)
	if t.Empty() {
		return nil, errors.Newf(errors.ErrEmptyResult,
			"document store returned no rows for %s.%s; check the database name, collection name and that data exists",
			stats.Database, u.cfg.Collection)
	}

	u.logger.Info("saving feature store", "path", u.cfg.FeatureStorePath)
	if err := u.writer.WriteTable(u.cfg.FeatureStorePath, t); err != nil {
		return nil, errors.WithMessage(err, "saving feature store")
	}
	u.metrics.RowsWritten("feature_store", t.Len())
	return t, nil
}

// Split partitions t with the configured test ratio and the fixed seed, then
// writes the training and testing files.
func (u *IngestUseCase) Split(t *table.Table) error {
	u.logger.Debug("splitting feature store", "rows", t.Len(), "test_ratio", u.cfg.SplitRatio)
	if t.Empty() {
		return errors.New(errors.ErrEmptyResult, "cannot split an empty table")
	}

	train, test, err := table.TrainTestSplit(t, u.cfg.SplitRatio, config.SplitSeed)
	if err != nil {
		return errors.WithMessage(err, "splitting feature store")
	}
	u.lastSplit = domain.SplitStats{TrainRows: train.Len(), TestRows: test.Len()}
	u.logger.Info("performed train test split", "train_rows", train.Len(), "test_rows", test.Len())

	if err := u.writer.WriteTable(u.cfg.TrainingPath, train); err != nil {
		return errors.WithMessage(err, "saving training set")
	}
	u.metrics.RowsWritten("train", train.Len())

	if err := u.writer.WriteTable(u.cfg.TestingPath, test); err != nil {
		return errors.WithMessage(err, "saving testing set")
	}
	u.metrics.RowsWritten("test", test.Len())

	u.logger.Info("exported train and test files", "train", u.cfg.TrainingPath, "test", u.cfg.TestingPath)
	return nil
}

// Run exports, stores, splits and returns the artifact. Any failure aborts
// the remaining steps and no artifact is returned.
func (u *IngestUseCase) Run(ctx context.Context) (*domain.IngestionArtifact, error) {
	t, err := u.ExportAndStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := u.Split(t); err != nil {
		return nil, err
	}

	artifact := &domain.IngestionArtifact{
		TrainedFilePath: u.cfg.TrainingPath,
		TestFilePath:    u.cfg.TestingPath,
	}
	u.logger.Info("data ingestion artifact", "trained_file_path", artifact.TrainedFilePath, "test_file_path", artifact.TestFilePath)
	return artifact, nil
}

// LastExport returns the stats of the most recent export.
func (u *IngestUseCase) LastExport() domain.ExportStats {
	return u.lastExport
}

// LastSplit returns the partition sizes of the most recent split.
func (u *IngestUseCase) LastSplit() domain.SplitStats {
	return u.lastSplit
}
