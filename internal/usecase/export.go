package usecase

import (
	"context"
	"log/slog"

	"featurestore/config"
	"featurestore/internal/adapter/mongostore"
	"featurestore/internal/domain"
	"featurestore/internal/errors"
	"featurestore/internal/metrics"
	"featurestore/internal/port"
	"featurestore/internal/table"
)

// ProgressFunc is called after every fetched page.
type ProgressFunc func(fetched, total int)

// ExportRequest selects the collection to export.
type ExportRequest struct {
	Collection string
	Database   string // empty uses the connection's bound database
	BatchSize  int    // <= 0 uses config.DefaultBatchSize
}

// ExportUseCase pages a whole collection into one table.
type ExportUseCase struct {
	conn           *mongostore.Connection
	nullMarker     string
	sortKey        string
	excludeColumns []string
	metrics        *metrics.Metrics
	logger         *slog.Logger
	progress       ProgressFunc
}

// NewExportUseCase creates a new export use case.
func NewExportUseCase(conn *mongostore.Connection, cfg config.IngestionConfig, m *metrics.Metrics, logger *slog.Logger) *ExportUseCase {
	return &ExportUseCase{
		conn:           conn,
		nullMarker:     cfg.NullMarker,
		sortKey:        cfg.SortKey,
		excludeColumns: cfg.ExcludeColumns,
		metrics:        m,
		logger:         logger,
	}
}

// OnProgress registers a progress callback.
func (u *ExportUseCase) OnProgress(fn ProgressFunc) {
	u.progress = fn
}

// Export counts the collection, fetches it page by page with skip/limit until
// an empty page or the count is reached, and returns the concatenated table
// without the identifier column and with null markers normalized. An empty
// collection yields an empty table and no error.
//
// Pages follow the store's natural order unless a sort key is configured, so
// concurrent writes during the export may duplicate or skip rows.
func (u *ExportUseCase) Export(ctx context.Context, req ExportRequest) (*table.Table, domain.ExportStats, error) {
	db := u.conn.Database
	if req.Database != "" {
		db = u.conn.Store.Database(req.Database)
	}
	batchSize := req.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	coll := db.Collection(req.Collection)
	stats := domain.ExportStats{Collection: req.Collection, Database: db.Name()}

	count, err := coll.CountDocuments(ctx)
	if err != nil {
		return nil, stats, errors.Wrapf(errors.ErrQuery, err, "counting documents in %s.%s", db.Name(), req.Collection)
	}
	stats.Total = int(count)
	u.logger.Info("exporting collection", "database", db.Name(), "collection", req.Collection, "documents", stats.Total, "batch_size", batchSize)

	var fragments []*table.Table
	for stats.Fetched < stats.Total {
		opts := port.FindOptions{Skip: int64(stats.Fetched), Limit: int64(batchSize), SortKey: u.sortKey}
		page, err := coll.Find(ctx, opts)
		if err != nil {
			return nil, stats, errors.Wrapf(errors.ErrQuery, err, "fetching %s.%s at offset %d", db.Name(), req.Collection, stats.Fetched)
		}
		if len(page) == 0 {
			break
		}

		fragments = append(fragments, table.FromRecords(page))
		stats.Fetched += len(page)
		stats.Pages++
		u.metrics.PageFetched(len(page))
		u.logger.Debug("fetched page", "fetched", stats.Fetched, "total", stats.Total)
		if u.progress != nil {
			u.progress(stats.Fetched, stats.Total)
		}
	}

	t := table.Concat(fragments...)
	t.DropColumns(table.IDColumn)
	if len(u.excludeColumns) > 0 {
		excluded, err := table.MatchColumns(t.Columns, u.excludeColumns)
		if err != nil {
			return nil, stats, err
		}
		t.DropColumns(excluded...)
	}
	stats.Nulls = t.NormalizeNulls(u.nullMarker)
	stats.Columns = len(t.Columns)

	u.logger.Info("export finished", "rows", t.Len(), "columns", stats.Columns, "pages", stats.Pages, "nulls", stats.Nulls)
	return t, stats, nil
}
