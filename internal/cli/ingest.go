package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"featurestore/internal/adapter/fs"
	"featurestore/internal/adapter/mongostore"
	"featurestore/internal/adapter/store"
	"featurestore/internal/domain"
	"featurestore/internal/metrics"
	"featurestore/internal/usecase"
)

var (
	ingestCollection string
	ingestBatchSize  int
	ingestJSON       bool
	ingestQuiet      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Export the collection, write the feature store and split it",
	Long: `Run one full ingestion: page the configured collection into a table,
write the feature store CSV, split it into training and testing CSVs and
print the resulting artifact. Every run is recorded in the artifact store.

Examples:
  featurestore ingest
  featurestore ingest -c visa_applications --batch-size 10000 --json`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	addExportFlags(ingestCmd)
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the artifact as JSON")
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&ingestCollection, "collection", "c", "", "collection to export (default from config)")
	cmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "documents per page (default from config)")
	cmd.Flags().BoolVarP(&ingestQuiet, "quiet", "Q", false, "disable the progress bar")
}

func applyExportFlags() {
	cfg := GetConfig()
	if ingestCollection != "" {
		cfg.Ingestion.Collection = ingestCollection
	}
	if ingestBatchSize > 0 {
		cfg.Ingestion.BatchSize = ingestBatchSize
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	applyExportFlags()
	cfg := GetConfig()

	artifacts, err := openArtifactStore()
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}
	defer artifacts.Close()

	provider := newProvider()
	defer closeProvider(provider)

	if prev, err := artifacts.LastRunFor(cfg.Mongo.Database, cfg.Ingestion.Collection); err != nil {
		logger.Warn("reading run history", "error", err)
	} else if prev != nil {
		logger.Info("previous run", "run", prev.ID, "started_at", prev.StartedAt, "succeeded", prev.Succeeded(),
			"config_changed", prev.ConfigHash != store.ComputeConfigHash(cfg))
	}

	m := metrics.New()
	started := time.Now()
	run := domain.IngestionRun{
		ID:               fmt.Sprintf("%x", started.UnixNano()),
		Collection:       cfg.Ingestion.Collection,
		Database:         cfg.Mongo.Database,
		ConfigHash:       store.ComputeConfigHash(cfg),
		StartedAt:        started,
		FeatureStorePath: cfg.Ingestion.FeatureStorePath,
	}

	artifact, uc, err := ingest(cmd.Context(), provider, m)
	run.FinishedAt = time.Now()
	if uc != nil {
		run.Rows = uc.LastExport().Fetched
		run.TrainRows = uc.LastSplit().TrainRows
		run.TestRows = uc.LastSplit().TestRows
	}
	if err != nil {
		run.Error = err.Error()
	}
	run.Artifact = artifact

	if perr := artifacts.PutRun(run); perr != nil {
		logger.Warn("recording run", "run", run.ID, "error", perr)
	}
	finishMetrics(m, started, err)

	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	if ingestJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(artifact)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Collection:     %s.%s\n", run.Database, run.Collection)
	fmt.Printf("  Rows:           %d\n", run.Rows)
	fmt.Printf("  Training rows:  %d\n", run.TrainRows)
	fmt.Printf("  Testing rows:   %d\n", run.TestRows)
	fmt.Printf("\nFeature store:  %s\n", cfg.Ingestion.FeatureStorePath)
	fmt.Printf("Training file:  %s\n", artifact.TrainedFilePath)
	fmt.Printf("Testing file:   %s\n", artifact.TestFilePath)
	return nil
}

// ingest opens the connection and runs export, store and split. The use case
// is returned whenever it was built so callers can report partial stats.
func ingest(ctx context.Context, provider *mongostore.Provider, m *metrics.Metrics) (*domain.IngestionArtifact, *usecase.IngestUseCase, error) {
	uc, err := newIngestUseCase(ctx, provider, m)
	if err != nil {
		return nil, nil, err
	}
	artifact, err := uc.Run(ctx)
	return artifact, uc, err
}

func newIngestUseCase(ctx context.Context, provider *mongostore.Provider, m *metrics.Metrics) (*usecase.IngestUseCase, error) {
	cfg := GetConfig()

	conn, err := provider.Open(ctx, cfg.Mongo.Database)
	if err != nil {
		return nil, err
	}

	exporter := usecase.NewExportUseCase(conn, cfg.Ingestion, m, logger)
	if !ingestQuiet {
		exporter.OnProgress(newProgress("Exporting"))
	}
	return usecase.NewIngestUseCase(cfg.Ingestion, exporter, fs.NewCSVFiles(), m, logger), nil
}

// newProgress returns a callback drawing a bar on stderr. The bar is created
// on the first page, once the total is known.
func newProgress(label string) usecase.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(fetched, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+label+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(os.Stderr)
				}),
			)
		}
		bar.Set(fetched)
	}
}

func finishMetrics(m *metrics.Metrics, started time.Time, err error) {
	m.RunFinished(started, err)
	path := GetConfig().Metrics.Textfile
	if path == "" {
		return
	}
	if err := fs.EnsureParentDir(path); err != nil {
		logger.Warn("writing metrics", "error", err)
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		logger.Warn("writing metrics", "error", err)
	}
}
