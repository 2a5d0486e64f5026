package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"featurestore/internal/adapter/fs"
	"featurestore/internal/metrics"
	"featurestore/internal/usecase"
)

var splitCmd = &cobra.Command{
	Use:   "split [feature-store.csv]",
	Short: "Split an existing feature store into training and testing files",
	Long: `Read a feature store CSV (the configured one by default) and split it
into the configured training and testing files with the fixed seed.

Examples:
  featurestore split
  featurestore split artifact/data_ingestion/feature_store/data.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSplit,
}

func init() {
	rootCmd.AddCommand(splitCmd)
}

func runSplit(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	path := cfg.Ingestion.FeatureStorePath
	if len(args) > 0 {
		var err error
		path, err = filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}
	}

	files := fs.NewCSVFiles()
	t, err := files.ReadTable(path)
	if err != nil {
		return fmt.Errorf("failed to read feature store: %w", err)
	}

	uc := usecase.NewIngestUseCase(cfg.Ingestion, nil, files, metrics.New(), logger)
	if err := uc.Split(t); err != nil {
		return fmt.Errorf("split failed: %w", err)
	}

	split := uc.LastSplit()
	fmt.Printf("\nSplit %d rows:\n", t.Len())
	fmt.Printf("  Training: %d rows -> %s\n", split.TrainRows, cfg.Ingestion.TrainingPath)
	fmt.Printf("  Testing:  %d rows -> %s\n", split.TestRows, cfg.Ingestion.TestingPath)
	return nil
}
