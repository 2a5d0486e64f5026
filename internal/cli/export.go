package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"featurestore/internal/metrics"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the collection into the feature store only",
	Long: `Page the configured collection into a table and write the feature store
CSV without splitting it.

Examples:
  featurestore export
  featurestore export -c visa_applications -Q`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addExportFlags(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	applyExportFlags()
	cfg := GetConfig()

	provider := newProvider()
	defer closeProvider(provider)

	m := metrics.New()
	started := time.Now()

	uc, err := newIngestUseCase(cmd.Context(), provider, m)
	if err != nil {
		finishMetrics(m, started, err)
		return fmt.Errorf("export failed: %w", err)
	}
	t, err := uc.ExportAndStore(cmd.Context())
	finishMetrics(m, started, err)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Printf("\nExported %d rows, %d columns to %s\n", t.Len(), len(t.Columns), cfg.Ingestion.FeatureStorePath)
	return nil
}
