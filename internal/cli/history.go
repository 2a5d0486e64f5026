package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded ingestion runs",
	Long: `List ingestion runs recorded in the artifact store, newest first.

Examples:
  featurestore history
  featurestore history -n 20 --json`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
}

func runHistory(cmd *cobra.Command, args []string) error {
	artifacts, err := openArtifactStore()
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}
	defer artifacts.Close()

	runs, err := artifacts.ListRuns(historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}
	for _, r := range runs {
		status := "ok"
		if !r.Succeeded() {
			status = "FAILED"
		}
		fmt.Printf("%s  %-6s  %s.%s  rows=%d train=%d test=%d  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), status, r.Database, r.Collection,
			r.Rows, r.TrainRows, r.TestRows, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
		if r.Error != "" {
			fmt.Printf("    error: %s\n", r.Error)
		}
	}
	return nil
}
