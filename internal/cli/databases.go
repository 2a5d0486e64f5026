package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var databasesCmd = &cobra.Command{
	Use:   "databases",
	Short: "List the databases the document store reports",
	Args:  cobra.NoArgs,
	RunE:  runDatabases,
}

func init() {
	rootCmd.AddCommand(databasesCmd)
}

func runDatabases(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	provider := newProvider()
	defer closeProvider(provider)

	st, err := provider.Store(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	names, err := st.ListDatabaseNames(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list databases: %w", err)
	}

	for _, name := range names {
		marker := " "
		if name == cfg.Mongo.Database {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
	return nil
}
