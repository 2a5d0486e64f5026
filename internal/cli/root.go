package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"featurestore/config"
	"featurestore/internal/adapter/fs"
	"featurestore/internal/adapter/mongostore"
	"featurestore/internal/adapter/store"
	"featurestore/internal/logging"
	"featurestore/internal/port"
)

var (
	cfgFile  string
	cfg      *config.Config
	rootDir  string
	logLevel string
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "featurestore",
	Short: "Export a document collection into a feature store and train/test files",
	Long: `featurestore pages every document of a MongoDB collection into a table,
writes it as the feature store CSV, and splits it into training and testing
CSVs with a fixed seed.

The connection URL is read from the environment variable named by
mongo.url_env (MONGODB_URL by default).

Example usage:
  featurestore ingest            # Export, store and split
  featurestore export            # Only write the feature store
  featurestore split             # Split an existing feature store
  featurestore history -n 5      # Show recent runs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg.ResolvePaths(rootDir)

		logger = logging.New(cfg.Logging, os.Stderr)
		return nil
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./featurestore.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory for relative paths (default is current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// newProvider builds the process's single connection provider.
func newProvider() *mongostore.Provider {
	return mongostore.NewProvider(cfg.Mongo, mongostore.WithLogger(logger))
}

// closeProvider disconnects on exit; failures are only logged.
func closeProvider(p *mongostore.Provider) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.Close(ctx); err != nil {
		logger.Warn("closing document store connection", "error", err)
	}
}

// openArtifactStore opens the run history, creating its directory.
func openArtifactStore() (port.ArtifactStore, error) {
	if err := fs.EnsureParentDir(cfg.Artifacts.DBPath); err != nil {
		return nil, err
	}
	return store.NewBoltStore(cfg.Artifacts.DBPath)
}
