package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"featurestore/config"
	"featurestore/internal/domain"
	"featurestore/internal/errors"
)

// CurrentSchemaVersion is the current schema version.
// Increment this when making breaking changes to the storage format.
const CurrentSchemaVersion = 2

var keySchemaVersion = []byte("schema_version")

// SchemaVersion returns the stored schema version, 0 for a new file.
func (s *BoltStore) SchemaVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketMeta).Get(keySchemaVersion)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &version)
	})
	return version, err
}

// Migrate brings the file up to CurrentSchemaVersion. Files written by a
// newer version are refused.
func (s *BoltStore) Migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		return errors.Wrap(errors.ErrStorage, err, "reading schema version")
	}
	if version > CurrentSchemaVersion {
		return errors.Newf(errors.ErrStorage,
			"artifact store created by newer version (v%d > v%d)", version, CurrentSchemaVersion)
	}

	for v := version; v < CurrentSchemaVersion; v++ {
		if err := s.runMigration(v, v+1); err != nil {
			return errors.Wrapf(errors.ErrStorage, err, "migration from v%d to v%d failed", v, v+1)
		}
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(CurrentSchemaVersion)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, data)
	})
}

// runMigration runs a specific version migration.
func (s *BoltStore) runMigration(from, to int) error {
	switch {
	case from == 0 && to == 1:
		return nil
	case from == 1 && to == 2:
		// v2 indexes the latest run of every collection.
		return s.db.Update(func(tx *bbolt.Tx) error {
			idx, err := tx.CreateBucketIfNotExists(bucketCollections)
			if err != nil {
				return err
			}
			return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
				var run domain.IngestionRun
				if err := json.Unmarshal(v, &run); err != nil {
					return fmt.Errorf("decoding run %s: %w", k, err)
				}
				return idx.Put([]byte(run.Database+"."+run.Collection), append([]byte(nil), k...))
			})
		})
	default:
		return nil
	}
}

// ComputeConfigHash hashes the configuration that shapes the output files.
// Runs with different hashes are not comparable.
func ComputeConfigHash(cfg *config.Config) string {
	relevant := struct {
		Database       string   `json:"database"`
		Collection     string   `json:"collection"`
		NullMarker     string   `json:"null_marker"`
		SortKey        string   `json:"sort_key"`
		ExcludeColumns []string `json:"exclude_columns"`
		SplitRatio     float64  `json:"split_ratio"`
	}{
		Database:       cfg.Mongo.Database,
		Collection:     cfg.Ingestion.Collection,
		NullMarker:     cfg.Ingestion.NullMarker,
		SortKey:        cfg.Ingestion.SortKey,
		ExcludeColumns: cfg.Ingestion.ExcludeColumns,
		SplitRatio:     cfg.Ingestion.SplitRatio,
	}

	data, _ := json.Marshal(relevant)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
