package store

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"featurestore/internal/domain"
	"featurestore/internal/errors"
	"featurestore/internal/port"
)

var (
	bucketRuns        = []byte("runs")
	bucketCollections = []byte("collections")
	bucketMeta        = []byte("meta")
)

// BoltStore keeps the ingestion run history in a bbolt file.
type BoltStore struct {
	db *bbolt.DB
}

var _ port.ArtifactStore = (*BoltStore)(nil)

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStorage, err, "opening artifact store %s", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketRuns, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrStorage, err, "initializing artifact store")
	}

	s := &BoltStore{db: db}
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// runKey orders runs by start time; bbolt iterates keys in byte order.
func runKey(run domain.IngestionRun) []byte {
	return []byte(fmt.Sprintf("%020d-%s", run.StartedAt.UnixNano(), run.ID))
}

// PutRun stores run, replacing any earlier record with the same start and ID.
func (s *BoltStore) PutRun(run domain.IngestionRun) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(run)
		if err != nil {
			return err
		}
		key := runKey(run)
		if err := tx.Bucket(bucketRuns).Put(key, data); err != nil {
			return err
		}
		return tx.Bucket(bucketCollections).Put([]byte(run.Database+"."+run.Collection), key)
	})
	return errors.Wrapf(errors.ErrStorage, err, "recording run %s", run.ID)
}

func (s *BoltStore) ListRuns(limit int) ([]domain.IngestionRun, error) {
	var runs []domain.IngestionRun
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketRuns).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var run domain.IngestionRun
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("decoding run %s: %w", k, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrStorage, err, "listing runs")
	}
	return runs, nil
}

// LastRun returns the newest run, or nil when none were recorded.
func (s *BoltStore) LastRun() (*domain.IngestionRun, error) {
	runs, err := s.ListRuns(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// LastRunFor returns the newest run of one collection, or nil.
func (s *BoltStore) LastRunFor(database, collection string) (*domain.IngestionRun, error) {
	var run *domain.IngestionRun
	err := s.db.View(func(tx *bbolt.Tx) error {
		key := tx.Bucket(bucketCollections).Get([]byte(database + "." + collection))
		if key == nil {
			return nil
		}
		data := tx.Bucket(bucketRuns).Get(key)
		if data == nil {
			return nil
		}
		run = &domain.IngestionRun{}
		return json.Unmarshal(data, run)
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStorage, err, "reading last run of %s.%s", database, collection)
	}
	return run, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
