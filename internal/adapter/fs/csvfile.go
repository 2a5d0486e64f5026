package fs

import (
	"bufio"
	"os"
	"path/filepath"

	"featurestore/internal/errors"
	"featurestore/internal/port"
	"featurestore/internal/table"
)

// CSVFiles reads and writes table snapshots as CSV files on local disk.
type CSVFiles struct{}

var (
	_ port.TableWriter = (*CSVFiles)(nil)
	_ port.TableReader = (*CSVFiles)(nil)
)

func NewCSVFiles() *CSVFiles {
	return &CSVFiles{}
}

// WriteTable writes t to path, creating parent directories as needed. The
// file is written beside the target and renamed over it, so readers never
// see a half-written snapshot.
func (CSVFiles) WriteTable(path string, t *table.Table) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrapf(errors.ErrStorage, err, "creating temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := table.WriteCSV(w, t); err != nil {
		tmp.Close()
		return errors.Wrapf(errors.ErrStorage, err, "writing %s", path)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return errors.Wrapf(errors.ErrStorage, err, "flushing %s", path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(errors.ErrStorage, err, "closing %s", path)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Wrapf(errors.ErrStorage, err, "setting mode on %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(errors.ErrStorage, err, "replacing %s", path)
	}
	return nil
}

// ReadTable loads a CSV snapshot written by WriteTable.
func (CSVFiles) ReadTable(path string) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStorage, err, "opening %s", path)
	}
	defer f.Close()

	t, err := table.ReadCSV(bufio.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(errors.ErrStorage, err, "reading %s", path)
	}
	return t, nil
}

// EnsureParentDir creates the directory that will hold path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrStorage, err, "creating directory %s", dir)
	}
	return nil
}
