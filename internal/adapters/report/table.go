// Package report persists rows as CSV files: fixed-header tables for the
// analytics reports and one lazily opened file per schema group.
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Report file names.
const (
	ScoreTimeFile    = "score_time.csv"
	AnalyzeWattsFile = "analyze_watts.csv"
)

// Table is a CSV file with a header written on open.
type Table struct {
	path string
	f    *os.File
	w    *csv.Writer
	rows int
}

// OpenTable creates dir/name, truncating an existing file, and writes header.
func OpenTable(dir, name string, header []string) (*Table, error) {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	t := &Table{path: path, f: f, w: csv.NewWriter(f)}
	if err := t.write(header); err != nil {
		_ = f.Close()
		return nil, err
	}
	return t, nil
}

// Write appends one row and flushes it.
func (t *Table) Write(values []string) error {
	if err := t.write(values); err != nil {
		return err
	}
	t.rows++
	return nil
}

func (t *Table) write(values []string) error {
	if err := t.w.Write(values); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, t.path, err)
	}
	t.w.Flush()
	if err := t.w.Error(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, t.path, err)
	}
	return nil
}

// Path returns the file location.
func (t *Table) Path() string { return t.path }

// Rows returns the number of rows written after the header.
func (t *Table) Rows() int { return t.rows }

// Close flushes and closes the file. It is safe to call more than once.
func (t *Table) Close() error {
	if t == nil || t.f == nil {
		return nil
	}
	t.w.Flush()
	err := errors.Join(t.w.Error(), t.f.Close())
	t.f = nil
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, t.path, err)
	}
	return nil
}
