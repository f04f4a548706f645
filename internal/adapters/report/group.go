package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/okian/spresults/internal/domain/schema"
)

type groupFile struct {
	f *os.File
	w *csv.Writer
}

// GroupWriter keeps one CSV file per schema group under dir. A group's file
// is created on its first record.
type GroupWriter struct {
	dir   string
	files map[schema.GroupKey]*groupFile
}

// NewGroupWriter creates a writer rooted at dir.
func NewGroupWriter(dir string) *GroupWriter {
	return &GroupWriter{dir: dir, files: make(map[schema.GroupKey]*groupFile)}
}

// Write appends a routed record to its group's file, preceded by the header
// when one is present, and flushes.
func (g *GroupWriter) Write(r schema.Routed) error {
	gf, err := g.open(r.Key)
	if err != nil {
		return err
	}
	if r.Header != nil {
		if err := gf.w.Write(r.Header); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrWrite, r.Key.FileName(), err)
		}
	}
	if err := gf.w.Write(r.Values); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, r.Key.FileName(), err)
	}
	gf.w.Flush()
	if err := gf.w.Error(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, r.Key.FileName(), err)
	}
	return nil
}

func (g *GroupWriter) open(key schema.GroupKey) (*groupFile, error) {
	if gf, ok := g.files[key]; ok {
		return gf, nil
	}
	f, err := os.Create(filepath.Join(g.dir, key.FileName()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrite, err)
	}
	gf := &groupFile{f: f, w: csv.NewWriter(f)}
	g.files[key] = gf
	return gf, nil
}

// Files returns the paths of every opened group file, sorted.
func (g *GroupWriter) Files() []string {
	out := make([]string, 0, len(g.files))
	for key := range g.files {
		out = append(out, filepath.Join(g.dir, key.FileName()))
	}
	sort.Strings(out)
	return out
}

// Close flushes and closes every group file.
func (g *GroupWriter) Close() error {
	var errs []error
	for key, gf := range g.files {
		gf.w.Flush()
		if err := errors.Join(gf.w.Error(), gf.f.Close()); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key.FileName(), err))
		}
		delete(g.files, key)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
