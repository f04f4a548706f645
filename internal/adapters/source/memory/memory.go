// Package memory implements an in-memory document source indexed by
// [serial, start], the same key the CouchDB view emits.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/okian/spresults/internal/adapters/source"
	"github.com/okian/spresults/internal/domain/model"
)

// Store implements source.Source over documents held in memory.
type Store struct {
	bySerial map[string][]model.ViewRow
}

// New creates a store holding docs.
func New(docs ...model.Document) *Store {
	s := &Store{bySerial: make(map[string][]model.ViewRow)}
	for _, d := range docs {
		s.Put(d)
	}
	return s
}

// Load reads a JSON file holding either an array of documents or a CouchDB
// rows export ({"rows":[{"doc":{...}}]}).
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrOpen, err)
	}
	docs, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrOpen, path, err)
	}
	return New(docs...), nil
}

func decode(data []byte) ([]model.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var docs []model.Document
		err := json.Unmarshal(trimmed, &docs)
		return docs, err
	}
	var export struct {
		Rows []struct {
			Doc model.Document `json:"doc"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(trimmed, &export); err != nil {
		return nil, err
	}
	docs := make([]model.Document, 0, len(export.Rows))
	for _, r := range export.Rows {
		if r.Doc != nil {
			docs = append(docs, r.Doc)
		}
	}
	return docs, nil
}

// Put indexes doc under its serial. Documents without a string serial are
// not indexed.
func (s *Store) Put(doc model.Document) {
	serial, ok := doc[model.FieldSerial].(string)
	if !ok {
		return
	}
	start := model.Cell(doc[model.FieldStart])
	row := model.ViewRow{ID: doc.ID(), Key: []any{serial, start}, Doc: doc}

	rows := append(s.bySerial[serial], row)
	sort.SliceStable(rows, func(i, j int) bool {
		return secondKey(rows[i]) < secondKey(rows[j])
	})
	s.bySerial[serial] = rows
}

func secondKey(r model.ViewRow) string {
	k, _ := r.Key.([]any)
	if len(k) < 2 {
		return ""
	}
	s, _ := k[1].(string)
	return s
}

// BySerial returns the rows indexed under serial in key order.
func (s *Store) BySerial(ctx context.Context, serial string) ([]model.ViewRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: serial %s: %v", source.ErrQuery, serial, err)
	}
	rows := s.bySerial[serial]
	out := make([]model.ViewRow, len(rows))
	copy(out, rows)
	return out, nil
}

// Len returns the number of indexed documents.
func (s *Store) Len() int {
	n := 0
	for _, rows := range s.bySerial {
		n += len(rows)
	}
	return n
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
