// Package couch reads test documents from a CouchDB view.
package couch

import (
	"context"
	"fmt"

	kivik "github.com/go-kivik/kivik/v4"
	_ "github.com/go-kivik/kivik/v4/couchdb" // CouchDB driver

	"github.com/okian/spresults/internal/adapters/source"
	"github.com/okian/spresults/internal/domain/model"
)

// Default view location.
const (
	defaultDesignDoc = "sugarplum"
	defaultView      = "byserial"
)

// Option configures the Store.
type Option func(*Store)

// WithView sets the design document and view holding the serial index.
func WithView(designDoc, view string) Option {
	return func(s *Store) {
		if designDoc != "" {
			s.designDoc = designDoc
		}
		if view != "" {
			s.view = view
		}
	}
}

// Store implements source.Source over a CouchDB database.
type Store struct {
	client    *kivik.Client
	db        *kivik.DB
	designDoc string
	view      string
}

// New connects to the server at uri and selects database name. No request is
// made until the first query.
func New(uri, name string, opts ...Option) (*Store, error) {
	s := &Store{designDoc: defaultDesignDoc, view: defaultView}
	for _, opt := range opts {
		opt(s)
	}

	client, err := kivik.New("couch", uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrOpen, uri, err)
	}
	db := client.DB(name)
	if err := db.Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: database %s: %v", source.ErrOpen, name, err)
	}
	s.client = client
	s.db = db
	return s, nil
}

// BySerial queries the view for every row keyed by serial with
// include_docs=true.
func (s *Store) BySerial(ctx context.Context, serial string) ([]model.ViewRow, error) {
	rs := s.db.Query(ctx, "_design/"+s.designDoc, "_view/"+s.view, kivik.Params(map[string]interface{}{
		"startkey":     source.StartKey(serial),
		"endkey":       source.EndKey(serial),
		"include_docs": true,
	}))
	defer rs.Close()

	var rows []model.ViewRow
	for rs.Next() {
		row := model.ViewRow{}
		var err error
		if row.ID, err = rs.ID(); err != nil {
			return nil, fmt.Errorf("%w: serial %s: row id: %v", source.ErrQuery, serial, err)
		}
		if err := rs.ScanKey(&row.Key); err != nil {
			return nil, fmt.Errorf("%w: serial %s: row %s key: %v", source.ErrQuery, serial, row.ID, err)
		}
		if err := rs.ScanValue(&row.Value); err != nil {
			return nil, fmt.Errorf("%w: serial %s: row %s value: %v", source.ErrQuery, serial, row.ID, err)
		}
		if err := rs.ScanDoc(&row.Doc); err != nil {
			return nil, fmt.Errorf("%w: serial %s: row %s doc: %v", source.ErrQuery, serial, row.ID, err)
		}
		rows = append(rows, row)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("%w: serial %s: %v", source.ErrQuery, serial, err)
	}
	return rows, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}
