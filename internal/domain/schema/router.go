package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/okian/spresults/internal/domain/flatten"
	"github.com/okian/spresults/internal/domain/model"
)

// Default router configuration constants. The default group paths are the
// document fields under the view row's doc prefix, joined with the separator.
const (
	defaultMaxDepth = 2
	docPrefix       = "doc"
)

// GroupKey identifies one output table.
type GroupKey struct {
	Command       string
	SchemaVersion string
}

// FileName is the CSV file the group is written to.
func (k GroupKey) FileName() string {
	return k.Command + "_" + k.SchemaVersion + ".csv"
}

// Routed is one record placed in its group, rendered in the group's column
// order.
type Routed struct {
	Key GroupKey
	// Header is set only for the first record of a group when the max depth
	// is zero.
	Header []string
	Values []string
	// Missing counts group columns the record lacks; Extra counts record
	// paths outside the group's columns. Neither is reconciled.
	Missing int
	Extra   int
	Pruned  int
}

// Mismatched reports whether the record's key set differs from its group's.
func (r Routed) Mismatched() bool {
	return r.Missing > 0 || r.Extra > 0
}

// Router groups flattened records. Column order for a group is fixed by the
// first record routed to it.
type Router struct {
	sep         string
	maxDepth    int
	commandPath string
	schemaPath  string
	columns     map[GroupKey][]string
}

// NewRouter creates a router with configuration options.
func NewRouter(opts ...Option) *Router {
	r := &Router{
		sep:      flatten.DefaultSeparator,
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.commandPath == "" {
		r.commandPath = docPrefix + r.sep + model.FieldCommand
	}
	if r.schemaPath == "" {
		r.schemaPath = docPrefix + r.sep + model.FieldSchemaVersion
	}
	r.columns = make(map[GroupKey][]string)
	return r
}

// Positional reports whether headers are emitted, which happens only when
// depth filtering is off.
func (r *Router) Positional() bool {
	return r.maxDepth == 0
}

// Key reads the group key of rec.
func (r *Router) Key(rec flatten.Record) (GroupKey, error) {
	cmd, ok := rec[r.commandPath]
	if !ok {
		return GroupKey{}, fmt.Errorf("%w: missing %q", ErrUngrouped, r.commandPath)
	}
	ver, ok := rec[r.schemaPath]
	if !ok {
		return GroupKey{}, fmt.Errorf("%w: missing %q", ErrUngrouped, r.schemaPath)
	}
	key := GroupKey{Command: model.Cell(cmd), SchemaVersion: model.Cell(ver)}
	if !safeName(key.Command) || !safeName(key.SchemaVersion) {
		return GroupKey{}, fmt.Errorf("%w: %q/%q is not a valid file name part", ErrUngrouped, key.Command, key.SchemaVersion)
	}
	return key, nil
}

// safeName reports whether v can be used in a file name inside the output
// directory.
func safeName(v string) bool {
	return v != "" && v != "." && v != ".." && !strings.ContainsAny(v, "/\\\x00")
}

// Route applies the depth filter to rec in place and renders it in its
// group's column order.
func (r *Router) Route(rec flatten.Record) (Routed, error) {
	key, err := r.Key(rec)
	if err != nil {
		return Routed{}, err
	}

	out := Routed{Key: key, Pruned: rec.Prune(r.maxDepth, r.sep)}

	cols, seen := r.columns[key]
	if !seen {
		cols = rec.Keys()
		r.columns[key] = cols
		if r.Positional() {
			out.Header = cols
		}
	}

	out.Values = make([]string, len(cols))
	present := 0
	for i, c := range cols {
		v, ok := rec[c]
		if !ok {
			out.Missing++
			continue
		}
		present++
		out.Values[i] = model.Cell(v)
	}
	out.Extra = len(rec) - present
	return out, nil
}

// Groups returns every group routed so far, ordered by command then schema
// version.
func (r *Router) Groups() []GroupKey {
	keys := make([]GroupKey, 0, len(r.columns))
	for k := range r.columns {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Command != keys[j].Command {
			return keys[i].Command < keys[j].Command
		}
		return keys[i].SchemaVersion < keys[j].SchemaVersion
	})
	return keys
}
