// Package flatten converts nested documents into path-keyed scalar records.
package flatten

import (
	"sort"
	"strconv"
	"strings"

	"github.com/okian/spresults/internal/domain/model"
)

// DefaultSeparator joins path components.
const DefaultSeparator = ">"

// Record maps a path to the scalar found there. No value is a list or map.
type Record map[string]any

// Flatten walks doc depth-first and emits one entry per terminal scalar. List
// elements use their decimal index as path component. Empty lists and maps
// contribute nothing.
func Flatten(doc map[string]any, sep string) Record {
	out := make(Record)
	walkMap(out, doc, sep, "")
	return out
}

func walkMap(out Record, m map[string]any, sep, prefix string) {
	for k, v := range m {
		walk(out, v, sep, prefix+k)
	}
}

func walk(out Record, v any, sep, path string) {
	switch x := v.(type) {
	case map[string]any:
		walkMap(out, x, sep, path+sep)
	case model.Document:
		walkMap(out, x, sep, path+sep)
	case []any:
		for i, e := range x {
			walk(out, e, sep, path+sep+strconv.Itoa(i))
		}
	default:
		out[path] = v
	}
}

// Depth returns the number of separators in path.
func Depth(path, sep string) int {
	return strings.Count(path, sep)
}

// Keys returns the record's paths in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prune drops every path deeper than maxDepth separators and returns the
// number of paths removed. maxDepth <= 0 leaves the record untouched.
func (r Record) Prune(maxDepth int, sep string) int {
	if maxDepth <= 0 {
		return 0
	}
	dropped := 0
	for k := range r {
		if Depth(k, sep) > maxDepth {
			delete(r, k)
			dropped++
		}
	}
	return dropped
}
