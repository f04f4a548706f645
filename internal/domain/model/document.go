// Package model contains domain models passed between layers.
package model

import "strconv"

// Well-known document fields.
const (
	FieldID              = "_id"
	FieldSerial          = "serial"
	FieldCommand         = "command"
	FieldSchemaVersion   = "schema_version"
	FieldMCD             = "mcd"
	FieldRatedCurrent    = "pn_ma"
	FieldFirmwareVersion = "sugarplum_version"
	FieldStart           = "start"
	FieldEnd             = "end"
	FieldStages          = "stages"
	FieldSensors         = "sensors"
	FieldDisposition     = "disposition"
	FieldFixture         = "fixture"
	FieldSlot            = "slot"
)

// NotAvailable fills report cells whose source field is absent.
const NotAvailable = "NA"

// Document is one test-run record as decoded from the store. Numbers decode
// as float64, lists as []any and nested objects as map[string]any.
type Document map[string]any

// ID returns the document identifier, or "" when absent.
func (d Document) ID() string {
	s, _ := d[FieldID].(string)
	return s
}

// Has reports whether key is present at the top level.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Lookup walks path from the document root. See Lookup.
func (d Document) Lookup(path ...string) (any, bool) {
	return Lookup(map[string]any(d), path...)
}

// Lookup walks a decoded JSON tree. Map entries are addressed by key and list
// entries by decimal index.
func Lookup(node any, path ...string) (any, bool) {
	cur := node
	for _, p := range path {
		switch v := cur.(type) {
		case map[string]any:
			next, ok := v[p]
			if !ok {
				return nil, false
			}
			cur = next
		case Document:
			next, ok := v[p]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(p)
			if err != nil || i < 0 || i >= len(v) {
				return nil, false
			}
			cur = v[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// ViewRow is one row of a secondary-index range query with its document
// attached.
type ViewRow struct {
	ID    string
	Key   any
	Value any
	Doc   Document
}

// Tree returns the row as the nested mapping that default-mode reports walk,
// so document fields sit under the "doc" key.
func (r ViewRow) Tree() map[string]any {
	return map[string]any{
		"id":    r.ID,
		"key":   r.Key,
		"value": r.Value,
		"doc":   map[string]any(r.Doc),
	}
}
