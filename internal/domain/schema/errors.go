package schema

import "errors"

// Sentinel error kinds for this package.
var (
	ErrUngrouped = errors.New("record has no schema group")
)
