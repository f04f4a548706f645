package source

import "errors"

// Sentinel kinds for source errors.
var (
	ErrQuery = errors.New("store query failed")
	ErrOpen  = errors.New("open source failed")
)
