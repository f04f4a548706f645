package model

import "errors"

// Sentinel error kinds for this package.
var (
	ErrTimestamp = errors.New("invalid timestamp")
)
