package service

import "errors"

var (
	// ErrNoSource is returned when Run is called without a document source.
	ErrNoSource = errors.New("no document source configured")

	// ErrNoSerials is returned when Run is called with no serial numbers.
	ErrNoSerials = errors.New("no serial numbers given")
)
