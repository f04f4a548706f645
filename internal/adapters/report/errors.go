package report

import "errors"

// ErrWrite is returned when a report file cannot be created or written.
var ErrWrite = errors.New("report write failed")
