// Package source defines the document source contract and its errors.
package source

import (
	"context"

	"github.com/okian/spresults/internal/domain/model"
)

// Range sentinels bracketing every second key component for one serial.
const (
	LowSentinel  = ""
	HighSentinel = "￰"
)

// Source answers range queries over the serial-number index.
type Source interface {
	// BySerial returns every row whose key lies between
	// [serial, LowSentinel] and [serial, HighSentinel], in index order, with
	// documents attached. Errors wrap ErrQuery.
	BySerial(ctx context.Context, serial string) ([]model.ViewRow, error)

	Close() error
}

// StartKey and EndKey build the range bounds for serial.
func StartKey(serial string) []any { return []any{serial, LowSentinel} }
func EndKey(serial string) []any   { return []any{serial, HighSentinel} }
