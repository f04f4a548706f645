package model

import (
	"fmt"
	"time"
)

// TimestampLayout is the layout of every start/end timestamp in test documents.
const TimestampLayout = "2006/01/02 15:04:05 UTC"

// parseLayout accepts TimestampLayout as well as unpadded month, day, hour,
// minute and second fields.
const parseLayout = "2006/1/2 15:4:5 UTC"

const secondsPerDay = 24 * 60 * 60

// ParseTimestamp parses a document timestamp. Non-string values and strings
// not matching TimestampLayout yield an error wrapping ErrTimestamp.
func ParseTimestamp(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %v is not a string", ErrTimestamp, v)
	}
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrTimestamp, s, err)
	}
	return t, nil
}

// Elapsed parses both timestamps and returns end - start.
func Elapsed(start, end any) (time.Duration, error) {
	s, err := ParseTimestamp(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseTimestamp(end)
	if err != nil {
		return 0, err
	}
	return e.Sub(s), nil
}

// FormatDuration renders d as days:hours:minutes:seconds. Fractional seconds
// are floored away, so negative durations borrow a whole day like
// -1:23:59:59 for minus one second.
func FormatDuration(d time.Duration) string {
	secs := int64(d / time.Second)
	if d%time.Second < 0 {
		secs--
	}
	days := secs / secondsPerDay
	rem := secs % secondsPerDay
	if rem < 0 {
		rem += secondsPerDay
		days--
	}
	return fmt.Sprintf("%d:%d:%d:%d", days, rem/3600, rem%3600/60, rem%60)
}
