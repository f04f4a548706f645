// Package scorecard aggregates stage durations and projects wear-cycle test time.
package scorecard

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithWearCycles sets how many program/erase/read cycles are projected.
func WithWearCycles(cycles int) Option {
	return func(a *Aggregator) {
		if cycles > 0 {
			a.wearCycles = cycles
		}
	}
}
