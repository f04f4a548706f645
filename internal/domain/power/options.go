// Package power derives wattage statistics from a document's sensor tree.
package power

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithLayouts replaces the ordered list of sensor tree layouts to try.
func WithLayouts(layouts ...Layout) Option {
	return func(e *Extractor) {
		if len(layouts) > 0 {
			e.layouts = layouts
		}
	}
}
