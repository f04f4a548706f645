// Package schema routes flattened records into per-(command, schema-version) tables.
package schema

// Option applies a configuration option to the Router.
type Option func(*Router)

// WithSeparator sets the path separator the records were flattened with.
func WithSeparator(sep string) Option {
	return func(r *Router) {
		if sep != "" {
			r.sep = sep
		}
	}
}

// WithMaxDepth sets the depth filter. A positive depth drops deeper paths;
// zero disables filtering and turns on header emission.
func WithMaxDepth(depth int) Option {
	return func(r *Router) {
		if depth >= 0 {
			r.maxDepth = depth
		}
	}
}

// WithGroupPaths sets the flattened paths holding the command and schema
// version.
func WithGroupPaths(commandPath, schemaPath string) Option {
	return func(r *Router) {
		if commandPath != "" {
			r.commandPath = commandPath
		}
		if schemaPath != "" {
			r.schemaPath = schemaPath
		}
	}
}
