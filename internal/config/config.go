// Package config defines run configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and SPRESULTS_* environment variables on top.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// DBURI is the CouchDB server URL and DBName the results database.
	DBURI  string `koanf:"db_uri"`
	DBName string `koanf:"db_name"`

	// DesignDoc and View name the secondary index keyed by serial number.
	DesignDoc string `koanf:"design_doc"`
	View      string `koanf:"view"`

	// MaxDepth drops flattened paths with more separators. 0 keeps every
	// path and writes a header per table.
	MaxDepth int `koanf:"max_depth"`

	// Separator joins flattened path components.
	Separator string `koanf:"separator"`

	// ScoreTime and AnalyzeWatts select the analytics reports.
	ScoreTime    bool `koanf:"score_time"`
	AnalyzeWatts bool `koanf:"analyze_watts"`

	// OutputDir receives every CSV file.
	OutputDir string `koanf:"output_dir"`

	// SourceFile, when set, reads documents from a JSON dump instead of CouchDB.
	SourceFile string `koanf:"source_file"`

	// MetricsFile, when set, receives a Prometheus textfile after the run.
	MetricsFile string `koanf:"metrics_file"`

	// DedupeDocuments skips documents already processed in this run.
	DedupeDocuments bool `koanf:"dedupe_documents"`

	// DedupeMaxSize bounds the remembered document IDs. 0 means unbounded.
	DedupeMaxSize int `koanf:"dedupe_max_size"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		DBURI:           "http://localhost:5984/",
		DBName:          "sugarplum",
		DesignDoc:       "sugarplum",
		View:            "byserial",
		MaxDepth:        2,
		Separator:       ">",
		OutputDir:       ".",
		DedupeDocuments: true,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max_depth must not be negative", ErrInvalidConfig)
	case c.DedupeMaxSize < 0:
		return fmt.Errorf("%w: dedupe_max_size must not be negative", ErrInvalidConfig)
	case c.Separator == "":
		return fmt.Errorf("%w: separator must not be empty", ErrInvalidConfig)
	case c.OutputDir == "":
		return fmt.Errorf("%w: output_dir must not be empty", ErrInvalidConfig)
	case c.SourceFile != "":
		return nil
	case c.DBURI == "":
		return fmt.Errorf("%w: db_uri must not be empty", ErrInvalidConfig)
	case c.DBName == "":
		return fmt.Errorf("%w: db_name must not be empty", ErrInvalidConfig)
	case c.DesignDoc == "" || c.View == "":
		return fmt.Errorf("%w: design_doc and view must not be empty", ErrInvalidConfig)
	}
	return nil
}
