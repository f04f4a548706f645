package service

import (
	"github.com/okian/spresults/internal/adapters/source"
	"github.com/okian/spresults/internal/domain/dedupe"
	"github.com/okian/spresults/pkg/logger"
	"github.com/okian/spresults/pkg/metrics"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSource sets the document source queried per serial number.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. The package default is used otherwise.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithMetricsFile writes the metrics registry to path after each run.
func WithMetricsFile(path string) Option {
	return func(s *Service) {
		s.metricsFile = path
	}
}

// WithDeduper sets the seen-document tracker.
func WithDeduper(d dedupe.Deduper) Option {
	return func(s *Service) {
		if d != nil {
			s.deduper = d
		}
	}
}

// WithDedupe enables or disables skipping documents already processed in a run.
func WithDedupe(enabled bool) Option {
	return func(s *Service) {
		s.dedupe = enabled
	}
}

// WithOutputDir sets the directory receiving every CSV file.
func WithOutputDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.outputDir = dir
		}
	}
}

// WithMaxDepth sets the flattened path depth limit of the default report.
func WithMaxDepth(depth int) Option {
	return func(s *Service) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithSeparator sets the flattened path separator.
func WithSeparator(sep string) Option {
	return func(s *Service) {
		if sep != "" {
			s.separator = sep
		}
	}
}

// WithScoreTime selects the scorecard report.
func WithScoreTime(enabled bool) Option {
	return func(s *Service) {
		s.scoreTime = enabled
	}
}

// WithAnalyzeWatts selects the power report.
func WithAnalyzeWatts(enabled bool) Option {
	return func(s *Service) {
		s.analyzeWatts = enabled
	}
}
