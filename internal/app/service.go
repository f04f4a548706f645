// Package service runs a batch over serial numbers: it queries the document
// source, hands each document to the selected report and persists the rows.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/spresults/internal/adapters/source"
	"github.com/okian/spresults/internal/domain/dedupe"
	"github.com/okian/spresults/internal/domain/flatten"
	"github.com/okian/spresults/internal/domain/model"
	"github.com/okian/spresults/pkg/logger"
	"github.com/okian/spresults/pkg/metrics"
)

// Mode selects the report produced by a run.
type Mode string

const (
	ModeDefault      Mode = "default"
	ModeScoreTime    Mode = "score_time"
	ModeAnalyzeWatts Mode = "analyze_watts"
)

// Skip reasons not owned by a domain package.
const (
	skipDuplicate = "duplicate"
	skipNoDoc     = "no_document"
)

// Summary describes a finished run.
type Summary struct {
	RunID     string
	Mode      Mode
	Documents int
	Skipped   int
	Rows      int
	Files     []string
}

// Service runs report batches against a document source.
type Service struct {
	source      source.Source
	deduper     dedupe.Deduper
	metrics     *metrics.Manager
	metricsFile string
	logger      logger.Logger

	outputDir    string
	separator    string
	maxDepth     int
	scoreTime    bool
	analyzeWatts bool
	dedupe       bool
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		outputDir: ".",
		separator: flatten.DefaultSeparator,
		maxDepth:  2,
		dedupe:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.metrics == nil {
		s.metrics = metrics.Default()
	}
	if s.deduper == nil {
		s.deduper = dedupe.NewTracker()
	}
	return s
}

// Mode returns the report selected by the options. Score-time wins over
// analyze-watts.
func (s *Service) Mode() Mode {
	switch {
	case s.scoreTime:
		return ModeScoreTime
	case s.analyzeWatts:
		return ModeAnalyzeWatts
	default:
		return ModeDefault
	}
}

// handler consumes the documents of one run.
type handler interface {
	handle(ctx context.Context, row model.ViewRow) (written bool, err error)
	files() []string
	close() error
}

// Run queries each serial in order and writes the selected report. Store
// failures and unparsable timestamps abort the run; every other per-document
// problem is logged and the document skipped.
func (s *Service) Run(ctx context.Context, serials []string) (sum Summary, err error) {
	if s.source == nil {
		return sum, ErrNoSource
	}
	if len(serials) == 0 {
		return sum, ErrNoSerials
	}

	s.deduper.Reset()
	sum.RunID = uuid.NewString()
	sum.Mode = s.Mode()
	log := s.logger.With(logger.String("run_id", sum.RunID), logger.String("mode", string(sum.Mode)))
	started := time.Now()

	h, err := s.handler(sum.Mode, log)
	if err != nil {
		return sum, err
	}
	defer func() {
		sum.Files = h.files()
		err = errors.Join(err, h.close())
		s.metrics.RunDuration(time.Since(started).Seconds())
		if s.metricsFile != "" {
			if werr := s.metrics.WriteTextfile(s.metricsFile); werr != nil {
				log.Warn(ctx, "metrics textfile not written", logger.Error(werr))
			}
		}
	}()

	log.Info(ctx, "run started", logger.Strings("serials", serials))
	for _, serial := range serials {
		queried := time.Now()
		rows, qerr := s.source.BySerial(ctx, serial)
		s.metrics.QueryLatency(float64(time.Since(queried).Microseconds()) / 1000)
		if qerr != nil {
			s.metrics.QueryError()
			return sum, fmt.Errorf("serial %s: %w", serial, qerr)
		}
		log.Debug(ctx, "serial queried", logger.String("serial", serial), logger.Int("rows", len(rows)))

		for _, row := range rows {
			id := row.ID
			if id == "" {
				id = row.Doc.ID()
			}
			if s.dedupe && s.deduper.SeenAndRecord(ctx, id) {
				log.Debug(ctx, "document already processed", logger.DocID(id))
				s.metrics.DocumentSkipped(skipDuplicate)
				sum.Skipped++
				continue
			}
			s.metrics.DocumentFetched(string(sum.Mode))
			sum.Documents++

			written, herr := h.handle(ctx, row)
			if herr != nil {
				return sum, fmt.Errorf("document %s: %w", id, herr)
			}
			if written {
				sum.Rows++
			} else {
				sum.Skipped++
			}
		}
	}

	log.Info(ctx, "run finished",
		logger.Int("documents", sum.Documents),
		logger.Int("rows", sum.Rows),
		logger.Int("skipped", sum.Skipped),
		logger.Float64("seconds", time.Since(started).Seconds()),
	)
	return sum, nil
}

func (s *Service) handler(mode Mode, log logger.Logger) (handler, error) {
	switch mode {
	case ModeScoreTime:
		return newScoreHandler(s, log)
	case ModeAnalyzeWatts:
		return newWattsHandler(s, log)
	default:
		return newGroupHandler(s, log), nil
	}
}
