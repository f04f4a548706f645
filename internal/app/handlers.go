package service

import (
	"context"
	"errors"

	"github.com/okian/spresults/internal/adapters/report"
	"github.com/okian/spresults/internal/domain/flatten"
	"github.com/okian/spresults/internal/domain/model"
	"github.com/okian/spresults/internal/domain/power"
	"github.com/okian/spresults/internal/domain/schema"
	"github.com/okian/spresults/internal/domain/scorecard"
	"github.com/okian/spresults/pkg/logger"
	"github.com/okian/spresults/pkg/metrics"
)

const (
	skipNoMCD      = "no_mcd"
	skipIncomplete = "incomplete_stages"
	skipUngrouped  = "ungrouped"
	reportGrouped  = "grouped"
)

type scoreHandler struct {
	agg     *scorecard.Aggregator
	table   *report.Table
	metrics *metrics.Manager
	log     logger.Logger
}

func newScoreHandler(s *Service, log logger.Logger) (*scoreHandler, error) {
	agg := scorecard.New()
	table, err := report.OpenTable(s.outputDir, report.ScoreTimeFile, agg.Header())
	if err != nil {
		return nil, err
	}
	return &scoreHandler{agg: agg, table: table, metrics: s.metrics, log: log}, nil
}

func (h *scoreHandler) handle(ctx context.Context, row model.ViewRow) (bool, error) {
	doc := row.Doc
	if doc == nil {
		h.metrics.DocumentSkipped(skipNoDoc)
		return false, nil
	}
	if !doc.Has(model.FieldMCD) {
		h.log.Debug(ctx, "document has no mcd block", logger.DocID(doc.ID()))
		h.metrics.DocumentSkipped(skipNoMCD)
		return false, nil
	}

	rated, _ := doc.Lookup(model.FieldMCD, model.FieldRatedCurrent)
	stages, _ := doc[model.FieldStages].([]any)
	res, err := h.agg.Aggregate(scorecard.Input{
		ID:              doc.ID(),
		Serial:          model.Cell(doc[model.FieldSerial]),
		Command:         model.Cell(doc[model.FieldCommand]),
		RatedCurrent:    rated,
		FirmwareVersion: doc[model.FieldFirmwareVersion],
		Start:           doc[model.FieldStart],
		Stages:          stages,
	})
	if err != nil {
		return false, err
	}

	for _, idx := range res.Malformed {
		h.log.Warn(ctx, "malformed stage skipped", logger.DocID(doc.ID()), logger.Int("stage", idx))
	}
	if n := len(res.Malformed); n > 0 {
		h.metrics.MalformedStages(n)
	}
	if !res.OK {
		h.log.Debug(ctx, "wear stages incomplete", logger.DocID(doc.ID()))
		h.metrics.DocumentSkipped(skipIncomplete)
		return false, nil
	}

	if err := h.table.Write(res.Row.Values()); err != nil {
		return false, err
	}
	h.metrics.RowWritten(string(ModeScoreTime))
	return true, nil
}

func (h *scoreHandler) files() []string { return []string{h.table.Path()} }
func (h *scoreHandler) close() error    { return h.table.Close() }

type wattsHandler struct {
	ext     *power.Extractor
	table   *report.Table
	metrics *metrics.Manager
	log     logger.Logger
}

func newWattsHandler(s *Service, log logger.Logger) (*wattsHandler, error) {
	table, err := report.OpenTable(s.outputDir, report.AnalyzeWattsFile, power.Header)
	if err != nil {
		return nil, err
	}
	return &wattsHandler{ext: power.New(), table: table, metrics: s.metrics, log: log}, nil
}

func (h *wattsHandler) handle(ctx context.Context, row model.ViewRow) (bool, error) {
	if row.Doc == nil {
		h.metrics.DocumentSkipped(skipNoDoc)
		return false, nil
	}
	res, err := h.ext.Extract(row.Doc)
	if err != nil {
		return false, err
	}
	if !res.OK {
		fields := []logger.Field{logger.DocID(row.Doc.ID()), logger.String("reason", string(res.Reason))}
		if res.Reason.Recoverable() {
			h.log.Warn(ctx, "power data unusable", fields...)
		} else {
			h.log.Debug(ctx, "document excluded from power report", fields...)
		}
		h.metrics.DocumentSkipped(string(res.Reason))
		return false, nil
	}

	if err := h.table.Write(res.Row.Values()); err != nil {
		return false, err
	}
	h.metrics.RowWritten(string(ModeAnalyzeWatts))
	return true, nil
}

func (h *wattsHandler) files() []string { return []string{h.table.Path()} }
func (h *wattsHandler) close() error    { return h.table.Close() }

type groupHandler struct {
	sep     string
	router  *schema.Router
	writer  *report.GroupWriter
	metrics *metrics.Manager
	log     logger.Logger
}

func newGroupHandler(s *Service, log logger.Logger) *groupHandler {
	return &groupHandler{
		sep:     s.separator,
		router:  schema.NewRouter(schema.WithSeparator(s.separator), schema.WithMaxDepth(s.maxDepth)),
		writer:  report.NewGroupWriter(s.outputDir),
		metrics: s.metrics,
		log:     log,
	}
}

func (h *groupHandler) handle(ctx context.Context, row model.ViewRow) (bool, error) {
	rec := flatten.Flatten(row.Tree(), h.sep)
	routed, err := h.router.Route(rec)
	if errors.Is(err, schema.ErrUngrouped) {
		h.log.Warn(ctx, "document has no schema group", logger.DocID(row.ID), logger.Error(err))
		h.metrics.DocumentSkipped(skipUngrouped)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if routed.Mismatched() {
		h.log.Warn(ctx, "record keys differ from group header",
			logger.DocID(row.ID),
			logger.String("group", routed.Key.FileName()),
			logger.Int("missing", routed.Missing),
			logger.Int("extra", routed.Extra),
		)
	}

	if err := h.writer.Write(routed); err != nil {
		return false, err
	}
	h.metrics.RowWritten(reportGrouped)
	return true, nil
}

func (h *groupHandler) files() []string { return h.writer.Files() }

func (h *groupHandler) close() error {
	h.metrics.SchemaGroups(len(h.router.Groups()))
	return h.writer.Close()
}
