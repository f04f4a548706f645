package scorecard

import (
	"fmt"
	"time"

	"github.com/okian/spresults/internal/domain/model"
)

// Stage names tracked for wear projection, and the command that skips it.
const (
	StageProgram     = "program lebs"
	StageErase       = "erase lebs"
	StageRead        = "read lebs"
	CommandProvision = "Provision"

	defaultWearCycles = 20
)

// Header returns the score_time.csv header for the configured cycle count.
func (a *Aggregator) Header() []string {
	return []string{
		"_uid", "serial", "command", "MA", "sugarplum_version", "start time",
		"test time without P/E cycles",
		"max_program_lebs", "max_erase_lebs", "max_read_lebs",
		fmt.Sprintf("MAX total_test_time with %d PE cycles", a.wearCycles),
		"avg_program_lebs", "avg_erase_lebs", "avg_read_lebs",
		fmt.Sprintf("AVG total_test_time with %d PE cycles", a.wearCycles),
	}
}

// Input carries the document fields the aggregation needs.
type Input struct {
	ID              string
	Serial          string
	Command         string
	RatedCurrent    any
	FirmwareVersion any
	Start           any
	Stages          []any
}

// Projection holds the wear-cycle fields of a non-Provision row.
type Projection struct {
	MaxProgram time.Duration
	MaxErase   time.Duration
	MaxRead    time.Duration
	MaxTotal   time.Duration
	AvgProgram time.Duration
	AvgErase   time.Duration
	AvgRead    time.Duration
	AvgTotal   time.Duration
}

// Row is one score_time.csv line. Projection is nil for Provision runs.
type Row struct {
	ID              string
	Serial          string
	Command         string
	RatedCurrent    any
	FirmwareVersion any
	Start           any
	Total           time.Duration
	Projection      *Projection
}

// Values renders the row in header order. Averages keep their raw duration
// form; every other duration is days:hours:minutes:seconds.
func (r Row) Values() []string {
	out := []string{
		r.ID, r.Serial, r.Command,
		model.Cell(r.RatedCurrent), model.Cell(r.FirmwareVersion), model.Cell(r.Start),
		model.FormatDuration(r.Total),
	}
	if p := r.Projection; p != nil {
		out = append(out,
			model.FormatDuration(p.MaxProgram),
			model.FormatDuration(p.MaxErase),
			model.FormatDuration(p.MaxRead),
			model.FormatDuration(p.MaxTotal),
			p.AvgProgram.String(),
			p.AvgErase.String(),
			p.AvgRead.String(),
			model.FormatDuration(p.AvgTotal),
		)
	}
	return out
}

// Result is the outcome of aggregating one document. OK is false when the
// document lacks the wear stages needed for a projection.
type Result struct {
	Row Row
	OK  bool
	// Malformed lists indices of stages missing name, start or end.
	Malformed []int
}

type stageTotals struct {
	total time.Duration
	count int
}

func (s *stageTotals) average() time.Duration {
	return s.total / time.Duration(s.count)
}

// Aggregator computes scorecard rows.
type Aggregator struct {
	wearCycles int
}

// New creates an Aggregator with configuration options.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{wearCycles: defaultWearCycles}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Aggregate sums stage durations per stage name and, for non-Provision runs,
// projects total test time with the configured number of wear cycles using
// both the longest and the average program/erase/read stage. A stage
// timestamp that does not parse aborts with an error wrapping
// model.ErrTimestamp.
func (a *Aggregator) Aggregate(in Input) (Result, error) {
	res := Result{Row: Row{
		ID:              in.ID,
		Serial:          in.Serial,
		Command:         in.Command,
		RatedCurrent:    in.RatedCurrent,
		FirmwareVersion: in.FirmwareVersion,
		Start:           in.Start,
	}}

	totals := make(map[string]*stageTotals)
	maxima := map[string]time.Duration{StageProgram: 0, StageErase: 0, StageRead: 0}

	for i, raw := range in.Stages {
		stage, ok := raw.(map[string]any)
		if !ok {
			res.Malformed = append(res.Malformed, i)
			continue
		}
		name, hasName := stage["name"]
		start, hasStart := stage["start"]
		end, hasEnd := stage["end"]
		if !hasName || !hasStart || !hasEnd {
			res.Malformed = append(res.Malformed, i)
			continue
		}

		delta, err := model.Elapsed(start, end)
		if err != nil {
			return Result{}, err
		}

		n := model.Cell(name)
		if cur, tracked := maxima[n]; tracked && delta > cur {
			maxima[n] = delta
		}
		t, ok := totals[n]
		if !ok {
			t = &stageTotals{}
			totals[n] = t
		}
		t.total += delta
		t.count++
	}

	// Wear stages are part of the base total as well.
	for _, t := range totals {
		res.Row.Total += t.total
	}

	if in.Command == CommandProvision {
		res.OK = true
		return res, nil
	}

	prog, erase, read := totals[StageProgram], totals[StageErase], totals[StageRead]
	if maxima[StageProgram] == 0 || maxima[StageErase] == 0 || maxima[StageRead] == 0 ||
		prog == nil || erase == nil || read == nil {
		return res, nil
	}

	cycles := time.Duration(a.wearCycles)
	p := &Projection{
		MaxProgram: maxima[StageProgram],
		MaxErase:   maxima[StageErase],
		MaxRead:    maxima[StageRead],
		AvgProgram: prog.average(),
		AvgErase:   erase.average(),
		AvgRead:    read.average(),
	}
	p.MaxTotal = res.Row.Total + cycles*(p.MaxProgram+p.MaxErase+p.MaxRead)
	p.AvgTotal = res.Row.Total + cycles*(p.AvgProgram+p.AvgErase+p.AvgRead)

	res.Row.Projection = p
	res.OK = true
	return res, nil
}
