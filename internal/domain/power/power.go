package power

import (
	"time"

	"github.com/okian/spresults/internal/domain/model"
)

// Sensor channel identity.
const (
	ChannelVoltage = "29"
	ChannelCurrent = "30"
	RailName       = "12.0V"
	UnitVolts      = "volts"
	UnitAmps       = "amps"
)

// Dispositions of runs that carry no usable power data.
const (
	DispositionFailed     = "failed"
	DispositionIncomplete = "incomplete"
)

// Reason explains why a document produced no row.
type Reason string

// Skip reasons.
const (
	ReasonNone        Reason = ""
	ReasonNoSensors   Reason = "no_sensors"
	ReasonDisposition Reason = "disposition"
	ReasonPMPNode     Reason = "pmp_node"
	ReasonNoLayout    Reason = "no_layout"
	ReasonChannel     Reason = "channel_identity"
)

// Recoverable reports whether the skip is a data problem worth a warning
// rather than an expected filter.
func (r Reason) Recoverable() bool {
	return r == ReasonPMPNode || r == ReasonNoLayout || r == ReasonChannel
}

// Header is the analyze_watts.csv header.
var Header = []string{
	"id", "serial", "command", "MA", "sugarplum_version", "fixture", "slot",
	"test time(Day:Hours:Minutes:Seconds)", "max_watts", "mean_watts", "median_watts",
	"voltage samples", "amperage samples",
}

// Layout is one place in the sensor tree where the power channels may live,
// given as a path below the "sensors" key.
type Layout struct {
	Name string
	Path []string
}

// DefaultLayouts are tried in order; the first yielding both channels wins.
var DefaultLayouts = []Layout{
	{Name: "direct", Path: []string{"1"}},
	{Name: "power", Path: []string{"power", "1"}},
}

// Channel holds one sensor channel's statistics.
type Channel struct {
	Name    string
	Units   string
	Max     float64
	Mean    float64
	Median  float64
	Samples any
}

// Row is one analyze_watts.csv line.
type Row struct {
	ID              string
	Serial          any
	Command         any
	RatedCurrent    any
	FirmwareVersion any
	Fixture         any
	Slot            any
	Elapsed         time.Duration
	MaxWatts        float64
	MeanWatts       float64
	MedianWatts     float64
	VoltageSamples  any
	AmperageSamples any
	// Layout names the sensor layout the channels were found in.
	Layout string
}

// Values renders the row in Header order.
func (r Row) Values() []string {
	return []string{
		r.ID, model.Cell(r.Serial), model.Cell(r.Command), model.Cell(r.RatedCurrent),
		model.Cell(r.FirmwareVersion), model.Cell(r.Fixture), model.Cell(r.Slot),
		model.FormatDuration(r.Elapsed),
		model.Cell(r.MaxWatts), model.Cell(r.MeanWatts), model.Cell(r.MedianWatts),
		model.Cell(r.VoltageSamples), model.Cell(r.AmperageSamples),
	}
}

// Result is the outcome of extracting one document. Reason is set when OK is
// false.
type Result struct {
	Row    Row
	OK     bool
	Reason Reason
}

// Extractor computes power rows.
type Extractor struct {
	layouts []Layout
}

// New creates an Extractor with configuration options.
func New(opts ...Option) *Extractor {
	e := &Extractor{layouts: DefaultLayouts}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract locates the 12V rail's voltage and current channels and multiplies
// their max, mean and median independently. Documents without usable sensor
// data yield a Result with a Reason; only an unparsable start or end
// timestamp is returned as an error.
func (e *Extractor) Extract(doc model.Document) (Result, error) {
	sensors, ok := doc[model.FieldSensors]
	if !ok {
		return Result{Reason: ReasonNoSensors}, nil
	}
	switch doc[model.FieldDisposition] {
	case DispositionFailed, DispositionIncomplete:
		return Result{Reason: ReasonDisposition}, nil
	}

	nodeType, ok := doc.Lookup(model.FieldMCD, "boards", "0", "pmp_nodes", "0", "capabilities", "type")
	if f, isNum := model.Float(nodeType); !ok || !isNum || f != 0 {
		return Result{Reason: ReasonPMPNode}, nil
	}

	volts, amps, layout, found := e.locate(sensors)
	if !found {
		return Result{Reason: ReasonNoLayout}, nil
	}
	if !volts.identifies(UnitVolts) || !amps.identifies(UnitAmps) {
		return Result{Reason: ReasonChannel}, nil
	}

	elapsed, err := model.Elapsed(doc[model.FieldStart], doc[model.FieldEnd])
	if err != nil {
		return Result{}, err
	}

	var rated any = model.NotAvailable
	if doc.Has(model.FieldMCD) {
		rated, _ = doc.Lookup(model.FieldMCD, model.FieldRatedCurrent)
	}

	return Result{OK: true, Row: Row{
		ID:              doc.ID(),
		Serial:          doc[model.FieldSerial],
		Command:         doc[model.FieldCommand],
		RatedCurrent:    rated,
		FirmwareVersion: doc[model.FieldFirmwareVersion],
		Fixture:         doc[model.FieldFixture],
		Slot:            doc[model.FieldSlot],
		Elapsed:         elapsed,
		MaxWatts:        amps.Max * volts.Max,
		MeanWatts:       amps.Mean * volts.Mean,
		MedianWatts:     amps.Median * volts.Median,
		VoltageSamples:  volts.Samples,
		AmperageSamples: amps.Samples,
		Layout:          layout,
	}}, nil
}

func (e *Extractor) locate(sensors any) (volts, amps Channel, layout string, ok bool) {
	for _, l := range e.layouts {
		board, found := model.Lookup(sensors, l.Path...)
		if !found {
			continue
		}
		v, vok := channel(board, ChannelVoltage)
		a, aok := channel(board, ChannelCurrent)
		if vok && aok {
			return v, a, l.Name, true
		}
	}
	return Channel{}, Channel{}, "", false
}

func channel(board any, id string) (Channel, bool) {
	node, ok := model.Lookup(board, id)
	if !ok {
		return Channel{}, false
	}
	m, ok := node.(map[string]any)
	if !ok {
		return Channel{}, false
	}
	c := Channel{Samples: m["samples"]}
	c.Name, _ = m["name"].(string)
	c.Units, _ = m["units"].(string)
	var okMax, okMean, okMedian bool
	c.Max, okMax = model.Float(m["max"])
	c.Mean, okMean = model.Float(m["mean"])
	c.Median, okMedian = model.Float(m["median"])
	_, hasSamples := m["samples"]
	return c, okMax && okMean && okMedian && hasSamples
}

// identifies accepts the channel when either its name is the 12V rail or its
// unit is the expected one.
func (c Channel) identifies(unit string) bool {
	return c.Name == RailName || c.Units == unit
}
