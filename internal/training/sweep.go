package training

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/banshee-data/traingen/internal/config"
	"github.com/banshee-data/traingen/internal/units"
)

// Params are the resolved sweep settings.
type Params struct {
	Floor       float64 // radians
	Ceiling     float64 // radians
	Threshold   float64 // radians
	Step        float64
	Precision   int
	ClockStepMs int64
	Format      ValueFormat
}

// NewParams resolves a validated GeneratorConfig into Params.
func NewParams(cfg *config.GeneratorConfig) (Params, error) {
	if err := cfg.Validate(); err != nil {
		return Params{}, err
	}
	format, err := ParseValueFormat(cfg.GetValueFormat())
	if err != nil {
		return Params{}, err
	}
	return Params{
		Floor:       cfg.GetFloor(),
		Ceiling:     cfg.GetCeiling(),
		Threshold:   cfg.GetElevationThreshold(),
		Step:        cfg.GetStep(),
		Precision:   cfg.GetPrecision(),
		ClockStepMs: cfg.GetClockStepMs(),
		Format:      format,
	}, nil
}

// DefaultParams returns Params built from the built-in defaults.
func DefaultParams() Params {
	p, err := NewParams(config.EmptyGeneratorConfig())
	if err != nil {
		panic(fmt.Sprintf("built-in generator defaults are invalid: %v", err))
	}
	return p
}

// State is the sweep position between passes.
type State struct {
	Value       float64
	Increasing  bool
	TimestampMs int64
}

// Start returns the state of the first pass with the simulated clock at
// startMs.
func (p Params) Start(startMs int64) State {
	return State{Value: p.Floor, Increasing: true, TimestampMs: startMs}
}

// Next runs one pass of the sweep. The value is rounded first; a rounded
// value below the floor ends the sweep and Next returns ok=false with the
// clock left where it was. Otherwise the labeled command is returned along
// with the state for the next pass, the clock advanced by ClockStepMs.
//
// The direction flips on the first pass whose value is at or above the
// ceiling and never flips back.
func (p Params) Next(s State) (cmd Command, next State, ok bool) {
	v := units.RoundDecimal(s.Value, p.Precision)
	if v < p.Floor {
		return Command{}, State{Value: v, Increasing: s.Increasing, TimestampMs: s.TimestampMs}, false
	}

	cmd = Command{
		Label:       Classify(v, p.Threshold),
		Value:       v,
		TimestampMs: s.TimestampMs,
	}

	next = State{Increasing: s.Increasing, TimestampMs: s.TimestampMs + p.ClockStepMs}
	if v < p.Ceiling && s.Increasing {
		next.Value = v + p.Step
	} else {
		next.Increasing = false
		next.Value = v - p.Step
	}
	return cmd, next, true
}

// ExpectedLineCount returns the number of commands a sweep emits when floor
// and step sit on the precision grid: k steps up to the peak, k steps back
// down, and the peak itself once.
func (p Params) ExpectedLineCount() int {
	n := (p.Ceiling - p.Floor) / p.Step
	k := int(math.Ceil(n))
	if r := math.Round(n); scalar.EqualWithinAbs(n, r, 1e-6) {
		k = int(r)
	}
	if k < 0 {
		k = 0
	}
	return 2*k + 1
}

// maxPasses bounds the loop for hand-edited configs that slip off the
// precision grid.
func (p Params) maxPasses() int {
	return 2*p.ExpectedLineCount() + 16
}

// Sequence runs the whole sweep in memory and returns the emitted commands
// in order.
func Sequence(p Params, startMs int64) ([]Command, error) {
	cmds := make([]Command, 0, p.ExpectedLineCount())
	s := p.Start(startMs)
	for pass := 0; ; pass++ {
		if pass > p.maxPasses() {
			return cmds, fmt.Errorf("sweep did not terminate after %d passes", pass)
		}
		cmd, next, ok := p.Next(s)
		if !ok {
			return cmds, nil
		}
		cmds = append(cmds, cmd)
		s = next
	}
}
