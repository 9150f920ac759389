package training

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/banshee-data/traingen/internal/fsutil"
	"github.com/banshee-data/traingen/internal/monitoring"
	"github.com/banshee-data/traingen/internal/timeutil"
	"github.com/banshee-data/traingen/internal/units"
)

// ErrOutputSink is wrapped by every failure to create, write, flush or close
// the output. Generation is not retried; a partial file may remain.
var ErrOutputSink = errors.New("output sink error")

// Summary describes one completed generation run.
type Summary struct {
	RunID uuid.UUID
	Path  string // empty when written to a bare io.Writer

	Lines      int // buffered for w; see Generate for the failure case
	Iterations int // passes, including the final one that emits nothing
	Positive   int // LabelOn lines
	Negative   int // LabelOff lines
	Peak       float64

	StartMs int64 // clock on the first pass
	EndMs   int64 // clock after the last advance
}

// Generator writes a full sweep of training commands to an output sink.
type Generator struct {
	params Params
	clock  timeutil.Clock
	fs     fsutil.FileSystem

	// Logf receives start and completion lines. Defaults to a prefixed
	// monitoring.Logf.
	Logf func(format string, v ...interface{})
}

// NewGenerator returns a Generator. The clock supplies the start of the
// simulated timeline; fs is used by WriteFile.
func NewGenerator(params Params, clock timeutil.Clock, fs fsutil.FileSystem) *Generator {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &Generator{
		params: params,
		clock:  clock,
		fs:     fs,
		Logf:   monitoring.Prefixed("[generate] "),
	}
}

// WriteFile creates (or truncates) path and writes the sweep to it. The
// parent directory is not created.
func (g *Generator) WriteFile(path string) (summary *Summary, err error) {
	f, err := g.fs.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrOutputSink, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close %s: %w", ErrOutputSink, path, cerr)
		}
	}()

	summary, err = g.Generate(f)
	if summary != nil {
		summary.Path = path
	}
	return summary, err
}

// Generate writes the sweep to w, one command per line, and returns a
// summary of the run. Output is buffered, so on a write failure the summary
// counts the lines buffered before the failure; fewer of them may have
// reached w.
func (g *Generator) Generate(w io.Writer) (*Summary, error) {
	p := g.params
	summary := &Summary{
		RunID:   uuid.New(),
		StartMs: timeutil.UnixMilli(g.clock),
	}

	g.Logf("run %s: sweep %s..%s %s (%.1f..%.1f %s) step %g, threshold %g %s (%.1f %s), clock %d +%dms",
		summary.RunID,
		FormatValue(p.Floor, FormatShortest, 0), FormatValue(p.Ceiling, FormatShortest, 0), units.Radians,
		units.ConvertAngle(p.Floor, units.Degrees), units.ConvertAngle(p.Ceiling, units.Degrees), units.Degrees,
		p.Step, p.Threshold, units.Radians, units.ConvertAngle(p.Threshold, units.Degrees), units.Degrees,
		summary.StartMs, p.ClockStepMs)

	bw := bufio.NewWriter(w)
	s := p.Start(summary.StartMs)
	for {
		if summary.Iterations > p.maxPasses() {
			return summary, fmt.Errorf("sweep did not terminate after %d passes", summary.Iterations)
		}
		cmd, next, ok := p.Next(s)
		summary.Iterations++
		if !ok {
			break
		}

		if _, err := bw.WriteString(cmd.Line(p.Format, p.Precision) + "\n"); err != nil {
			return summary, fmt.Errorf("%w: write line %d: %w", ErrOutputSink, summary.Lines+1, err)
		}
		summary.Lines++
		if cmd.Label == LabelOn {
			summary.Positive++
		} else {
			summary.Negative++
		}
		if cmd.Value > summary.Peak {
			summary.Peak = cmd.Value
		}
		s = next
	}
	summary.EndMs = s.TimestampMs

	if err := bw.Flush(); err != nil {
		return summary, fmt.Errorf("%w: flush: %w", ErrOutputSink, err)
	}

	g.Logf("run %s: wrote %d lines in %d passes (%d label %d, %d label %d), peak %s %s, clock %d..%d",
		summary.RunID, summary.Lines, summary.Iterations,
		summary.Positive, LabelOn, summary.Negative, LabelOff,
		FormatValue(summary.Peak, FormatShortest, 0), units.Radians, summary.StartMs, summary.EndMs)

	return summary, nil
}
