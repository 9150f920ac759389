// Package training synthesizes the labeled "train" commands used to exercise
// an online-learning server with a simulated photodiode elevation sweep.
//
// The photodiode elevation angle is swept from a floor up to a ceiling and
// back down. Every pass labels the reading against a fixed camera threshold
// and emits one command line stamped with a simulated acquisition clock:
//
//	train <label> <value> <timestamp_ms>
package training

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/banshee-data/traingen/internal/config"
)

// Label is the binary classification target of a training command.
type Label int

const (
	// LabelOn means the camera may be turned on.
	LabelOn Label = 1
	// LabelOff means the camera must stay off.
	LabelOff Label = -1
)

// Classify labels an elevation reading: LabelOn strictly below threshold,
// LabelOff at or above it.
func Classify(value, threshold float64) Label {
	if value < threshold {
		return LabelOn
	}
	return LabelOff
}

// ValueFormat selects how the elevation value is rendered in a command line.
type ValueFormat int

const (
	// FormatShortest renders the fewest digits that round-trip, keeping at
	// least one fractional digit: 0.0, 0.01, 1.0, 1.57.
	FormatShortest ValueFormat = iota
	// FormatFixed renders exactly precision fractional digits: 0.00, 1.00.
	FormatFixed
)

// ParseValueFormat maps a config name to a ValueFormat.
func ParseValueFormat(name string) (ValueFormat, error) {
	switch name {
	case "", config.FormatShortest:
		return FormatShortest, nil
	case config.FormatFixed:
		return FormatFixed, nil
	default:
		return 0, fmt.Errorf("unknown value format %q", name)
	}
}

func (f ValueFormat) String() string {
	switch f {
	case FormatShortest:
		return config.FormatShortest
	case FormatFixed:
		return config.FormatFixed
	default:
		return "unknown"
	}
}

// FormatValue renders v according to f. precision only applies to
// FormatFixed.
func FormatValue(v float64, f ValueFormat, precision int) string {
	if f == FormatFixed {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Command is one emitted training line.
type Command struct {
	Label       Label
	Value       float64
	TimestampMs int64
}

// Line renders the command without the trailing newline.
func (c Command) Line(f ValueFormat, precision int) string {
	return "train " + strconv.Itoa(int(c.Label)) + " " + FormatValue(c.Value, f, precision) + " " + strconv.FormatInt(c.TimestampMs, 10)
}

// String renders the command in the default shortest format.
func (c Command) String() string {
	return c.Line(FormatShortest, 0)
}
