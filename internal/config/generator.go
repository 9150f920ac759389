package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/banshee-data/traingen/internal/units"
)

// DefaultConfigPath is the path to the canonical generator defaults file.
const DefaultConfigPath = "config/generator.defaults.json"

// Value format names accepted by value_format.
const (
	FormatShortest = "shortest"
	FormatFixed    = "fixed"
)

// Built-in defaults. These are what the generator uses for any field the
// JSON file leaves out.
const (
	DefaultFloor              = 0.0    // radians
	DefaultCeiling            = 1.57   // 90 deg
	DefaultElevationThreshold = 1.0472 // 60 deg, 90 - (camera FOV + margin)
	DefaultStep               = 0.01
	DefaultPrecision          = 2
	DefaultClockStepMs        = 5000
	DefaultValueFormat        = FormatShortest
	DefaultOutputPath         = "test_data/generated.txt"
)

const maxPrecision = 10

// GeneratorConfig holds the sweep and output settings for the training
// command generator. Every field is optional; the Get* methods supply the
// built-in default for anything not set.
type GeneratorConfig struct {
	// Sweep bounds, radians
	Floor   *float64 `json:"floor,omitempty"`
	Ceiling *float64 `json:"ceiling,omitempty"`

	// Labeling
	ElevationThreshold *float64 `json:"elevation_threshold,omitempty"`

	// Stepping
	Step        *float64 `json:"step,omitempty"`
	Precision   *int     `json:"precision,omitempty"`
	ClockStepMs *int64   `json:"clock_step_ms,omitempty"`

	// Output
	ValueFormat *string `json:"value_format,omitempty"`
	OutputPath  *string `json:"output_path,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }
func ptrString(v string) *string    { return &v }

// EmptyGeneratorConfig returns a GeneratorConfig with all fields nil.
func EmptyGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{}
}

// DefaultGeneratorConfig returns a GeneratorConfig with every field set to
// its built-in default.
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		Floor:              ptrFloat64(DefaultFloor),
		Ceiling:            ptrFloat64(DefaultCeiling),
		ElevationThreshold: ptrFloat64(DefaultElevationThreshold),
		Step:               ptrFloat64(DefaultStep),
		Precision:          ptrInt(DefaultPrecision),
		ClockStepMs:        ptrInt64(DefaultClockStepMs),
		ValueFormat:        ptrString(DefaultValueFormat),
		OutputPath:         ptrString(DefaultOutputPath),
	}
}

// LoadGeneratorConfig loads a GeneratorConfig from a JSON file.
// The file must have a .json extension and be under 1MB. Fields omitted from
// the file fall back to the built-in defaults.
func LoadGeneratorConfig(path string) (*GeneratorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyGeneratorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path if it exists and returns the built-in defaults
// if it does not. Any other failure (bad JSON, invalid values) is returned.
func LoadOrDefault(path string) (*GeneratorConfig, bool, error) {
	cfg, err := LoadGeneratorConfig(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultGeneratorConfig(), false, nil
	}
	return nil, false, err
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *GeneratorConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadGeneratorConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration describes a sweep that terminates.
func (c *GeneratorConfig) Validate() error {
	floor, ceiling := c.GetFloor(), c.GetCeiling()
	if floor < 0 {
		return fmt.Errorf("floor must be non-negative, got %f", floor)
	}
	if ceiling <= floor {
		return fmt.Errorf("ceiling (%f) must be greater than floor (%f)", ceiling, floor)
	}

	precision := c.GetPrecision()
	if precision < 0 || precision > maxPrecision {
		return fmt.Errorf("precision must be between 0 and %d, got %d", maxPrecision, precision)
	}

	step := c.GetStep()
	if step <= 0 {
		return fmt.Errorf("step must be positive, got %f", step)
	}
	// A step that rounds away to nothing would never move the sweep.
	if units.RoundDecimal(step, precision) <= 0 {
		return fmt.Errorf("step %g rounds to zero at precision %d", step, precision)
	}

	if c.GetClockStepMs() <= 0 {
		return fmt.Errorf("clock_step_ms must be positive, got %d", c.GetClockStepMs())
	}

	switch c.GetValueFormat() {
	case FormatShortest, FormatFixed:
	default:
		return fmt.Errorf("unknown value_format %q (want %q or %q)", c.GetValueFormat(), FormatShortest, FormatFixed)
	}

	if c.GetOutputPath() == "" {
		return fmt.Errorf("output_path must not be empty")
	}

	return nil
}

// GetFloor returns the floor value or the default.
func (c *GeneratorConfig) GetFloor() float64 {
	if c.Floor == nil {
		return DefaultFloor
	}
	return *c.Floor
}

// GetCeiling returns the ceiling value or the default.
func (c *GeneratorConfig) GetCeiling() float64 {
	if c.Ceiling == nil {
		return DefaultCeiling
	}
	return *c.Ceiling
}

// GetElevationThreshold returns the elevation_threshold value or the default.
func (c *GeneratorConfig) GetElevationThreshold() float64 {
	if c.ElevationThreshold == nil {
		return DefaultElevationThreshold
	}
	return *c.ElevationThreshold
}

// GetStep returns the step value or the default.
func (c *GeneratorConfig) GetStep() float64 {
	if c.Step == nil {
		return DefaultStep
	}
	return *c.Step
}

// GetPrecision returns the precision value or the default.
func (c *GeneratorConfig) GetPrecision() int {
	if c.Precision == nil {
		return DefaultPrecision
	}
	return *c.Precision
}

// GetClockStepMs returns the clock_step_ms value or the default.
func (c *GeneratorConfig) GetClockStepMs() int64 {
	if c.ClockStepMs == nil {
		return DefaultClockStepMs
	}
	return *c.ClockStepMs
}

// GetValueFormat returns the value_format value or the default.
func (c *GeneratorConfig) GetValueFormat() string {
	if c.ValueFormat == nil || *c.ValueFormat == "" {
		return DefaultValueFormat
	}
	return *c.ValueFormat
}

// GetOutputPath returns the output_path value or the default.
func (c *GeneratorConfig) GetOutputPath() string {
	if c.OutputPath == nil {
		return DefaultOutputPath
	}
	return *c.OutputPath
}
