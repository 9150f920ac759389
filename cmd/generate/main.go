// Command generate writes the photodiode elevation sweep of training
// commands to test_data/generated.txt for replay against the online
// learning server.
//
// Settings come from config/generator.defaults.json when present and fall
// back to the built-in defaults otherwise. The output directory must exist.
package main

import (
	"log"

	"github.com/banshee-data/traingen/internal/config"
	"github.com/banshee-data/traingen/internal/fsutil"
	"github.com/banshee-data/traingen/internal/monitoring"
	"github.com/banshee-data/traingen/internal/timeutil"
	"github.com/banshee-data/traingen/internal/training"
	"github.com/banshee-data/traingen/internal/version"
)

func main() {
	log.Printf("traingen %s", version.String())

	summary, err := run(config.DefaultConfigPath, timeutil.RealClock{}, fsutil.OSFileSystem{})
	if err != nil {
		log.Fatalf("generation failed: %v", err)
	}
	log.Printf("✓ Created: %s (%d lines)", summary.Path, summary.Lines)
}

// run loads the generator settings from configPath (or the defaults when
// the file does not exist) and writes the sweep to the configured output.
func run(configPath string, clock timeutil.Clock, fs fsutil.FileSystem) (*training.Summary, error) {
	cfg, found, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	if found {
		monitoring.Logf("loaded generator config from %s", configPath)
	} else {
		monitoring.Logf("no config at %s, using built-in defaults", configPath)
	}

	params, err := training.NewParams(cfg)
	if err != nil {
		return nil, err
	}

	gen := training.NewGenerator(params, clock, fs)
	return gen.WriteFile(cfg.GetOutputPath())
}
