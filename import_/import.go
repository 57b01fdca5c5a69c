/*
Package import_ provides the import sub command.
*/
package import_

import (
	"context"

	"github.com/omniscale/osmwrangle/config"
	"github.com/omniscale/osmwrangle/database"
	_ "github.com/omniscale/osmwrangle/database/csv"
	_ "github.com/omniscale/osmwrangle/database/postgis"
	_ "github.com/omniscale/osmwrangle/database/sqlite"
	"github.com/omniscale/osmwrangle/logging"
	"github.com/omniscale/osmwrangle/mapping"
	"github.com/omniscale/osmwrangle/reader"
	"github.com/omniscale/osmwrangle/shape"
	"github.com/omniscale/osmwrangle/stats"
	"github.com/omniscale/osmwrangle/validate"
	"github.com/omniscale/osmwrangle/writer"
)

var log = logging.NewLogger("")

// LoadMaps returns the normalization maps from filename, or the built-in
// maps if filename is empty.
func LoadMaps(filename string) (*mapping.Maps, error) {
	if filename == "" {
		return mapping.Default(), nil
	}
	return mapping.Load(filename)
}

// Import reads opts.Read and writes all nodes and ways to the output of
// opts.Connection. On errors the output is aborted and the error returned.
func Import(ctx context.Context, opts config.Import) error {
	if opts.Base.Quiet {
		logging.SetQuiet(true)
	}

	maps, err := LoadMaps(opts.Base.Normalization)
	if err != nil {
		return err
	}

	manifest := NewManifest(opts.Read)
	log.Printf("import %s from %s", manifest.RunID, opts.Read)

	sink, err := database.Open(database.Config{ConnectionParams: opts.Connection})
	if err != nil {
		return err
	}
	defer sink.Close()

	src, err := reader.Open(opts.Read)
	if err != nil {
		return err
	}
	defer src.Close()

	step := log.StartStep("Importing OSM data")
	progress := stats.StatsReporter()

	shaper := shape.New(maps)
	problems := &shape.CountingReporter{Next: shape.LogReporter{}}
	shaper.SetReporter(problems)

	var validator writer.Validator
	if opts.Validate {
		validator = validate.New()
	}
	w := writer.New(shaper, validator, sink, progress)
	w.SetConcurrency(opts.Concurrency)

	if err := sink.Init(); err != nil {
		progress.Stop()
		return err
	}
	if err := sink.Begin(); err != nil {
		progress.Stop()
		sink.Abort()
		return err
	}

	err = w.Run(ctx, src)
	progress.Stop()
	progress.AddInvalidKeys(problems.Count())
	if err != nil {
		if abortErr := sink.Abort(); abortErr != nil {
			log.Errorf("aborting import: %s", abortErr)
		}
		return err
	}
	if err := sink.End(); err != nil {
		return err
	}
	log.StopStep(step)
	log.Print(progress.Summary())

	manifest.Finish(progress.Counts())
	if opts.Manifest && database.ConnectionType(opts.Connection) == "csv" {
		filename, err := manifest.WriteTo(database.ConnectionPath(opts.Connection))
		if err != nil {
			return err
		}
		log.Printf("wrote %s", filename)
	}
	return nil
}
