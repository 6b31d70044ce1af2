// Package sortdriver orchestrates the external sort end to end: run
// generation followed by a final k-way merge, with a scratch
// directory that is always cleaned up.
package sortdriver

import (
	"os"

	"github.com/tapesort/tapesort/errors"
	"github.com/tapesort/tapesort/latency"
	"github.com/tapesort/tapesort/log"
	"github.com/tapesort/tapesort/sortgen"
	"github.com/tapesort/tapesort/sortmerge"
	"github.com/tapesort/tapesort/tape"
)

// Stats summarises a completed sort.
type Stats struct {
	// Elements is the number of records read from the input.
	Elements int64
	// Runs is the number of sorted runs the run generator produced.
	Runs int
	// Cascades is the number of intermediate merges the run
	// generator performed to stay within its temporary-tape budget.
	Cascades int
}

// Sort sorts the records of inputPath into outputPath, using dir as a
// scratch directory for temporary run tapes. dir is created if
// necessary and always removed before Sort returns, on both the
// success and error paths. policy, if non-nil, is applied to every
// tape opened during the sort, including the input and output.
// parallelism controls the in-memory sort used by the run generator.
func Sort[T tape.Integer](inputPath, outputPath, dir string, policy *latency.Policy, parallelism int) (stats Stats, err error) {
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return stats, errors.E(errors.Filesystem, "creating scratch directory "+dir, err)
	}
	defer func() {
		if rerr := os.RemoveAll(dir); rerr != nil && err == nil {
			err = errors.E(errors.Filesystem, "removing scratch directory "+dir, rerr)
		}
	}()

	in, err := tape.Open[T](inputPath, tape.ReadOnly, tape.WithLatency(policy))
	if err != nil {
		return stats, err
	}
	defer in.Close()

	result, err := sortgen.Generate[T](in, dir, policy, parallelism)
	if err != nil {
		return stats, err
	}
	stats.Elements = result.Elements
	// The first cascade folds MaxTmp runs into one tape and each later
	// cascade folds that tape plus MaxTmp-1 new runs, so every cascade
	// hides MaxTmp-1 runs from the final Active list.
	stats.Runs = len(result.Active) + (sortgen.MaxTmp-1)*result.Cascades
	stats.Cascades = result.Cascades

	log.Debug.Printf("sortdriver: %d elements across %d runs, %d cascades", stats.Elements, stats.Runs, stats.Cascades)

	if len(result.Active) > 0 {
		if err = sortmerge.Merge[T](result.Active, outputPath, policy); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
