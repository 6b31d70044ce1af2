// Command tapesort sorts a binary file of fixed-width 32-bit signed
// integer records too large to comfortably fit in memory, using an
// external k-way merge sort over a tape abstraction.
//
// Usage:
//
//	tapesort <input> <output>
//
// The process exits 0 on success and non-zero, with a diagnostic on
// stderr, on any failure.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/gops/agent"

	"github.com/tapesort/tapesort/errors"
	"github.com/tapesort/tapesort/latency"
	"github.com/tapesort/tapesort/log"
	"github.com/tapesort/tapesort/must"
	"github.com/tapesort/tapesort/shutdown"
	"github.com/tapesort/tapesort/sortdriver"
)

func main() {
	os.Exit(mainImpl())
}

func mainImpl() int {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s <input> <output>\n", filepath.Base(os.Args[0]))
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		return 2
	}

	if addr, ok := os.LookupEnv("TAPESORT_GOPS_ADDR"); ok {
		must.Nil(agent.Listen(agent.Options{Addr: addr}))
		shutdown.Register(agent.Close)
	}
	defer shutdown.Run()

	if err := run(flag.Arg(0), flag.Arg(1)); err != nil {
		log.Error.Printf("%v", err)
		return 1
	}
	return 0
}

func run(inputPath, outputPath string) error {
	policy, err := latency.Load(os.Getenv("TAPESORT_LATENCY_CONFIG"))
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "tapesort-")
	if err != nil {
		return errors.E(errors.Filesystem, "creating scratch directory", err)
	}

	stats, err := sortdriver.Sort[int32](inputPath, outputPath, scratch, policy, runtime.GOMAXPROCS(0))
	if err != nil {
		return err
	}
	log.Info.Printf("sorted %d elements in %d run(s), %d cascade(s)", stats.Elements, stats.Runs, stats.Cascades)
	return nil
}
