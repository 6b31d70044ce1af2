// Package sortgen implements the run-generation phase of the external
// sort: it chunks an input tape into memory-sized pieces, sorts each
// piece, and spills it to one of a small ring of temporary tapes,
// cascading a k-way merge when the ring is exhausted.
package sortgen

import (
	"fmt"
	"path/filepath"

	"github.com/tapesort/tapesort/latency"
	"github.com/tapesort/tapesort/log"
	"github.com/tapesort/tapesort/psort"
	"github.com/tapesort/tapesort/sortmerge"
	"github.com/tapesort/tapesort/tape"
)

// MaxTmp bounds the number of temporary run tapes kept active at once.
const MaxTmp = 8

// ChunkBytes is the approximate in-memory budget per run, before the
// input element width is accounted for.
const ChunkBytes = 2 * 1024 * 1024

// Result summarises one Generate call.
type Result struct {
	// Active lists the paths of temporary tapes holding the unmerged
	// runs produced (or surviving a cascade), in the order the final
	// merge should consume them.
	Active []string
	// Elements is the total number of elements read from the input.
	Elements int64
	// Cascades is the number of intermediate k-way merges performed
	// to keep the active run count within MaxTmp.
	Cascades int
}

// TempPath returns the pre-allocated path of ring slot i within dir.
func TempPath(dir string, i int) string {
	return filepath.Join(dir, fmt.Sprintf("tape_%d.bin", i))
}

// MergedPath returns the pre-allocated path of cascade-merge
// destination m within dir; destinations alternate between two paths
// so a cascade never reads and writes the same file.
func MergedPath(dir string, m int) string {
	return filepath.Join(dir, fmt.Sprintf("merged_%d.bin", m%2))
}

// Generate reads in to completion, producing sorted runs on temporary
// tapes under dir. parallelism controls the in-memory sort's use of
// psort; pass 1 for a purely serial sort.
func Generate[T tape.Integer](in *tape.Tape[T], dir string, policy *latency.Policy, parallelism int) (Result, error) {
	chunkElems := int(ChunkBytes / tape.ElemSize[T]())
	if chunkElems < 1 {
		chunkElems = 1
	}

	var (
		active []string
		r      int
		m      int
		total  int64
		result Result
	)

	buf := make([]T, 0, chunkElems)
	for {
		if len(active) >= MaxTmp {
			dest := MergedPath(dir, m)
			log.Debug.Printf("sortgen: cascading merge of %d runs into %s", len(active), dest)
			if err := sortmerge.Merge[T](active, dest, policy); err != nil {
				return result, err
			}
			active = []string{dest}
			m++
			result.Cascades++
			continue
		}

		buf = buf[:0]
		for len(buf) < chunkElems {
			v, err := in.Read()
			if err != nil {
				break
			}
			buf = append(buf, v)
			if err := in.StepForward(); err != nil {
				break
			}
		}
		if len(buf) == 0 {
			break
		}
		total += int64(len(buf))

		psort.Slice(buf, func(i, j int) bool { return buf[i] < buf[j] }, parallelism)

		dest := TempPath(dir, r%MaxTmp)
		active = append(active, dest)
		r++
		if err := writeRun(dest, buf, policy); err != nil {
			return result, err
		}
	}

	result.Active = active
	result.Elements = total
	return result, nil
}

func writeRun[T tape.Integer](path string, buf []T, policy *latency.Policy) (err error) {
	out, err := tape.Open[T](path, tape.WriteTruncate, tape.WithLatency(policy))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	for i, v := range buf {
		if err = out.Write(v); err != nil {
			return err
		}
		if i < len(buf)-1 {
			if err = out.StepForward(); err != nil {
				return err
			}
		}
	}
	return nil
}
