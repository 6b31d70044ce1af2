// Package sortmerge implements the k-way merge phase of the external
// sort: it merges any number of sorted source tapes into one
// non-decreasing output tape using a min-heap over the sources'
// current head elements.
package sortmerge

import (
	"container/heap"
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/tapesort/tapesort/errors"
	"github.com/tapesort/tapesort/file"
	"github.com/tapesort/tapesort/fileio"
	"github.com/tapesort/tapesort/latency"
	"github.com/tapesort/tapesort/tape"
)

// Merge merges the sorted tapes at sources into a new tape at dest,
// overwriting it. An empty sources list is a no-op. A singleton
// sources list is a byte-exact file copy, bypassing the heap
// entirely; this is an optimisation, not an observable difference.
// policy, if non-nil, is applied to every tape the merge opens.
func Merge[T tape.Integer](sources []string, dest string, policy *latency.Policy) error {
	switch len(sources) {
	case 0:
		return nil
	case 1:
		return copyFile(sources[0], dest)
	default:
		return mergeMany[T](sources, dest, policy)
	}
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return errors.E(errors.Filesystem, "opening merge source "+src, err)
	}
	defer fileio.CloseAndReport(in, &err)

	out, err := os.Create(dst)
	if err != nil {
		return errors.E(errors.Filesystem, "creating merge destination "+dst, err)
	}
	defer fileio.CloseAndReport(out, &err)

	if _, cerr := file.Copy(context.Background(), out, in); cerr != nil {
		return errors.E(errors.Filesystem, "copying "+src+" to "+dst, cerr)
	}
	return nil
}

// source tracks one still-live input to the merge: its current head
// value and the tape it was read from.
type source[T tape.Integer] struct {
	value T
	index int
	tape  *tape.Tape[T]
}

// openSources opens and primes every path in paths concurrently: each
// source tape is opened and given its first read independently of the
// others, so the wall-clock cost of priming N sources is that of the
// slowest one rather than their sum. A source that fails to open or
// whose first read fails (an empty input tape) is silently dropped,
// matching the merger's tolerance for empty sources. Priming is pure
// I/O against distinct files with no shared mutable state, so it is
// safe to parallelize even though the merge loop that follows is not.
func openSources[T tape.Integer](paths []string, policy *latency.Policy) []*source[T] {
	slots := make([]*source[T], len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			in, oerr := tape.Open[T](path, tape.ReadOnly, tape.WithLatency(policy))
			if oerr != nil {
				return nil
			}
			v, rerr := in.Read()
			if rerr != nil {
				in.Close()
				return nil
			}
			slots[i] = &source[T]{value: v, index: i, tape: in}
			return nil
		})
	}
	_ = g.Wait() // per-source failures are skips, never fatal to the merge

	sources := make([]*source[T], 0, len(paths))
	for _, s := range slots {
		if s != nil {
			sources = append(sources, s)
		}
	}
	return sources
}

func mergeMany[T tape.Integer](paths []string, dest string, policy *latency.Policy) (err error) {
	h := minHeap[T](openSources[T](paths, policy))
	defer func() {
		for _, s := range h {
			s.tape.Close()
		}
	}()
	heap.Init(&h)

	out, err := tape.Open[T](dest, tape.WriteTruncate, tape.WithLatency(policy))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	first := true
	for h.Len() > 0 {
		s := heap.Pop(&h).(*source[T])
		if !first {
			if err = out.StepForward(); err != nil {
				s.tape.Close()
				return err
			}
		}
		first = false
		if err = out.Write(s.value); err != nil {
			s.tape.Close()
			return err
		}

		if serr := s.tape.StepForward(); serr == nil {
			if v, rerr := s.tape.Read(); rerr == nil {
				s.value = v
				heap.Push(&h, s)
				continue
			}
		}
		s.tape.Close()
	}
	return nil
}

// minHeap orders live sources by head value, tie-broken by source
// index for a deterministic (if arbitrary) ordering among equal keys.
type minHeap[T tape.Integer] []*source[T]

func (h minHeap[T]) Len() int { return len(h) }
func (h minHeap[T]) Less(i, j int) bool {
	if h[i].value != h[j].value {
		return h[i].value < h[j].value
	}
	return h[i].index < h[j].index
}
func (h minHeap[T]) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *minHeap[T]) Push(x any)   { *h = append(*h, x.(*source[T])) }
func (h *minHeap[T]) Pop() any {
	old := *h
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return s
}
