// Package tape implements a buffered, typed, random-access view over
// a file on disk: a single read/write head that moves forward,
// backward, or jumps to an absolute position, mediated by one
// resident in-memory page. It emulates a linear magnetic tape device,
// including an optional simulated per-operation latency.
package tape

import (
	"io"
	"os"

	"github.com/tapesort/tapesort/errors"
	"github.com/tapesort/tapesort/fileio"
	"github.com/tapesort/tapesort/latency"
)

// Integer is the set of fixed-width integer types a Tape can store.
// Named types with an underlying integer kind (e.g. type Key int32)
// are also accepted.
type Integer interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~int | ~uint
}

// Mode selects how a Tape's backing file is opened.
type Mode int

const (
	// ReadOnly opens an existing file for reading only.
	ReadOnly Mode = iota
	// WriteTruncate creates the file, truncating it if it already
	// exists; the tape starts out with logical length 0.
	WriteTruncate
	// ReadWrite opens an existing file, creating it if necessary,
	// preserving any existing contents and logical length.
	ReadWrite
)

const defaultPageSize = 128

// Tape is a random-access sequence of T backed by a file, exposing
// head-at-position read, write, and move operations. A Tape is not
// safe for concurrent use, and is owned exclusively by one execution
// context for its lifetime: open it, use it, Close it.
type Tape[T Integer] struct {
	path     string
	file     *os.File
	pageSize int64
	policy   *latency.Policy

	length int64 // L, in elements
	slice  int64 // s: index of the resident page
	index  int64 // i: offset within the resident page, 0 <= i < pageSize

	buf   []T
	dirty bool
}

// Option configures optional Tape construction parameters.
type Option func(*options)

type options struct {
	pageSize int64
	policy   *latency.Policy
}

// WithPageSize overrides the default page size of 128 elements.
func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = int64(n) }
}

// WithLatency attaches a latency Policy; every read, write, step, and
// jump sleeps for the policy's corresponding delay before acting.
func WithLatency(p *latency.Policy) Option {
	return func(o *options) { o.policy = p }
}

// Open opens path in the given Mode and returns a ready-to-use Tape
// positioned at element 0. The tape's logical length is computed from
// the file's current size; page 0 is loaded into memory immediately.
func Open[T Integer](path string, mode Mode, opts ...Option) (*Tape[T], error) {
	o := options{pageSize: defaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageSize <= 0 {
		return nil, errors.E(errors.Invalid, "tape: page size must be positive")
	}

	var flags int
	switch mode {
	case ReadOnly:
		flags = os.O_RDONLY
	case WriteTruncate:
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	case ReadWrite:
		flags = os.O_RDWR | os.O_CREATE
	default:
		return nil, errors.E(errors.Invalid, "tape: unknown mode")
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, errors.E(errors.TapeIO, "opening tape "+path, err)
	}

	var zero T
	elemSize := int64(sizeOf(zero))
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, errors.E(errors.TapeIO, "seeking tape "+path, err)
	}

	t := &Tape[T]{
		path:     path,
		file:     f,
		pageSize: o.pageSize,
		policy:   o.policy,
		length:   size / elemSize,
		buf:      make([]T, o.pageSize),
	}
	if err := t.load(0); err != nil {
		f.Close()
		return nil, err
	}
	return t, nil
}

// Len returns the tape's current logical length L, in elements.
func (t *Tape[T]) Len() int64 { return t.length }

// Position returns the absolute head position p = s*pageSize + i.
func (t *Tape[T]) Position() int64 { return t.slice*t.pageSize + t.index }

// Read returns the element at the current head position. It fails if
// the head is at or past the tape's logical length.
func (t *Tape[T]) Read() (T, error) {
	t.policy.SleepReadWrite()
	var zero T
	if t.Position() >= t.length {
		return zero, errors.E(errors.TapeRange, "read past end of tape "+t.path)
	}
	return t.buf[t.index], nil
}

// Write stores v at the current head position, marking the resident
// page dirty. If the head is at or past the tape's logical length,
// the tape is extended so that the new length is Position()+1. Write
// never fails for an open writable tape; I/O errors surface at the
// next flush.
func (t *Tape[T]) Write(v T) error {
	t.policy.SleepReadWrite()
	t.buf[t.index] = v
	t.dirty = true
	if p := t.Position(); p >= t.length {
		t.length = p + 1
	}
	return nil
}

// StepForward advances the head by one element, flushing and loading
// a new page if the step crosses a page boundary. Reaching the end of
// the tape (Position() == Len()) is not itself an error; the next
// Read at that position fails.
func (t *Tape[T]) StepForward() error {
	t.policy.SleepStep()
	t.index++
	if t.index == t.pageSize {
		if err := t.flush(); err != nil {
			return err
		}
		t.slice++
		t.index = 0
		if err := t.load(t.slice); err != nil {
			return err
		}
	}
	return nil
}

// StepBackward retreats the head by one element. It fails if the head
// is already at position 0.
func (t *Tape[T]) StepBackward() error {
	t.policy.SleepStep()
	if t.Position() == 0 {
		return errors.E(errors.TapeRange, "step backward before start of tape "+t.path)
	}
	if t.index == 0 {
		if err := t.flush(); err != nil {
			return err
		}
		t.slice--
		t.index = t.pageSize - 1
		if err := t.load(t.slice); err != nil {
			return err
		}
	} else {
		t.index--
	}
	return nil
}

// Jump moves the head by steps, an arbitrary signed offset from the
// current position, unconditionally flushing the resident page first
// (jump(0) is a valid no-op move that still flushes, making it a safe
// write barrier). Jump fails if the resulting position would fall
// outside [0, Len()); note that Len() itself is not a reachable jump
// target — the writable position one past the last element is
// reachable only by stepping forward.
func (t *Tape[T]) Jump(steps int64) error {
	t.policy.SleepMove()
	if err := t.flush(); err != nil {
		return err
	}
	p := t.Position()
	if steps < 0 && -steps > p {
		return errors.E(errors.TapeRange, "jump before start of tape "+t.path)
	}
	target := p + steps
	if target < 0 || target >= t.length {
		return errors.E(errors.TapeRange, "jump past end of tape "+t.path)
	}
	newSlice := target / t.pageSize
	t.index = target % t.pageSize
	if newSlice != t.slice {
		t.slice = newSlice
		if err := t.load(t.slice); err != nil {
			return err
		}
	} else {
		t.slice = newSlice
	}
	return nil
}

// Close flushes any dirty page and closes the backing file. It is
// safe to call Close exactly once; it is not idempotent.
func (t *Tape[T]) Close() (err error) {
	if ferr := t.flush(); ferr != nil {
		err = ferr
	}
	fileio.CloseAndReport(t.file, &err)
	return err
}
