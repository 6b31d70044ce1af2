// Package latency models the per-operation delay of a simulated tape
// device. A Policy holds three non-negative durations and sleeps the
// caller for the appropriate one at the start of a tape operation.
package latency

import (
	"bufio"
	"os"
	"strconv"
	"time"

	"github.com/tapesort/tapesort/errors"
)

// Policy holds the delay applied to each class of tape operation.
// A zero Policy applies no delay to any operation.
type Policy struct {
	// ReadWrite is the delay applied to a single read or write.
	ReadWrite time.Duration
	// Step is the delay applied to a step_forward or step_backward.
	Step time.Duration
	// Move is the delay applied to a jump of arbitrary size.
	Move time.Duration
}

// SleepReadWrite sleeps for p's read/write delay. A nil Policy sleeps
// for zero duration.
func (p *Policy) SleepReadWrite() { p.sleep(p.rw()) }

// SleepStep sleeps for p's single-step delay.
func (p *Policy) SleepStep() { p.sleep(p.step()) }

// SleepMove sleeps for p's arbitrary-move delay.
func (p *Policy) SleepMove() { p.sleep(p.move()) }

func (p *Policy) rw() time.Duration {
	if p == nil {
		return 0
	}
	return p.ReadWrite
}

func (p *Policy) step() time.Duration {
	if p == nil {
		return 0
	}
	return p.Step
}

func (p *Policy) move() time.Duration {
	if p == nil {
		return 0
	}
	return p.Move
}

func (p *Policy) sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Load reads a latency Policy from the plain-text configuration file
// at path: three whitespace-separated non-negative decimal integers,
// in nanoseconds, in the order read_write_ns step_ns jump_ns. An
// empty path returns the zero Policy (no delay). A non-empty path
// that cannot be opened, or whose contents do not parse, is a fatal
// Configuration error.
func Load(path string) (*Policy, error) {
	if path == "" {
		return &Policy{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(errors.Configuration, "opening latency config "+path, err)
	}
	defer f.Close()

	values := make([]time.Duration, 0, 3)
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		n, err := strconv.ParseInt(scanner.Text(), 10, 64)
		if err != nil || n < 0 {
			return nil, errors.E(errors.Configuration, "parsing latency config "+path, errors.New("expected a non-negative integer, got "+scanner.Text()))
		}
		values = append(values, time.Duration(n))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.E(errors.Configuration, "reading latency config "+path, err)
	}
	if len(values) != 3 {
		return nil, errors.E(errors.Configuration, "latency config "+path+" must contain exactly three integers (read_write_ns step_ns jump_ns)")
	}
	return &Policy{ReadWrite: values[0], Step: values[1], Move: values[2]}, nil
}
