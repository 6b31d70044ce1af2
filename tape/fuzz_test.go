package tape_test

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/tapesort/tapesort/tape"
)

// TestRandomWalkMatchesReference drives a tape through a long random
// sequence of step_forward/step_backward/jump/read/write operations
// and checks every read against an in-memory reference slice.
func TestRandomWalkMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	f := fuzz.NewWithSeed(42)

	const n = 500
	ref := make([]int32, n)
	for i := range ref {
		f.Fuzz(&ref[i])
	}

	path := filepath.Join(t.TempDir(), "t.bin")
	writeAll(t, path, 17, ref)

	tp, err := tape.Open[int32](path, tape.ReadWrite, tape.WithPageSize(17))
	require.NoError(t, err)
	defer tp.Close()

	pos := int64(0)
	for step := 0; step < 5000; step++ {
		switch rng.Intn(5) {
		case 0:
			if pos+1 < n {
				require.NoError(t, tp.StepForward())
				pos++
			}
		case 1:
			if pos > 0 {
				require.NoError(t, tp.StepBackward())
				pos--
			}
		case 2:
			target := int64(rng.Intn(n))
			require.NoError(t, tp.Jump(target-pos))
			pos = target
		case 3:
			v, err := tp.Read()
			require.NoError(t, err)
			require.Equal(t, ref[pos], v)
		case 4:
			var v int32
			f.Fuzz(&v)
			require.NoError(t, tp.Write(v))
			ref[pos] = v
		}
		require.Equal(t, pos, tp.Position())
	}
}

// TestRandomWritesThenFullReadback writes a fuzzed reference array one
// page-crossing step at a time, then reads it back from a freshly
// opened tape with a different page size, exercising the load/flush
// boundary logic at many alignments.
func TestRandomWritesThenFullReadback(t *testing.T) {
	f := fuzz.NewWithSeed(7)
	const n = 2000
	ref := make([]int64, n)
	for i := range ref {
		f.Fuzz(&ref[i])
	}

	path := filepath.Join(t.TempDir(), "t.bin")
	tp, err := tape.Open[int64](path, tape.WriteTruncate, tape.WithPageSize(31))
	require.NoError(t, err)
	for i, v := range ref {
		require.NoError(t, tp.Write(v))
		if i < len(ref)-1 {
			require.NoError(t, tp.StepForward())
		}
	}
	require.NoError(t, tp.Close())

	rt, err := tape.Open[int64](path, tape.ReadOnly, tape.WithPageSize(13))
	require.NoError(t, err)
	defer rt.Close()
	require.Equal(t, int64(n), rt.Len())
	for i := 0; i < n; i++ {
		v, err := rt.Read()
		require.NoError(t, err)
		require.Equal(t, ref[i], v)
		if i < n-1 {
			require.NoError(t, rt.StepForward())
		}
	}
}
