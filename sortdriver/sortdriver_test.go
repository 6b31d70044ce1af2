package sortdriver_test

import (
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapesort/tapesort/sortdriver"
	"github.com/tapesort/tapesort/tape"
)

func writeInput(t *testing.T, path string, values []int32) {
	t.Helper()
	tp, err := tape.Open[int32](path, tape.WriteTruncate)
	require.NoError(t, err)
	for i, v := range values {
		require.NoError(t, tp.Write(v))
		if i < len(values)-1 {
			require.NoError(t, tp.StepForward())
		}
	}
	require.NoError(t, tp.Close())
}

func readValues(t *testing.T, path string) []int32 {
	t.Helper()
	tp, err := tape.Open[int32](path, tape.ReadOnly)
	require.NoError(t, err)
	defer tp.Close()
	var got []int32
	for {
		v, err := tp.Read()
		if err != nil {
			break
		}
		got = append(got, v)
		if err := tp.StepForward(); err != nil {
			break
		}
	}
	return got
}

func TestSortEmptyInputLeavesOutputUntouched(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	out := filepath.Join(dir, "out.bin")
	scratch := filepath.Join(dir, "scratch")
	writeInput(t, in, nil)

	stats, err := sortdriver.Sort[int32](in, out, scratch, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Runs)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(scratch)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSortSingleChunkSkipsMultiSourceMerge(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	out := filepath.Join(dir, "out.bin")
	scratch := filepath.Join(dir, "scratch")

	values := []int32{5, 3, 1, 4, 2}
	writeInput(t, in, values)

	stats, err := sortdriver.Sort[int32](in, out, scratch, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Runs)
	assert.Equal(t, 0, stats.Cascades)

	got := readValues(t, out)
	want := append([]int32(nil), values...)
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })
	assert.Equal(t, want, got)

	_, statErr := os.Stat(scratch)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSortEndToEndRandomized(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	out := filepath.Join(dir, "out.bin")
	scratch := filepath.Join(dir, "scratch")

	rng := rand.New(rand.NewSource(99))
	values := make([]int32, 20000)
	for i := range values {
		values[i] = rng.Int31()
	}
	writeInput(t, in, values)

	stats, err := sortdriver.Sort[int32](in, out, scratch, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(len(values)), stats.Elements)

	got := readValues(t, out)
	require.Len(t, got, len(values))
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }))
	assert.ElementsMatch(t, values, got)
}

func TestSortMissingInputFails(t *testing.T) {
	dir := t.TempDir()
	_, err := sortdriver.Sort[int32](filepath.Join(dir, "missing.bin"), filepath.Join(dir, "out.bin"), filepath.Join(dir, "scratch"), nil, 1)
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "scratch"))
	assert.True(t, os.IsNotExist(statErr))
}
