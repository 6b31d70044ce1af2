package latency_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapesort/tapesort/errors"
	"github.com/tapesort/tapesort/latency"
)

func TestLoadEmptyPathIsZero(t *testing.T) {
	p, err := latency.Load("")
	require.NoError(t, err)
	assert.Equal(t, &latency.Policy{}, p)
}

func TestLoadParsesThreeIntegers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latency.cfg")
	require.NoError(t, os.WriteFile(path, []byte("100 200 300\n"), 0o644))

	p, err := latency.Load(path)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(100), p.ReadWrite)
	assert.Equal(t, time.Duration(200), p.Step)
	assert.Equal(t, time.Duration(300), p.Move)
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := latency.Load(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Configuration, err))
}

func TestLoadMalformedIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latency.cfg")
	require.NoError(t, os.WriteFile(path, []byte("1 2 notanumber"), 0o644))

	_, err := latency.Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Configuration, err))
}

func TestLoadWrongCountIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latency.cfg")
	require.NoError(t, os.WriteFile(path, []byte("1 2"), 0o644))

	_, err := latency.Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(errors.Configuration, err))
}

func TestNilPolicySleepsZero(t *testing.T) {
	var p *latency.Policy
	start := time.Now()
	p.SleepReadWrite()
	p.SleepStep()
	p.SleepMove()
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
