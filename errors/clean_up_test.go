package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapesort/tapesort/errors"
)

func TestCleanUpNoError(t *testing.T) {
	var dst error
	errors.CleanUp(func() error { return nil }, &dst)
	assert.NoError(t, dst)
}

func TestCleanUpSetsNilDst(t *testing.T) {
	var dst error
	cause := errors.E(errors.TapeIO, "flush failed")
	errors.CleanUp(func() error { return cause }, &dst)
	require.Error(t, dst)
	assert.Same(t, cause, dst)
}

func TestCleanUpChainsOntoExistingError(t *testing.T) {
	dst := errors.E(errors.TapeRange, "primary failure")
	errors.CleanUp(func() error { return errors.New("close failed") }, &dst)
	require.Error(t, dst)
	assert.True(t, errors.Is(errors.TapeRange, dst))
	assert.Contains(t, dst.Error(), "second error in Close")
}
