package errors_test

import (
	"bytes"
	"encoding/gob"
	goerrors "errors"
	"os"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapesort/tapesort/errors"
)

func TestError(t *testing.T) {
	_, err := os.Open("/dev/notexist")
	e1 := errors.E(errors.NotExist, "opening file", err)
	assert.Equal(t, "opening file: resource does not exist: open /dev/notexist: no such file or directory", e1.Error())

	e2 := errors.E(err)
	assert.Equal(t, "resource does not exist: open /dev/notexist: no such file or directory", e2.Error())

	for _, e := range []error{e1, e2} {
		assert.True(t, errors.Is(errors.NotExist, e))
	}
}

func TestErrorChaining(t *testing.T) {
	_, err := os.Open("/dev/notexist")
	err = errors.E("failed to open backing file", err)
	err = errors.E(errors.TapeIO, "cannot open tape", err)
	assert.Equal(t,
		"cannot open tape: tape I/O error:\n\tfailed to open backing file: resource does not exist: open /dev/notexist: no such file or directory",
		err.Error())
}

func TestKindInheritance(t *testing.T) {
	base := errors.E(errors.TapeRange, "head past end")
	wrapped := errors.E("jump failed", base)
	assert.True(t, errors.Is(errors.TapeRange, wrapped))
}

func TestGobEncoding(t *testing.T) {
	_, err := os.Open("/dev/notexist")
	err = errors.E("failed to open backing file", err)
	err = errors.E(errors.Fatal, "cannot open tape", err)

	var b bytes.Buffer
	require.NoError(t, gob.NewEncoder(&b).Encode(errors.Recover(err)))
	e2 := new(errors.Error)
	require.NoError(t, gob.NewDecoder(&b).Decode(e2))
	assert.True(t, errors.Match(err, e2))
}

func TestGobEncodingFuzz(t *testing.T) {
	fz := fuzz.New().NilChance(0).Funcs(
		func(e *errors.Error, c fuzz.Continue) {
			c.Fuzz(&e.Kind)
			c.Fuzz(&e.Severity)
			c.Fuzz(&e.Message)
			if c.Float32() < 0.8 {
				var e2 errors.Error
				c.Fuzz(&e2)
				e.Err = &e2
			}
		},
	)

	const N = 1000
	for i := 0; i < N; i++ {
		var err errors.Error
		fz.Fuzz(&err)
		var b bytes.Buffer
		require.NoError(t, gob.NewEncoder(&b).Encode(errors.Recover(&err)))
		decoded := new(errors.Error)
		require.NoError(t, gob.NewDecoder(&b).Decode(decoded))
		assert.True(t, errors.Match(&err, decoded))
	}
}

func TestRecoverPlainError(t *testing.T) {
	plain := goerrors.New("boom")
	e := errors.Recover(plain)
	assert.Equal(t, "boom", e.Error())
}
