package must_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/tapesort/tapesort/must"
)

func TestMust(t *testing.T) {
	var got []string
	must.Func = func(v ...interface{}) {
		got = append(got, fmt.Sprint(v...))
	}
	must.True(false)
	must.Truef(false, "boom %d", 1)
	must.Nil(errors.New("x"))
	must.Never()
	must.Neverf("y")
	if len(got) != 5 {
		t.Fatalf("got %d calls, want 5: %v", len(got), got)
	}
}

func Example() {
	must.Func = func(v ...interface{}) {
		fmt.Print(v...)
		fmt.Print("\n")
	}

	must.Nil(errors.New("unexpected condition"))
	must.Nil(nil)
	must.Nil(errors.New("some error"))
	must.Nil(errors.New("i/o error"), "reading file")

	must.True(false)
	must.True(true, "something happened")
	must.True(false, "a condition failed")

	// Output:
	// unexpected condition
	// some error
	// reading file: i/o error
	// must: assertion failed
	// a condition failed
}
