package errors

import "fmt"

// CleanUp is defer-able syntactic sugar that calls cleanUp and reports
// an error, if any, to *dst. Pass the caller's named return error.
// Example usage:
//
//	func processFile(filename string) (_ int, err error) {
//	  f, err := os.Open(filename)
//	  if err != nil { ... }
//	  defer errors.CleanUp(f.Close, &err)
//	  ...
//	}
//
// If the caller returns with its own error, any error from cleanUp
// is chained onto it rather than replacing it.
func CleanUp(cleanUp func() error, dst *error) {
	err2 := cleanUp()
	if err2 == nil {
		return
	}
	if *dst == nil {
		*dst = err2
		return
	}
	*dst = E(*dst, fmt.Sprintf("second error in Close: %v", err2))
}
