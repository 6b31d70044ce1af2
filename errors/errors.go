// Package errors implements an error type that carries one of a small
// set of interpretable error kinds, together with an optional message
// and an optional chained cause. It is used throughout the tape and
// sort packages so that callers can distinguish, for example, a tape
// range violation from a backing-file I/O failure without parsing
// error strings.
package errors

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/tapesort/tapesort/log"
)

func init() {
	gob.Register(new(Error))
}

// Separator defines the separation string inserted between
// chained errors in error messages.
var Separator = ":\n\t"

// Kind defines the type of error. Kinds are semantically meaningful
// and may be interpreted by the receiver of an error.
type Kind int

const (
	// Other indicates an unknown error.
	Other Kind = iota
	// Invalid indicates the caller supplied invalid parameters.
	Invalid
	// NotExist indicates a referenced path does not exist.
	NotExist
	// Exists indicates a path unexpectedly already exists.
	Exists
	// TapeRange indicates a tape head move or read would violate the
	// tape's logical bounds [0, L].
	TapeRange
	// TapeIO indicates an open/seek/read/write/flush against a tape's
	// backing file failed.
	TapeIO
	// Configuration indicates the latency configuration file was
	// specified but unreadable or malformed.
	Configuration
	// Filesystem indicates a scratch-directory or file-copy operation
	// outside of a single tape's own I/O failed.
	Filesystem
	// Internal indicates an invariant the caller should never be able
	// to violate was violated anyway.
	Internal

	maxKind
)

var kinds = map[Kind]string{
	Other:         "unknown error",
	Invalid:       "invalid argument",
	NotExist:      "resource does not exist",
	Exists:        "resource already exists",
	TapeRange:     "tape range violation",
	TapeIO:        "tape I/O error",
	Configuration: "configuration error",
	Filesystem:    "filesystem error",
	Internal:      "internal error",
}

var kindStdErrs = map[Kind]error{
	NotExist: os.ErrNotExist,
	Exists:   os.ErrExist,
	Invalid:  os.ErrInvalid,
}

// String returns a human-readable explanation of the error kind k.
func (k Kind) String() string {
	return kinds[k]
}

// Severity defines an Error's severity.
type Severity int

const (
	// Unknown indicates the error's severity is unknown. This is the
	// default severity level.
	Unknown Severity = iota
	// Fatal indicates that the underlying error condition is
	// unrecoverable for the calling operation.
	Fatal
)

var severities = map[Severity]string{
	Unknown: "unknown",
	Fatal:   "fatal",
}

// String returns a human-readable explanation of the error severity s.
func (s Severity) String() string {
	return severities[s]
}

// Error is the standard error type, carrying a kind, an optional
// message, and an optional underlying cause. Errors should be
// constructed with E, which interprets its arguments according to a
// set of rules.
type Error struct {
	Kind     Kind
	Severity Severity
	Message  string
	Err      error
}

// E constructs a new error from the provided arguments. Arguments are
// interpreted according to their types:
//
//   - Kind: sets the Error's kind
//   - Severity: sets the Error's severity
//   - string: sets the Error's message; multiple strings are joined
//     with a space
//   - *Error: copies the error and sets it as the cause
//   - error: sets the cause
//
// If a kind is not provided but an underlying error is, E infers a
// kind: os.IsNotExist errors become NotExist, errors wrapping another
// *Error inherit that error's kind unless overridden.
func E(args ...interface{}) error {
	if len(args) == 0 {
		panic("errors.E: no args")
	}
	e := new(Error)
	var msg strings.Builder
	for _, arg := range args {
		switch arg := arg.(type) {
		case Kind:
			e.Kind = arg
		case Severity:
			e.Severity = arg
		case string:
			if msg.Len() > 0 {
				msg.WriteString(" ")
			}
			msg.WriteString(arg)
		case *Error:
			cp := *arg
			if len(args) == 1 {
				return &cp
			}
			e.Err = &cp
		case error:
			e.Err = arg
		default:
			_, file, line, _ := runtime.Caller(1)
			log.Error.Printf("errors.E: bad call (type %T) from %s:%d: %v", arg, file, line, arg)
			return &Error{
				Kind:    Invalid,
				Message: fmt.Sprintf("unknown type %T, value %v in error call", arg, arg),
			}
		}
	}
	e.Message = msg.String()
	if e.Err == nil {
		return e
	}
	switch prev := e.Err.(type) {
	case *Error:
		if prev.Kind == e.Kind || e.Kind == Other {
			e.Kind = prev.Kind
			prev.Kind = Other
		}
		if prev.Severity == e.Severity || e.Severity == Unknown {
			e.Severity = prev.Severity
			prev.Severity = Unknown
		}
	default:
		if e.Kind != Other {
			break
		}
		for kind := Kind(0); kind < maxKind; kind++ {
			stdErr := kindStdErrs[kind]
			if stdErr != nil && errors.Is(e.Err, stdErr) {
				e.Kind = kind
				break
			}
		}
	}
	return e
}

// Recover recovers any error into an *Error. If err is already an
// *Error, it is returned unchanged; otherwise it is wrapped.
func Recover(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return E(err).(*Error)
}

// Error returns a human readable string describing this error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b bytes.Buffer
	e.writeError(&b)
	return b.String()
}

func (e *Error) writeError(b *bytes.Buffer) {
	if e.Message != "" {
		pad(b, ": ")
		b.WriteString(e.Message)
	}
	if e.Kind != Other {
		pad(b, ": ")
		b.WriteString(e.Kind.String())
	}
	if e.Severity != Unknown {
		pad(b, " ")
		b.WriteByte('(')
		b.WriteString(e.Severity.String())
		b.WriteByte(')')
	}
	if e.Err == nil {
		return
	}
	if err, ok := e.Err.(*Error); ok {
		pad(b, Separator)
		b.WriteString(err.Error())
	} else {
		pad(b, ": ")
		b.WriteString(e.Err.Error())
	}
}

// Unwrap returns e's cause, if any, letting the standard library's
// errors.Unwrap and errors.As work with *Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is tells whether e.Kind corresponds to the standard-library
// sentinel err, e.g. errors.Is(e, os.ErrNotExist).
func (e *Error) Is(err error) bool {
	if err == nil {
		return false
	}
	return err == kindStdErrs[e.Kind]
}

type gobError struct {
	Kind     Kind
	Severity Severity
	Message  string
	Next     *gobError
	Err      string
}

func (ge *gobError) toError() *Error {
	e := &Error{Kind: ge.Kind, Severity: ge.Severity, Message: ge.Message}
	if ge.Next != nil {
		e.Err = ge.Next.toError()
	} else if ge.Err != "" {
		e.Err = errors.New(ge.Err)
	}
	return e
}

func (e *Error) toGobError() *gobError {
	ge := &gobError{Kind: e.Kind, Severity: e.Severity, Message: e.Message}
	if e.Err == nil {
		return ge
	}
	switch arg := e.Err.(type) {
	case *Error:
		ge.Next = arg.toGobError()
	default:
		ge.Err = arg.Error()
	}
	return ge
}

// GobEncode encodes the error for gob, replacing any underlying
// error unknown to gob with its error string.
func (e *Error) GobEncode() ([]byte, error) {
	var b bytes.Buffer
	err := gob.NewEncoder(&b).Encode(e.toGobError())
	return b.Bytes(), err
}

// GobDecode decodes an error encoded by GobEncode.
func (e *Error) GobDecode(p []byte) error {
	var ge gobError
	if err := gob.NewDecoder(bytes.NewBuffer(p)).Decode(&ge); err != nil {
		return err
	}
	*e = *ge.toError()
	return nil
}

// Is tells whether err's kind is kind, except for the indeterminate
// kind Other, in which case the chain is traversed until a non-Other
// kind is found.
func Is(kind Kind, err error) bool {
	if err == nil {
		return false
	}
	return is(kind, Recover(err))
}

func is(kind Kind, e *Error) bool {
	if e.Kind != Other {
		return e.Kind == kind
	}
	if e.Err != nil {
		if e2, ok := e.Err.(*Error); ok {
			return is(kind, e2)
		}
	}
	return false
}

// Match tells whether every nonempty field in err1 matches the
// corresponding field in err2, recursing on chained causes. Match is
// designed to aid testing.
func Match(err1, err2 error) bool {
	e1, e2 := Recover(err1), Recover(err2)
	if e1.Kind != Other && e1.Kind != e2.Kind {
		return false
	}
	if e1.Severity != Unknown && e1.Severity != e2.Severity {
		return false
	}
	if e1.Message != "" && e1.Message != e2.Message {
		return false
	}
	if e1.Err != nil {
		if e2.Err == nil {
			return false
		}
		switch e1.Err.(type) {
		case *Error:
			return Match(e1.Err, e2.Err)
		default:
			return e1.Err.Error() == e2.Err.Error()
		}
	}
	return true
}

// Visit calls callback for every error in the chain starting at err,
// stopping once a non-*Error cause is reached (callback is still
// called once more for that terminal error).
func Visit(err error, callback func(err error)) {
	callback(err)
	for {
		next, ok := err.(*Error)
		if !ok {
			break
		}
		err = next.Err
		callback(err)
	}
}

// New is synonymous with the standard library's errors.New, provided
// here so callers need import only one errors package.
func New(msg string) error {
	return errors.New(msg)
}

func pad(b *bytes.Buffer, s string) {
	if b.Len() == 0 {
		return
	}
	b.WriteString(s)
}
