package tape

import (
	"io"
	"unsafe"

	"github.com/tapesort/tapesort/errors"
)

// sizeOf returns the in-memory width of a single element of T. T is
// constrained to fixed-width integers, so this is exactly the width
// of its on-disk record: a Tape stores elements in native byte order
// with no framing.
func sizeOf[T Integer](zero T) uintptr {
	return unsafe.Sizeof(zero)
}

// ElemSize returns the on-disk width, in bytes, of a tape element of
// type T.
func ElemSize[T Integer]() int64 {
	var zero T
	return int64(unsafe.Sizeof(zero))
}

// asBytes reinterprets buf's backing array as a byte slice, with no
// copy. It is the mechanism by which a Tape's page is read from and
// written to disk in native byte order.
func asBytes[T Integer](buf []T) []byte {
	if len(buf) == 0 {
		return nil
	}
	elemSize := int(sizeOf(buf[0]))
	return unsafe.Slice((*byte)(unsafe.Pointer(&buf[0])), len(buf)*elemSize)
}

// load reads page s from the backing file into the resident buffer,
// zero-filling any portion of the page at or past the tape's logical
// length L. The previously resident page must already have been
// flushed; load does not do so itself.
func (t *Tape[T]) load(s int64) error {
	for i := range t.buf {
		t.buf[i] = 0
	}
	t.slice = s
	t.dirty = false

	base := s * t.pageSize
	if base >= t.length {
		return nil
	}
	avail := t.length - base
	if avail > t.pageSize {
		avail = t.pageSize
	}

	elemSize := int64(sizeOf(t.buf[0]))
	dst := asBytes(t.buf[:avail])
	n, err := t.file.ReadAt(dst, base*elemSize)
	if err != nil && err != io.EOF {
		return errors.E(errors.TapeIO, "reading tape "+t.path, err)
	}
	if int64(n) < int64(len(dst)) {
		for i := n; i < len(dst); i++ {
			dst[i] = 0
		}
	}
	return nil
}

// flush writes the resident page back to the backing file if it is
// dirty, then clears the dirty flag. It never writes past the tape's
// logical length L.
func (t *Tape[T]) flush() error {
	if !t.dirty {
		return nil
	}
	base := t.slice * t.pageSize
	avail := t.length - base
	if avail <= 0 {
		t.dirty = false
		return nil
	}
	if avail > t.pageSize {
		avail = t.pageSize
	}

	elemSize := int64(sizeOf(t.buf[0]))
	src := asBytes(t.buf[:avail])
	if _, err := t.file.WriteAt(src, base*elemSize); err != nil {
		return errors.E(errors.TapeIO, "writing tape "+t.path, err)
	}
	t.dirty = false
	return nil
}
