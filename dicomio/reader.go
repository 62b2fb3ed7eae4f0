// Package dicomio implements the positioned, counted byte-level reader the
// core's stream reader module builds on: endian-aware primitive reads, a
// push/pop limit stack for nested length-prefixed regions, and a push/pop
// transfer-syntax stack for the brief excursions into explicit-little-endian
// encoding (the file-meta group) that a file otherwise
// encoded some other way still requires.
package dicomio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/tanager-health/dicomcore/dicomerr"
)

// IsImplicitVR distinguishes implicit-VR from explicit-VR element framing.
type IsImplicitVR int

const (
	ImplicitVR IsImplicitVR = iota
	ExplicitVR
)

type transferSyntaxEntry struct {
	byteOrder binary.ByteOrder
	implicit  IsImplicitVR
}

type limitEntry struct {
	limit int64
	err   error
}

// Reader decodes low-level DICOM data types from a seekable byte source.
// All read methods accumulate errors internally rather than returning them
// individually -- check Error() (or Finish()) after a sequence of reads,
// matching the teacher's Decoder idiom.
type Reader struct {
	src       io.ReadSeeker
	err       error
	byteOrder binary.ByteOrder
	implicit  IsImplicitVR

	pos   int64
	limit int64

	tsStack    []transferSyntaxEntry
	limitStack []limitEntry
}

// NewReader creates a Reader over src starting in the given transfer
// syntax. The caller guarantees src is positioned at the start of the
// region the Reader should see.
func NewReader(src io.ReadSeeker, byteOrder binary.ByteOrder, implicit IsImplicitVR) *Reader {
	return &Reader{
		src:       src,
		byteOrder: byteOrder,
		implicit:  implicit,
		limit:     math.MaxInt64,
	}
}

// SetError records err as the first error encountered, if none is set yet.
func (r *Reader) SetError(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

// SetErrorf is shorthand for SetError(dicomerr.New(kind, format, args...)).
func (r *Reader) SetErrorf(kind dicomerr.Kind, format string, args ...interface{}) {
	r.SetError(dicomerr.New(kind, format, args...))
}

// Error returns the first error encountered, if any.
func (r *Reader) Error() error { return r.err }

// Finish returns Error(), or an error if unconsumed bytes remain within the
// current limit.
func (r *Reader) Finish() error {
	if r.err != nil {
		return r.err
	}
	if !r.EOF() {
		return dicomerr.New(dicomerr.Malformed, "reader has %d unconsumed byte(s)", r.limit-r.pos)
	}
	return nil
}

// TransferSyntax returns the active byte order and VR framing mode.
func (r *Reader) TransferSyntax() (binary.ByteOrder, IsImplicitVR) {
	return r.byteOrder, r.implicit
}

// PushTransferSyntax temporarily switches encoding; PopTransferSyntax
// restores the prior one.
func (r *Reader) PushTransferSyntax(byteOrder binary.ByteOrder, implicit IsImplicitVR) {
	r.tsStack = append(r.tsStack, transferSyntaxEntry{r.byteOrder, r.implicit})
	r.byteOrder = byteOrder
	r.implicit = implicit
}

// PopTransferSyntax undoes the most recent PushTransferSyntax.
func (r *Reader) PopTransferSyntax() {
	last := len(r.tsStack) - 1
	e := r.tsStack[last]
	r.byteOrder = e.byteOrder
	r.implicit = e.implicit
	r.tsStack = r.tsStack[:last]
}

// PushLimit temporarily narrows the readable region to the next n bytes,
// remembering the old limit (and clearing the error so a caller can
// recover from overruns within a defined-length region). n must not
// extend past the current limit.
func (r *Reader) PushLimit(n int64) {
	newLimit := r.pos + n
	if newLimit > r.limit {
		r.SetErrorf(dicomerr.Malformed, "requested limit of %d bytes extends %d bytes past the enclosing region", n, newLimit-r.limit)
		newLimit = r.limit
	}
	r.limitStack = append(r.limitStack, limitEntry{limit: r.limit, err: r.err})
	r.limit = newLimit
	r.err = nil
}

// PopLimit restores the limit (and any pre-existing error) saved by the
// matching PushLimit, first skipping any bytes the caller left unconsumed
// within the narrowed region -- a defensive measure against malformed
// inputs that declare a length longer than what they actually encode.
func (r *Reader) PopLimit() {
	if r.pos < r.limit {
		r.Skip(int(r.limit - r.pos))
	}
	last := len(r.limitStack) - 1
	e := r.limitStack[last]
	r.limit = e.limit
	if e.err != nil {
		r.err = e.err
	}
	r.limitStack = r.limitStack[:last]
}

// Pos returns the Reader's current offset: the number of bytes consumed
// since the Reader was created, or, after SeekTo, the offset passed to it
// plus the bytes consumed since.
func (r *Reader) Pos() int64 { return r.pos }

func (r *Reader) remaining() int64 { return r.limit - r.pos }

// EOF reports whether no more bytes can be read: an error has already been
// recorded, the current limit has been reached, or the underlying source
// is exhausted.
func (r *Reader) EOF() bool {
	if r.err != nil {
		return true
	}
	if r.remaining() <= 0 {
		return true
	}
	var probe [1]byte
	n, _ := r.src.Read(probe[:])
	if n == 0 {
		return true
	}
	// Un-read the probed byte.
	if _, serr := r.src.Seek(-1, io.SeekCurrent); serr != nil {
		r.SetError(serr)
		return true
	}
	return false
}

// SeekTo repositions the underlying source to an absolute byte offset and
// resets the Reader's position counter and limit stacks. It is the
// caller's responsibility to know that offset is meaningful -- this is how
// the parser rewinds to the pixel-data element header, and how the pixel
// data indexer jumps directly to a frame's byte offset.
func (r *Reader) SeekTo(offset int64) error {
	if _, err := r.src.Seek(offset, io.SeekStart); err != nil {
		r.SetError(err)
		return err
	}
	r.pos = offset
	r.limit = math.MaxInt64
	r.limitStack = nil
	r.err = nil
	return nil
}

// Read implements io.Reader, bounded by the current limit.
func (r *Reader) Read(p []byte) (int, error) {
	avail := r.remaining()
	if avail <= 0 {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	if int64(len(p)) > avail {
		p = p[:avail]
	}
	n, err := r.src.Read(p)
	r.pos += int64(n)
	return n, err
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() byte {
	var v [1]byte
	if _, err := io.ReadFull(r, v[:]); err != nil {
		r.SetError(err)
		return 0
	}
	return v[0]
}

func (r *Reader) readFixed(size int) []byte {
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		r.SetError(err)
		return make([]byte, size)
	}
	return buf
}

// ReadUInt16 reads a 16-bit unsigned integer in the active byte order.
func (r *Reader) ReadUInt16() uint16 { return r.byteOrder.Uint16(r.readFixed(2)) }

// ReadUInt32 reads a 32-bit unsigned integer in the active byte order.
func (r *Reader) ReadUInt32() uint32 { return r.byteOrder.Uint32(r.readFixed(4)) }

// ReadUInt64 reads a 64-bit unsigned integer in the active byte order.
func (r *Reader) ReadUInt64() uint64 { return r.byteOrder.Uint64(r.readFixed(8)) }

// ReadInt16 reads a 16-bit signed integer in the active byte order.
func (r *Reader) ReadInt16() int16 { return int16(r.ReadUInt16()) }

// ReadInt32 reads a 32-bit signed integer in the active byte order.
func (r *Reader) ReadInt32() int32 { return int32(r.ReadUInt32()) }

// ReadInt64 reads a 64-bit signed integer in the active byte order.
func (r *Reader) ReadInt64() int64 { return int64(r.ReadUInt64()) }

// ReadFloat32 reads an IEEE-754 single-precision float in the active byte order.
func (r *Reader) ReadFloat32() float32 { return math.Float32frombits(r.ReadUInt32()) }

// ReadFloat64 reads an IEEE-754 double-precision float in the active byte order.
func (r *Reader) ReadFloat64() float64 { return math.Float64frombits(r.ReadUInt64()) }

// ReadBytes reads length raw bytes.
func (r *Reader) ReadBytes(length int) []byte {
	if length == 0 {
		return nil
	}
	if r.remaining() < int64(length) {
		r.SetErrorf(dicomerr.IOError, "ReadBytes: requested %d bytes, %d available", length, r.remaining())
		return nil
	}
	buf := make([]byte, length)
	remaining := buf
	for len(remaining) > 0 {
		n, err := r.Read(remaining)
		if err != nil {
			r.SetError(err)
			break
		}
		remaining = remaining[n:]
	}
	return buf
}

// ReadString reads length bytes and returns them as a string, verbatim.
func (r *Reader) ReadString(length int) string {
	return string(r.ReadBytes(length))
}

// Skip discards length bytes without returning them.
func (r *Reader) Skip(length int) {
	if length <= 0 {
		return
	}
	if r.remaining() < int64(length) {
		r.SetErrorf(dicomerr.IOError, "Skip: requested %d bytes, %d available", length, r.remaining())
		return
	}
	const chunk = 1 << 16
	remaining := length
	buf := make([]byte, chunk)
	for remaining > 0 {
		n := chunk
		if remaining < n {
			n = remaining
		}
		read, err := r.Read(buf[:n])
		if err != nil {
			r.SetError(err)
			return
		}
		if read <= 0 {
			r.SetError(fmt.Errorf("Skip: short read"))
			return
		}
		remaining -= read
	}
}
