package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// maxDirectRead is the largest byte run allocated up front. Longer runs grow
// as data actually arrives so a forged length cannot force a huge allocation.
const maxDirectRead = 1 << 16

// maxNesting bounds recursion through element values and nested annotations.
const maxNesting = 64

// reader reads big-endian values from a sequential byte source and tracks the
// offset for error reporting.
type reader struct {
	r     io.Reader
	pos   int64
	buf   [8]byte
	depth int
}

func newReader(r io.Reader) *reader {
	return &reader{r: r}
}

func (r *reader) readFull(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.pos += int64(n)
	if err != nil {
		return r.ioError(err)
	}
	return nil
}

func (r *reader) ioError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &ParseError{Kind: UnexpectedEOF, Offset: r.pos}
	}
	return fmt.Errorf("classfile: read at offset %d: %w", r.pos, err)
}

func (r *reader) u1() (uint8, error) {
	if err := r.readFull(r.buf[:1]); err != nil {
		return 0, err
	}
	return r.buf[0], nil
}

func (r *reader) u2() (uint16, error) {
	if err := r.readFull(r.buf[:2]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[:2]), nil
}

func (r *reader) u4() (uint32, error) {
	if err := r.readFull(r.buf[:4]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.buf[:4]), nil
}

func (r *reader) u8() (uint64, error) {
	if err := r.readFull(r.buf[:8]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(r.buf[:8]), nil
}

// bytes reads exactly n bytes.
func (r *reader) bytes(n int64) ([]byte, error) {
	if n <= maxDirectRead {
		p := make([]byte, n)
		if err := r.readFull(p); err != nil {
			return nil, err
		}
		return p, nil
	}
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r.r, n)
	r.pos += copied
	if err != nil {
		return nil, r.ioError(err)
	}
	return buf.Bytes(), nil
}

// skip discards exactly n bytes.
func (r *reader) skip(n int64) error {
	copied, err := io.CopyN(io.Discard, r.r, n)
	r.pos += copied
	if err != nil {
		return r.ioError(err)
	}
	return nil
}

// u2s reads a u2 count followed by that many u2 values.
func (r *reader) u2s() ([]uint16, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, count)
	for i := range out {
		if out[i], err = r.u2(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// limited runs fn with the source restricted to the next n bytes. Any bytes
// fn leaves unread, or any attempt to read past n, is reported as
// InvalidAttributeLength.
func (r *reader) limited(n int64, fn func() error) error {
	outer := r.r
	lr := &io.LimitedReader{R: outer, N: n}
	r.r = lr
	err := fn()
	r.r = outer
	if err != nil {
		var pe *ParseError
		if lr.N == 0 && errors.As(err, &pe) && pe.Kind == UnexpectedEOF {
			pe.Kind = InvalidAttributeLength
			pe.Detail = fmt.Sprintf("contents exceed declared length %d", n)
		}
		return err
	}
	if lr.N != 0 {
		return r.fail(InvalidAttributeLength, "%d of %d declared bytes left unread", lr.N, n)
	}
	return nil
}

// enter bumps the nesting depth; the returned func restores it.
func (r *reader) enter() (func(), error) {
	if r.depth >= maxNesting {
		return nil, r.fail(NestingTooDeep, "more than %d levels", maxNesting)
	}
	r.depth++
	return func() { r.depth-- }, nil
}

func (r *reader) fail(kind ErrorKind, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Offset: r.pos, Detail: fmt.Sprintf(format, args...)}
}
