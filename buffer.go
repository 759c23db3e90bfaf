package nanoscope

import "io"

// buffer buffers an io.Reader to satisfy io.ReaderAt. Data is read on
// demand and kept in memory.
//
// Adapted from golang.org/x/image/tiff (BSD-style license, Copyright 2011
// The Go Authors). The buffer grows with the data actually read, so an offset
// far past the end of the input does not allocate up to that offset.
type buffer struct {
	r   io.Reader
	buf []byte
}

// fill reads data from b.r until the buffer contains at least end bytes or
// the reader is exhausted.
func (b *buffer) fill(end int) error {
	for len(b.buf) < end {
		if len(b.buf) == cap(b.buf) {
			grown := make([]byte, len(b.buf), 2*cap(b.buf)+1024)
			copy(grown, b.buf)
			b.buf = grown
		}

		stop := cap(b.buf)
		if end < stop {
			stop = end
		}
		n, err := io.ReadFull(b.r, b.buf[len(b.buf):stop])
		b.buf = b.buf[:len(b.buf)+n]
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *buffer) ReadAt(p []byte, off int64) (int, error) {
	o := int(off)
	end := o + len(p)
	if int64(end) != off+int64(len(p)) {
		return 0, io.ErrUnexpectedEOF
	}

	err := b.fill(end)
	if o >= len(b.buf) {
		if err == nil {
			err = io.EOF
		}
		return 0, err
	}
	n := copy(p, b.buf[o:])
	if n < len(p) && err == nil {
		err = io.EOF
	}
	return n, err
}

// Slice returns a slice of the underlying buffer. The slice contains
// n bytes starting at offset off, or fewer if the data ends early.
func (b *buffer) Slice(off, n int) ([]byte, error) {
	end := off + n
	err := b.fill(end)
	if off >= len(b.buf) {
		return nil, err
	}
	if end > len(b.buf) {
		end = len(b.buf)
	}
	return b.buf[off:end], err
}

// newReaderAt converts an io.Reader into an io.ReaderAt.
func newReaderAt(r io.Reader) io.ReaderAt {
	if ra, ok := r.(io.ReaderAt); ok {
		return ra
	}
	return &buffer{
		r:   r,
		buf: make([]byte, 0, 1024),
	}
}
