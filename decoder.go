package nanoscope

import (
	"io"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

type decoder struct {
	*idf
	opts Options

	buf []byte // Raw pixel block of the current descriptor.
}

func newDecoder(r io.ReaderAt, opts Options) (*decoder, error) {
	idf, err := newIDF(r, opts.logger())
	if err != nil {
		return nil, err
	}
	return &decoder{
		idf:  idf,
		opts: opts,
	}, nil
}

// read loads the raw pixel block of the descriptor into d.buf. The block is
// only allocated once its last byte is known to be present.
func (d *decoder) read(desc *Descriptor) (err error) {
	n := desc.sampleBytes()
	if desc.Offset > math.MaxInt64-n {
		return &SizeError{Channel: desc.Channel, Need: n}
	}

	if have, err := d.available(desc.Offset, n); err != nil {
		return errors.Wrapf(err, "nanoscope: read %s pixel block", desc.Channel)
	} else if have < n {
		return &SizeError{Channel: desc.Channel, Need: n, Have: have}
	}

	var got int
	if b, ok := d.r.(*buffer); ok {
		d.buf, err = b.Slice(int(desc.Offset), int(n))
		got = len(d.buf)
	} else {
		d.buf = make([]byte, n)
		got, err = d.r.ReadAt(d.buf, desc.Offset)
	}

	switch {
	case int64(got) == n:
		return nil
	case err == nil || err == io.EOF || err == io.ErrUnexpectedEOF:
		return &SizeError{Channel: desc.Channel, Need: n, Have: int64(got)}
	default:
		return errors.Wrapf(err, "nanoscope: read %s pixel block", desc.Channel)
	}
}

// available returns how many of the n bytes starting at offset the input
// holds, probing the last byte first.
func (d *decoder) available(offset, n int64) (int64, error) {
	p := make([]byte, 1)
	if _, err := d.r.ReadAt(p, offset+n-1); err == nil {
		return n, nil
	} else if err != io.EOF && err != io.ErrUnexpectedEOF {
		return 0, err
	}
	return io.Copy(io.Discard, io.NewSectionReader(d.r, offset, n))
}

// decode reads and calibrates the image described by desc. Samples are
// little-endian signed integers stored row-major.
func (d *decoder) decode(desc *Descriptor) (*Image, error) {
	if err := d.read(desc); err != nil {
		return nil, err
	}

	raw := make([]float64, desc.Rows*desc.Cols)
	switch desc.BytesPerSample {
	case 2:
		decodeInt16(raw, d.buf)
	case 4:
		decodeInt32(raw, d.buf)
	default:
		return nil, UnsupportedError("sample width")
	}

	if d.opts.FlipVertical {
		flipRows(raw, desc.Cols)
	}

	data := mat.NewDense(desc.Rows, desc.Cols, raw)
	data.Scale(desc.Scale.Factor, data)

	log := d.opts.logger()
	log.Debug().
		Str("channel", desc.Channel).
		Int("rows", desc.Rows).
		Int("cols", desc.Cols).
		Int("bytes_per_sample", desc.BytesPerSample).
		Int64("offset", desc.Offset).
		Float64("factor", desc.Scale.Factor).
		Str("unit", desc.Scale.SampleUnit()).
		Msg("image decoded")

	return &Image{
		Descriptor: *desc,
		Unit:       desc.Scale.SampleUnit(),
		Data:       data,
	}, nil
}
