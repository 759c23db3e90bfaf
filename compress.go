package nanoscope

import (
	"bytes"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// decompress returns r unchanged unless it holds a zstd stream, in which
// case the whole stream is inflated in memory. Offsets stated in the header
// refer to the uncompressed file.
func decompress(r io.ReaderAt) (io.ReaderAt, error) {
	p := make([]byte, len(zstdMagic))
	if n, err := r.ReadAt(p, 0); n < len(p) || !bytes.Equal(p, zstdMagic) {
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "nanoscope: read file")
		}
		return r, nil
	}

	zr, err := zstd.NewReader(io.NewSectionReader(r, 0, math.MaxInt64))
	if err != nil {
		return nil, errors.Wrap(err, "nanoscope: zstd")
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.Wrap(err, "nanoscope: zstd")
	}
	return bytes.NewReader(data), nil
}
