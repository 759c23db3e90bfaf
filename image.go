package nanoscope

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/mdouchement/nanoscope/units"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// An Image is a calibrated channel: Data holds physical values in Unit,
// row-major with Rows lines of Cols samples.
type Image struct {
	Descriptor
	Unit string
	Data *mat.Dense
}

// At returns the physical value of the sample at row r and column c.
func (m *Image) At(r, c int) units.Quantity {
	return units.Quantity{Value: m.Data.At(r, c), Unit: m.Unit}
}

// Bounds returns the pixel bounds of the image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Cols, m.Rows)
}

// PixelSize returns the physical size of one pixel along x and y.
func (m *Image) PixelSize() (x, y units.Quantity) {
	return spacing(m.Width, m.Cols), spacing(m.Height, m.Rows)
}

// X returns the coordinates of the columns, from 0 to Width.
func (m *Image) X() []float64 {
	return axis(m.Cols, m.Width.Value)
}

// Y returns the coordinates of the lines, from 0 to Height.
func (m *Image) Y() []float64 {
	return axis(m.Rows, m.Height.Value)
}

// Extent returns [0, width, 0, height] in the scan size unit.
func (m *Image) Extent() [4]float64 {
	return [4]float64{0, m.Width.Value, 0, m.Height.Value}
}

// Range returns the smallest and largest physical values of the image.
func (m *Image) Range() (lo, hi float64) {
	raw := m.Data.RawMatrix().Data
	return floats.Min(raw), floats.Max(raw)
}

// Clone returns a deep copy of m.
func (m *Image) Clone() *Image {
	c := *m
	c.Data = mat.DenseCopyOf(m.Data)
	return &c
}

// Gray16 returns the image linearly mapped from its value range to the
// full 16-bit range, for display and export.
func (m *Image) Gray16() *image.Gray16 {
	dst := image.NewGray16(m.Bounds())
	lo, hi := m.Range()
	span := hi - lo
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			var v float64
			if span > 0 {
				v = (m.Data.At(y, x) - lo) / span
			}
			dst.SetGray16(x, y, color.Gray16{Y: uint16(math.Round(v * math.MaxUint16))})
		}
	}
	return dst
}

// HDR returns the image as a floating-point grayscale picture holding the
// physical values.
func (m *Image) HDR() hdr.Image {
	dst := hdr.NewRGB(m.Bounds())
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			v := m.Data.At(y, x)
			dst.SetRGB(x, y, hdrcolor.RGB{R: v, G: v, B: v})
		}
	}
	return dst
}

func (m *Image) String() string {
	px, _ := m.PixelSize()
	return fmt.Sprintf("%s image %q [%s], %dx%d px = (%.1f, %.1f) %s",
		m.DataType, m.Title, m.Unit, m.Rows, m.Cols, m.Height.Value, m.Width.Value, px.Unit)
}

// spacing returns extent/(n-1), the distance between two sample centers.
func spacing(extent units.Quantity, n int) units.Quantity {
	if n < 2 {
		return extent
	}
	return extent.Scale(1 / float64(n-1))
}

// axis returns n evenly spaced coordinates from 0 to extent.
func axis(n int, extent float64) []float64 {
	if n < 2 {
		return make([]float64, n)
	}
	return floats.Span(make([]float64, n), 0, extent)
}
