package nanoscope

import (
	"fmt"
	"math"
	"strconv"

	"github.com/mdouchement/nanoscope/units"
	"github.com/pkg/errors"
)

// A Descriptor locates one channel's pixel block and carries everything
// needed to calibrate it.
type Descriptor struct {
	Channel        string // Unique key, e.g. "Height", "ZSensor", "ZSensor_2".
	Title          string // Human-readable name.
	DataType       string // e.g. "AFM", may be empty.
	Rows           int
	Cols           int
	BytesPerSample int
	Offset         int64 // Start of the pixel block in the file.
	Length         int64 // Declared length of the pixel block.
	Width          units.Quantity
	Height         units.Quantity
	Scale          Conversion // Raw sample to physical value.
	Section        int
}

// sampleBytes returns the number of bytes of the pixel block. The assembler
// rejects geometries for which it overflows.
func (d *Descriptor) sampleBytes() int64 {
	return int64(d.Rows) * int64(d.Cols) * int64(d.BytesPerSample)
}

// assemble builds one descriptor per "Ciao image list" section.
func (t *Table) assemble(opts Options) ([]*Descriptor, error) {
	var descs []*Descriptor
	seen := make(map[string]bool)

	for _, s := range t.sectionsNamed(sImageList) {
		d, err := t.describe(s, opts)
		if err != nil {
			return nil, err
		}

		key := d.Channel
		for n := 2; seen[key]; n++ {
			key = d.Channel + "_" + strconv.Itoa(n)
		}
		seen[key] = true
		d.Channel = key

		descs = append(descs, d)
	}
	return descs, nil
}

func (t *Table) describe(s *Section, opts Options) (*Descriptor, error) {
	d := &Descriptor{
		Channel: "Image",
		Section: s.Index,
	}
	name := fmt.Sprintf("%s %d", sImageList, s.Number)

	if p, ok := t.Local(s.Index, lImageData); ok && p.Kind == Select {
		if p.Internal != "" {
			d.Channel = p.Internal
		}
		d.Title = p.External
	}
	if d.Title == "" {
		d.Title = d.Channel
	}
	if p, ok := t.Local(s.Index, lDataType); ok {
		d.DataType, _ = p.Value.Text()
	}

	rows, err := t.intIn(s.Index, lNumberOfLines)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	cols, err := t.intIn(s.Index, lSampsPerLine)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	d.Rows, d.Cols = int(rows), int(cols)
	if d.Offset, err = t.intIn(s.Index, lDataOffset); err != nil {
		return nil, errors.Wrap(err, name)
	}
	if d.Length, err = t.intIn(s.Index, lDataLength); err != nil {
		return nil, errors.Wrap(err, name)
	}
	if d.Rows <= 0 || d.Cols <= 0 || d.Offset < 0 || d.Length < 0 {
		return nil, FormatError(fmt.Sprintf("%s: invalid geometry %dx%d at offset %d", name, d.Rows, d.Cols, d.Offset))
	}

	// Sample width: explicit override, else inferred from the data length.
	d.BytesPerSample = defaultBytesPerSample
	if _, ok := t.Local(s.Index, lBytesPerPixel); ok {
		n, err := t.intIn(s.Index, lBytesPerPixel)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		d.BytesPerSample = int(n)
	} else if d.Length == int64(d.Rows)*int64(d.Cols)*4 {
		d.BytesPerSample = 4
	}
	if d.BytesPerSample != 2 && d.BytesPerSample != 4 {
		return nil, UnsupportedError(fmt.Sprintf("%d bytes per sample", d.BytesPerSample))
	}

	if int64(d.Rows) > math.MaxInt64/int64(d.Cols)/int64(d.BytesPerSample) {
		return nil, &SizeError{Channel: d.Channel, Need: math.MaxInt64, Have: d.Length}
	}
	if need := d.sampleBytes(); need > d.Length {
		return nil, &SizeError{Channel: d.Channel, Need: need, Have: d.Length}
	}

	if d.Width, d.Height, err = t.scanSize(s.Index, d.Rows, d.Cols); err != nil {
		return nil, errors.Wrap(err, name)
	}

	root, ok := t.Local(s.Index, lZScale)
	if !ok {
		return nil, errors.Wrap(ReferenceError(lZScale), name)
	}
	if opts.DeriveHardScale {
		root = derivedHardScale(root, d.BytesPerSample)
	}
	if d.Scale, err = t.Resolve(root, s.Index); err != nil {
		return nil, err
	}

	return d, nil
}

// intIn reads an integral plain value visible from the section.
func (t *Table) intIn(section int, label string) (int64, error) {
	p, ok := t.Lookup(section, label)
	if !ok {
		return 0, KeyError(label)
	}
	n, ok := p.Raw().Int()
	if !ok {
		return 0, &TypeError{Label: label, Want: "integer", Got: p.Raw().String()}
	}
	return n, nil
}

// scanSize returns the physical width and height of an image. Two numbers
// are width and height; a single one applies to the longest side. The image
// section value wins over the scan list one.
func (t *Table) scanSize(section, rows, cols int) (w, h units.Quantity, err error) {
	p, ok := t.Local(section, lScanSize)
	lists := t.sectionsNamed(sScanList)
	for i := len(lists) - 1; i >= 0 && !ok; i-- {
		p, ok = t.Local(lists[i].Index, lScanSize)
	}
	if !ok {
		p, ok = t.Lookup(-1, lScanSize)
	}
	if !ok {
		return w, h, KeyError(lScanSize)
	}

	v := p.Raw()
	if p.Kind == Value || p.Kind == Scale {
		c, err := t.Resolve(p, section)
		if err != nil {
			return w, h, err
		}
		v = QuantityOf(c.Quantity())
	}

	if l, ok := v.List(); ok && len(l) >= 2 {
		qw, okw := l[0].Quantity()
		qh, okh := l[1].Quantity()
		if okw && okh {
			return qw, qh, nil
		}
	}
	if q, ok := v.Quantity(); ok {
		longest := float64(maxInt(rows, cols))
		return q.Scale(float64(cols) / longest), q.Scale(float64(rows) / longest), nil
	}
	return w, h, &TypeError{Label: lScanSize, Want: "quantity", Got: v.Type().String()}
}
