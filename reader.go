// Package nanoscope decodes Bruker/Nanoscope SPM files: a text header of
// CIAO parameter objects followed by raw pixel blocks. It resolves the
// scale chains of the header and returns calibrated images.
package nanoscope

// Resources:
// Nanoscope Software User Guide, "CIAO parameter objects" (Value, Scale and
// Select definitions, soft/hard scales).
// https://masteringelectronicsdesign.com/an-adc-and-dac-least-significant-bit-lsb/ (LSB)

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mdouchement/hdr/hdrcolor"
	"github.com/mdouchement/nanoscope/units"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Options tune how a file is decoded.
type Options struct {
	// Logger receives debug events. Defaults to a disabled logger.
	Logger *zerolog.Logger
	// FlipVertical reverses the stored row order of every image.
	FlipVertical bool
	// DeriveHardScale recomputes the hard scale of image Z chains as the
	// hard value over the full range of a sample (2^16 or 2^32 LSB) instead
	// of trusting the hard scale written in the header.
	DeriveHardScale bool
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// A File is a decoded SPM file: its parameter table and its calibrated
// images. A File is immutable.
type File struct {
	Name   string
	table  *Table
	images []*Image
	index  map[string]*Image
}

// Open decodes the named file.
func Open(path string) (*File, error) {
	return OpenWithOptions(path, Options{})
}

// OpenWithOptions decodes the named file with the given options. The file is
// closed before returning.
func OpenWithOptions(path string, opts Options) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "nanoscope: open")
	}
	defer f.Close()

	file, err := decode(f, opts)
	if err != nil {
		return nil, err
	}
	file.Name = filepath.Base(path)
	return file, nil
}

// Decode reads an SPM file from r.
func Decode(r io.Reader) (*File, error) {
	return DecodeWithOptions(r, Options{})
}

// DecodeWithOptions reads an SPM file from r with the given options.
func DecodeWithOptions(r io.Reader, opts Options) (*File, error) {
	return decode(newReaderAt(r), opts)
}

func decode(r io.ReaderAt, opts Options) (*File, error) {
	r, err := decompress(r)
	if err != nil {
		return nil, err
	}

	d, err := newDecoder(r, opts)
	if err != nil {
		return nil, err
	}
	if err = d.table.check(); err != nil {
		return nil, err
	}

	descs, err := d.table.assemble(opts)
	if err != nil {
		return nil, err
	}

	f := &File{
		table: d.table,
		index: make(map[string]*Image, len(descs)),
	}
	for _, desc := range descs {
		m, err := d.decode(desc)
		if err != nil {
			return nil, err
		}
		f.images = append(f.images, m)
		f.index[m.Channel] = m
	}
	return f, nil
}

//------------------------//
// Metadata               //
//------------------------//

// Get returns the resolved value of label at global scope. A label held by
// several parameters yields a list of their values in file order.
func (f *File) Get(label string) (ParameterValue, error) {
	params := f.table.All(label)
	switch len(params) {
	case 0:
		return ParameterValue{}, KeyError(label)
	case 1:
		p := params[0]
		return f.table.ValueOf(p, p.Section)
	}

	values := make([]ParameterValue, 0, len(params))
	for _, p := range params {
		v, err := f.table.ValueOf(p, p.Section)
		if err != nil {
			return ParameterValue{}, err
		}
		values = append(values, v)
	}
	return ListOf(values...), nil
}

// Quantity returns the resolved quantity of label.
func (f *File) Quantity(label string) (units.Quantity, error) {
	v, err := f.Get(label)
	if err != nil {
		return units.Quantity{}, err
	}
	q, ok := v.Quantity()
	if !ok {
		return units.Quantity{}, &TypeError{Label: label, Want: "quantity", Got: v.Type().String()}
	}
	return q, nil
}

// Text returns the string value of label.
func (f *File) Text(label string) (string, error) {
	v, err := f.Get(label)
	if err != nil {
		return "", err
	}
	s, ok := v.Text()
	if !ok {
		return "", &TypeError{Label: label, Want: "string", Got: v.Type().String()}
	}
	return s, nil
}

// Int returns the integral value of label.
func (f *File) Int(label string) (int64, error) {
	v, err := f.Get(label)
	if err != nil {
		return 0, err
	}
	n, ok := v.Int()
	if !ok {
		return 0, &TypeError{Label: label, Want: "integer", Got: v.Type().String()}
	}
	return n, nil
}

// Parameter returns the last parameter with the given label.
func (f *File) Parameter(label string) (*Parameter, error) {
	p, ok := f.table.Lookup(-1, label)
	if !ok {
		return nil, KeyError(label)
	}
	return p, nil
}

// Resolve returns the conversion of the last parameter with the given label.
func (f *File) Resolve(label string) (Conversion, error) {
	p, err := f.Parameter(label)
	if err != nil {
		return Conversion{}, err
	}
	return f.table.Resolve(p, p.Section)
}

// Table returns the parameter table of the file.
func (f *File) Table() *Table {
	return f.table
}

// Sections returns the header sections in file order.
func (f *File) Sections() []*Section {
	return f.table.Sections()
}

// Groups returns the CIAO parameters by group number. Parameters without
// group number are under -1.
func (f *File) Groups() map[int][]*Parameter {
	g := make(map[int][]*Parameter)
	for _, p := range f.table.Parameters() {
		if p.Kind == Plain {
			continue
		}
		k := -1
		if p.Grouped {
			k = p.Group
		}
		g[k] = append(g[k], p)
	}
	return g
}

//------------------------//
// Images                 //
//------------------------//

// Channels returns the channel keys in file order.
func (f *File) Channels() []string {
	keys := make([]string, 0, len(f.images))
	for _, m := range f.images {
		keys = append(keys, m.Channel)
	}
	return keys
}

// Image returns a copy of the image of the given channel.
func (f *File) Image(channel string) (*Image, error) {
	m, ok := f.index[channel]
	if !ok {
		return nil, KeyError(channel)
	}
	return m.Clone(), nil
}

// Images returns a copy of every image, by channel key.
func (f *File) Images() map[string]*Image {
	images := make(map[string]*Image, len(f.images))
	for _, m := range f.images {
		images[m.Channel] = m.Clone()
	}
	return images
}

func (f *File) String() string {
	keys := f.Channels()
	sort.Strings(keys)
	date := "unknown date"
	if v, err := f.Get(lDate); err == nil {
		date = v.String()
	}
	return fmt.Sprintf("SPM file: %q, %s. Images: [%s]", f.Name, date, strings.Join(keys, ", "))
}

//------------------------//
// image.Decode           //
//------------------------//

// decodeConfig returns the dimensions of the first channel.
func decodeConfig(r io.Reader) (image.Config, error) {
	f, err := Decode(r)
	if err != nil {
		return image.Config{}, err
	}
	if len(f.images) == 0 {
		return image.Config{}, FormatError("no image section")
	}
	m := f.images[0]
	return image.Config{
		ColorModel: hdrcolor.RGBModel,
		Width:      m.Cols,
		Height:     m.Rows,
	}, nil
}

// decodeImage returns the first channel as an HDR image of physical values.
func decodeImage(r io.Reader) (image.Image, error) {
	f, err := Decode(r)
	if err != nil {
		return nil, err
	}
	if len(f.images) == 0 {
		return nil, FormatError("no image section")
	}
	return f.images[0].HDR(), nil
}

func init() {
	image.RegisterFormat("nanoscope", fileHeader, decodeImage, decodeConfig)
}
