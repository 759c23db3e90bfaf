package nanoscope

import (
	"bytes"
	"fmt"
)

// headerSize is where the pixel blocks of a fixture start.
const headerSize = 4096

// Global part of a fixture header, as written by the instrument.
var fixtureGlobal = []string{
	`\Version: 0x09300201`,
	`\Date: 02:35:56 PM Tue Jan 10 2023`,
	`\*Scanner list`,
	`\@Sens. Zsens: V 33.97668 nm/V`,
	`\*Ciao scan list`,
	`\Scan Size: 5000 5000 nm`,
	`\@1:Z limit: V [Sens. Zsens] (0.006714 V/LSB) 440.0 V`,
}

type fixtureImage struct {
	lines   []string // Section lines besides geometry.
	rows    int
	cols    int
	bps     int   // Written as "Bytes/pixel" when not 0, 2 otherwise.
	length  int64 // Declared "Data length", rows*cols*bps when 0.
	samples []int32
	short   bool // Store the samples only, without padding to length.
}

func (m fixtureImage) width() int {
	if m.bps == 0 {
		return 2
	}
	return m.bps
}

func (m fixtureImage) declared() int64 {
	if m.length != 0 {
		return m.length
	}
	return int64(m.rows * m.cols * m.width())
}

// heightImage returns a 2x2 "Height" channel scaled by Sens. Zsens.
func heightImage(samples ...int32) fixtureImage {
	return fixtureImage{
		lines: []string{
			`\Data type: AFM`,
			`\@2:Image Data: S [Height] "Height"`,
			`\@2:Z scale: V [Sens. Zsens] (0.006714 V/LSB) 440.0 V`,
			`\@Z magnify: C [2:Z scale] 0.599`,
		},
		rows:    2,
		cols:    2,
		samples: samples,
	}
}

// buildFile assembles an SPM file: header lines, zero padding up to
// headerSize, then the pixel blocks in section order. Samples beyond the
// declared length are dropped.
func buildFile(global []string, images ...fixtureImage) []byte {
	var b bytes.Buffer
	w := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\r\n", args...)
	}

	w(`\*File list`)
	for _, l := range global {
		w("%s", l)
	}
	offset := int64(headerSize)
	for _, m := range images {
		w(`\*Ciao image list`)
		w(`\Data offset: %d`, offset)
		w(`\Data length: %d`, m.declared())
		if m.bps != 0 {
			w(`\Bytes/pixel: %d`, m.bps)
		}
		w(`\Samps/line: %d`, m.cols)
		w(`\Number of lines: %d`, m.rows)
		for _, l := range m.lines {
			w("%s", l)
		}
		offset += m.declared()
	}
	w(`\*File list end`)

	if b.Len() > headerSize {
		panic("fixture header too large")
	}
	b.Write(make([]byte, headerSize-b.Len()))

	for _, m := range images {
		size := m.declared()
		if m.short {
			size = int64(len(m.samples) * m.width())
		}
		data := make([]byte, size)
		for i, s := range m.samples {
			if int64((i+1)*m.width()) > size {
				break
			}
			switch m.width() {
			case 2:
				le.PutUint16(data[2*i:], uint16(int16(s)))
			case 4:
				le.PutUint32(data[4*i:], uint32(s))
			}
		}
		b.Write(data)
	}
	return b.Bytes()
}
