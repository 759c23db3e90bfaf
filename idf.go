package nanoscope

import (
	"bufio"
	"bytes"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
)

//------------------------//
// Header parser          //
//------------------------//

type (
	// line is a classified header line.
	line struct {
		typ  lineType
		text string // Latin-1 decoded, without line ending.
		name string // Section name for ltSection.
		end  int64  // Byte offset right after the line.
	}

	idf struct {
		r     io.ReaderAt
		end   int64 // Offset of the first byte after the header.
		lines int
		table *Table
	}
)

func newIDF(r io.ReaderAt, log zerolog.Logger) (*idf, error) {
	lines, err := classifyLines(io.NewSectionReader(r, 0, math.MaxInt64))
	if err != nil {
		return nil, err
	}

	t, err := newTable(lines)
	if err != nil {
		return nil, err
	}

	d := &idf{
		r:     r,
		end:   lines[len(lines)-1].end,
		lines: len(lines),
		table: t,
	}
	log.Debug().
		Int64("header_bytes", d.end).
		Int("lines", d.lines).
		Int("parameters", len(t.params)).
		Int("sections", len(t.sections)).
		Msg("header parsed")
	return d, nil
}

// classifyLines reads header lines until the end-of-header sentinel. Offsets
// are counted on raw bytes, before any text decoding.
func classifyLines(r io.Reader) ([]line, error) {
	br := bufio.NewReader(r)
	dec := charmap.ISO8859_1.NewDecoder()

	var lines []line
	var offset int64
	for {
		raw, err := br.ReadBytes('\n')
		offset += int64(len(raw))
		if len(raw) > 0 {
			l, derr := classify(raw, dec.Bytes)
			if derr != nil {
				return nil, errors.Wrap(derr, "nanoscope: decode header line")
			}
			l.end = offset
			lines = append(lines, l)
			if l.typ == ltEnd {
				return lines, nil
			}
		}
		if err == io.EOF {
			return nil, FormatError(`missing "\*File list end" sentinel`)
		}
		if err != nil {
			return nil, errors.Wrap(err, "nanoscope: read header")
		}
	}
}

// classify tags one raw header line.
func classify(raw []byte, decode func([]byte) ([]byte, error)) (line, error) {
	raw = bytes.TrimRight(raw, "\r\n")
	if string(bytes.TrimSpace(raw)) == fileTrailer {
		return line{typ: ltEnd, text: fileTrailer}, nil
	}

	b, err := decode(raw)
	if err != nil {
		return line{}, err
	}
	text := string(b)

	l := line{typ: ltPlain, text: text}
	if len(text) < 2 || text[0] != lineMarker {
		return l, nil
	}
	switch text[1] {
	case ciaoMarker:
		l.typ = ltParameter
	case sectionMarker:
		l.typ = ltSection
		l.name = strings.TrimSpace(text[2:])
	}
	return l, nil
}
