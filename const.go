package nanoscope

// A Nanoscope file starts with a text header made of lines beginning with a
// backslash. The header is enclosed by two markers and is followed by the
// raw pixel blocks of every recorded channel:
//
//  - "\*Section name" lines open a section of the header,
//  - "\@[group:]Label: T ..." lines carry CIAO parameter objects,
//  - "\Label: value" lines carry plain header values.
//
// The byte offset of each pixel block is stated in its "Ciao image list"
// section ("Data offset"), relative to the start of the file.

const (
	fileHeader  = `\*File list`     // First line of every file.
	fileTrailer = `\*File list end` // Last header line, binary data follows.

	lineMarker    = '\\'
	ciaoMarker    = '@'
	sectionMarker = '*'
)

// Sections of interest.
const (
	sImageList = "Ciao image list"
	sScanList  = "Ciao scan list"
)

// Labels read by the image assembler.
const (
	lDataOffset    = "Data offset"
	lDataLength    = "Data length"
	lBytesPerPixel = "Bytes/pixel"
	lSampsPerLine  = "Samps/line"
	lNumberOfLines = "Number of lines"
	lScanSize      = "Scan Size"
	lImageData     = "Image Data"
	lZScale        = "Z scale"
	lDataType      = "Data type"
	lDate          = "Date"
)

// Default sample width when a section does not state its own.
const defaultBytesPerSample = 2

// Kind is the definition character of a CIAO parameter object.
type Kind int

const (
	// Plain is a header line without a CIAO object ("\Label: value").
	Plain Kind = iota
	// Value ('V') carries a hard value and optional hard and soft scales.
	Value
	// Scale ('C') is a scaled version of another parameter.
	Scale
	// Select ('S') describes a selection with internal and external designations.
	Select
)

func (k Kind) String() string {
	switch k {
	case Value:
		return "V"
	case Scale:
		return "C"
	case Select:
		return "S"
	default:
		return "plain"
	}
}

func kindOf(c string) (Kind, bool) {
	switch c {
	case "V":
		return Value, true
	case "C":
		return Scale, true
	case "S":
		return Select, true
	}
	return Plain, false
}

// lineType is the classification of a header line.
type lineType int

const (
	ltPlain lineType = iota
	ltParameter
	ltSection
	ltEnd
)
