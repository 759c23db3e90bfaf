package nanoscope

import (
	"fmt"
	"strings"
)

// A FormatError reports that the input is not a valid Nanoscope file,
// typically because the header markers are missing.
type FormatError string

func (e FormatError) Error() string {
	return fmt.Sprintf("nanoscope: malformed header: %s", string(e))
}

// A ParameterError reports a CIAO parameter line that does not follow the
// grammar of its kind.
type ParameterError struct {
	Line   string
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("nanoscope: unparsable parameter %q: %s", e.Line, e.Reason)
}

// A ReferenceError reports a soft-scale label that cannot be found in any
// scope accessible from the referencing parameter.
type ReferenceError string

func (e ReferenceError) Error() string {
	return fmt.Sprintf("nanoscope: unresolved scale reference %q", string(e))
}

// A CycleError reports a chain of soft-scale references that loops back on
// itself. It holds the labels in visiting order.
type CycleError []string

func (e CycleError) Error() string {
	return fmt.Sprintf("nanoscope: scale cycle: %s", strings.Join(e, " -> "))
}

// A SizeError reports an image whose declared geometry does not fit in the
// declared data length or in the file.
type SizeError struct {
	Channel string
	Need    int64
	Have    int64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("nanoscope: image size mismatch for %s: need %d bytes, have %d", e.Channel, e.Need, e.Have)
}

// A KeyError reports a label absent from the header.
type KeyError string

func (e KeyError) Error() string {
	return fmt.Sprintf("nanoscope: key not found: %s", string(e))
}

// A TypeError reports a typed access to a value of another kind.
type TypeError struct {
	Label string
	Want  string
	Got   string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("nanoscope: %s is %s, not %s", e.Label, e.Got, e.Want)
}

// An UnsupportedError reports that the input uses a valid but
// unimplemented feature.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("nanoscope: unsupported feature: %s", string(e))
}

// maxInt returns the larger of x or y.
func maxInt(a, b int) int {
	if a >= b {
		return a
	}
	return b
}

// unquote strips the surrounding double quotes of s, if any.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
