package nanoscope

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mdouchement/nanoscope/units"
)

// A Parameter is one record of the header: either a CIAO parameter object
// ("\@[group:]Label: T body") or a plain header value ("\Label: value").
//
// Value and Scale parameters always carry a HardValue. A Value parameter
// without SoftScale nor HardScale already holds a physical value. Select
// parameters only carry designations.
type Parameter struct {
	Group   int  // Scoping tag, informational only.
	Grouped bool // Whether Group was present.
	Label   string
	Kind    Kind

	SoftScale      string          // Label of the parameter providing the soft scale.
	SoftScaleValue *units.Quantity // Literal soft scale, when the bracket holds a number.
	HardScale      *units.Quantity // LSB to hard value conversion, e.g. "V/LSB".
	HardValue      units.Quantity

	Internal string // Select: machine-facing designation.
	External string // Select: human-facing designation, may be empty.

	Value ParameterValue // Plain: parsed value.

	Section int // Index of the enclosing header section, -1 before any.
}

// Key returns the qualified label, "group:Label" when the parameter has a
// group number.
func (p *Parameter) Key() string {
	if p.Grouped {
		return strconv.Itoa(p.Group) + ":" + p.Label
	}
	return p.Label
}

// Raw returns the unresolved value of the parameter: the hard value for
// Value and Scale parameters, the external designation for Select ones.
func (p *Parameter) Raw() ParameterValue {
	switch p.Kind {
	case Value, Scale:
		return QuantityOf(p.HardValue)
	case Select:
		return StringOf(p.External)
	default:
		return p.Value
	}
}

// String returns the header line of the parameter, without the leading
// backslash.
func (p *Parameter) String() string {
	if p.Kind == Plain {
		return fmt.Sprintf("%s: %s", p.Label, p.Value)
	}

	var b strings.Builder
	b.WriteByte(ciaoMarker)
	b.WriteString(p.Key())
	b.WriteString(": ")
	b.WriteString(p.Kind.String())
	switch p.Kind {
	case Select:
		fmt.Fprintf(&b, " [%s] %q", p.Internal, p.External)
	default:
		switch {
		case p.SoftScale != "":
			fmt.Fprintf(&b, " [%s]", p.SoftScale)
		case p.SoftScaleValue != nil:
			fmt.Fprintf(&b, " [%s]", p.SoftScaleValue)
		}
		if p.HardScale != nil {
			fmt.Fprintf(&b, " (%s)", p.HardScale)
		}
		fmt.Fprintf(&b, " %s", p.HardValue)
	}
	return b.String()
}

//------------------------//
// Parser                 //
//------------------------//

var (
	reParameter = regexp.MustCompile(`^(?:(\d+):)?(.+?): (\w)(?:\s+(.*))?$`)
	reValue     = regexp.MustCompile(`^(?:\[([^\]]*)\]\s*)?(?:\(([^)]*)\)\s*)?(.*)$`)
	reScale     = regexp.MustCompile(`^\[([^\]]+)\]\s+(.+)$`)
	reSelect    = regexp.MustCompile(`^\[([^\]]*)\]\s*"(.*)"$`)
)

// parseParameter parses a CIAO parameter line. The leading "\@" marker is
// optional.
func parseParameter(line string) (*Parameter, error) {
	s := strings.TrimRight(line, "\r\n")
	s = strings.TrimPrefix(s, string(lineMarker))
	s = strings.TrimPrefix(s, string(ciaoMarker))

	m := reParameter.FindStringSubmatch(s)
	if m == nil {
		return nil, &ParameterError{Line: line, Reason: "not a CIAO parameter object"}
	}

	p := &Parameter{
		Label:   strings.TrimSpace(m[2]),
		Section: -1,
	}
	if m[1] != "" {
		p.Group, _ = strconv.Atoi(m[1])
		p.Grouped = true
	}

	kind, ok := kindOf(m[3])
	if !ok {
		return nil, &ParameterError{Line: line, Reason: fmt.Sprintf("unknown kind %q, allowed kinds: V, C, S", m[3])}
	}
	p.Kind = kind

	body := strings.TrimSpace(m[4])
	var err error
	switch kind {
	case Value:
		err = p.parseValueBody(body)
	case Scale:
		err = p.parseScaleBody(body)
	case Select:
		err = p.parseSelectBody(body)
	}
	if err != nil {
		return nil, &ParameterError{Line: line, Reason: err.Error()}
	}
	return p, nil
}

// parseValueBody parses "[soft-scale] (hard-scale) hard-value".
func (p *Parameter) parseValueBody(body string) error {
	m := reValue.FindStringSubmatch(body)
	if m == nil {
		return fmt.Errorf("malformed value body %q", body)
	}

	if soft := strings.TrimSpace(m[1]); soft != "" {
		if q, ok := parseQuantity(soft); ok {
			p.SoftScaleValue = &q
		} else {
			p.SoftScale = soft
		}
	}

	if hard := strings.TrimSpace(m[2]); hard != "" {
		q, ok := parseQuantity(hard)
		if !ok {
			return fmt.Errorf("malformed hard scale %q", hard)
		}
		p.HardScale = &q
	}

	q, ok := parseQuantity(m[3])
	if !ok {
		return fmt.Errorf("malformed hard value %q", m[3])
	}
	p.HardValue = q
	return nil
}

// parseScaleBody parses "[soft-scale] hard-value".
func (p *Parameter) parseScaleBody(body string) error {
	m := reScale.FindStringSubmatch(body)
	if m == nil {
		return fmt.Errorf("scale body %q needs a [reference] and a hard value", body)
	}
	p.SoftScale = strings.TrimSpace(m[1])

	q, ok := parseQuantity(m[2])
	if !ok {
		return fmt.Errorf("malformed hard value %q", m[2])
	}
	p.HardValue = q
	return nil
}

// parseSelectBody parses `[internal] "external"`.
func (p *Parameter) parseSelectBody(body string) error {
	m := reSelect.FindStringSubmatch(body)
	if m == nil {
		return fmt.Errorf(`select body %q needs [internal] "external"`, body)
	}
	p.Internal = m[1]
	p.External = m[2]
	return nil
}

// parsePlain parses a "Label: value" header line.
func parsePlain(line string) *Parameter {
	s := strings.TrimRight(line, "\r\n")
	s = strings.TrimPrefix(s, string(lineMarker))

	label, value, _ := strings.Cut(s, ":")
	return &Parameter{
		Label:   strings.TrimSpace(label),
		Kind:    Plain,
		Value:   parseValue(value),
		Section: -1,
	}
}

// parseQuantity parses exactly one number followed by an optional unit.
func parseQuantity(s string) (units.Quantity, bool) {
	nums, unit, ok := parseNumbers(strings.TrimSpace(s))
	if !ok || len(nums) != 1 {
		return units.Quantity{}, false
	}
	return units.New(nums[0], unit), true
}
