package nanoscope

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mdouchement/nanoscope/units"
)

// ValueType tags the variant held by a ParameterValue.
type ValueType int

const (
	// StringValue holds text.
	StringValue ValueType = iota
	// QuantityValue holds a number with an optional unit.
	QuantityValue
	// ListValue holds several values, either a space-separated list of
	// numbers sharing one unit or the records of an ambiguous label.
	ListValue
	// TimeValue holds a date.
	TimeValue
)

func (t ValueType) String() string {
	switch t {
	case QuantityValue:
		return "quantity"
	case ListValue:
		return "list"
	case TimeValue:
		return "time"
	default:
		return "string"
	}
}

// dateLayout is the layout of the "Date" header line.
const dateLayout = "3:04:05 PM Mon Jan 2 2006"

// A ParameterValue is a resolved header value: a quantity, a string, a date
// or a list of values. Use the typed accessors to read it.
type ParameterValue struct {
	typ  ValueType
	q    units.Quantity
	s    string
	t    time.Time
	list []ParameterValue
}

// QuantityOf returns a quantity value.
func QuantityOf(q units.Quantity) ParameterValue {
	return ParameterValue{typ: QuantityValue, q: q}
}

// StringOf returns a string value.
func StringOf(s string) ParameterValue {
	return ParameterValue{typ: StringValue, s: s}
}

// ListOf returns a list value.
func ListOf(values ...ParameterValue) ParameterValue {
	return ParameterValue{typ: ListValue, list: values}
}

// Type returns the variant held by v.
func (v ParameterValue) Type() ValueType {
	return v.typ
}

// Quantity returns the quantity held by v.
func (v ParameterValue) Quantity() (units.Quantity, bool) {
	return v.q, v.typ == QuantityValue
}

// Text returns the string held by v.
func (v ParameterValue) Text() (string, bool) {
	return v.s, v.typ == StringValue
}

// Time returns the date held by v.
func (v ParameterValue) Time() (time.Time, bool) {
	return v.t, v.typ == TimeValue
}

// List returns the values held by v.
func (v ParameterValue) List() ([]ParameterValue, bool) {
	return v.list, v.typ == ListValue
}

// Int returns the integral quantity held by v.
func (v ParameterValue) Int() (int64, bool) {
	if v.typ != QuantityValue || v.q.Value != math.Trunc(v.q.Value) || math.Abs(v.q.Value) >= 1<<63 {
		return 0, false
	}
	return int64(v.q.Value), true
}

// Interface returns v as a plain Go value, convenient for serialization:
// float64 for unitless quantities, "value unit" strings for the others,
// time.Time for dates and []interface{} for lists.
func (v ParameterValue) Interface() interface{} {
	switch v.typ {
	case QuantityValue:
		if v.q.Unit == "" {
			return v.q.Value
		}
		return v.q.String()
	case TimeValue:
		return v.t
	case ListValue:
		l := make([]interface{}, 0, len(v.list))
		for _, e := range v.list {
			l = append(l, e.Interface())
		}
		return l
	default:
		return v.s
	}
}

func (v ParameterValue) String() string {
	switch v.typ {
	case QuantityValue:
		return v.q.String()
	case TimeValue:
		return v.t.Format(dateLayout)
	case ListValue:
		s := make([]string, 0, len(v.list))
		for _, e := range v.list {
			s = append(s, e.String())
		}
		return "[" + strings.Join(s, ", ") + "]"
	default:
		return v.s
	}
}

// parseValue interprets the text of a plain header value: a number with an
// optional unit, several numbers sharing a unit, a date or a string.
func parseValue(s string) ParameterValue {
	s = strings.TrimSpace(s)
	if s == "" {
		return StringOf("")
	}

	if nums, unit, ok := parseNumbers(s); ok {
		if len(nums) == 1 {
			return QuantityOf(units.New(nums[0], unit))
		}
		l := make([]ParameterValue, 0, len(nums))
		for _, n := range nums {
			l = append(l, QuantityOf(units.New(n, unit)))
		}
		return ListOf(l...)
	}

	if t, err := time.Parse(dateLayout, s); err == nil {
		return ParameterValue{typ: TimeValue, t: t}
	}

	return StringOf(unquote(s))
}

// parseNumbers reads leading numbers of s followed by an optional unit.
func parseNumbers(s string) (nums []float64, unit string, ok bool) {
	fields := strings.Fields(s)
	i := 0
	for ; i < len(fields); i++ {
		n, err := parseNumber(fields[i])
		if err != nil {
			break
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return nil, "", false
	}
	unit = strings.Join(fields[i:], " ")
	if !isUnit(unit) {
		return nil, "", false
	}
	return nums, unit, true
}

// parseNumber parses a locale-invariant decimal number.
func parseNumber(s string) (float64, error) {
	if s == "" || !(s[0] >= '0' && s[0] <= '9' || s[0] == '+' || s[0] == '-' || s[0] == '.') {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// isUnit reports whether s looks like a unit expression: no colons or
// quotes, and no digits except in "1/x" or an exponent.
func isUnit(s string) bool {
	s = strings.TrimPrefix(s, "1/")
	if strings.ContainsAny(s, `:"`) {
		return false
	}
	return strings.ContainsRune(s, '^') || !strings.ContainsAny(s, "0123456789")
}
