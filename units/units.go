// Package units implements the small quantity algebra needed to carry
// physical units through a scale chain: construct, multiply, divide and
// convert between SI-prefixed spellings of the same unit.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// A Quantity is a numeric value tagged with a unit expression such as
// "nm", "V/LSB" or "nm/V". The zero value is the dimensionless 0.
type Quantity struct {
	Value float64
	Unit  string
}

// New returns a quantity with a normalized unit spelling.
func New(value float64, unit string) Quantity {
	return Quantity{Value: value, Unit: Normalize(unit)}
}

// Mul returns a*b with a unit built from both operands.
func Mul(a, b Quantity) Quantity {
	return Quantity{
		Value: a.Value * b.Value,
		Unit:  parse(a.Unit).mul(parse(b.Unit), 1).String(),
	}
}

// Div returns a/b with a unit built from both operands.
func Div(a, b Quantity) Quantity {
	return Quantity{
		Value: a.Value / b.Value,
		Unit:  parse(a.Unit).mul(parse(b.Unit), -1).String(),
	}
}

// Scale returns q multiplied by a dimensionless factor.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{Value: q.Value * f, Unit: q.Unit}
}

// To converts q to the given unit. Only prefix changes are supported: both
// units must reduce to the same base symbols with the same exponents.
func (q Quantity) To(unit string) (Quantity, error) {
	f, err := Factor(q.Unit, unit)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: q.Value * f, Unit: Normalize(unit)}, nil
}

// Dimensionless reports whether q carries no unit.
func (q Quantity) Dimensionless() bool {
	return len(parse(q.Unit)) == 0
}

func (q Quantity) String() string {
	v := strconv.FormatFloat(q.Value, 'g', -1, 64)
	if q.Unit == "" {
		return v
	}
	return v + " " + q.Unit
}

// Factor returns the multiplier converting a value expressed in unit from
// into one expressed in unit to.
func Factor(from, to string) (float64, error) {
	a, fa := parse(from).base()
	b, fb := parse(to).base()
	if !a.equal(b) {
		return 0, fmt.Errorf("units: cannot convert %q to %q", from, to)
	}
	return fa / fb, nil
}

// Has reports whether symbol appears in unit with the given exponent.
func Has(unit, symbol string, exp int) bool {
	for _, t := range parse(unit) {
		if t.symbol == symbol && t.exp == exp {
			return true
		}
	}
	return false
}

// Normalize rewrites the instrument's unit spellings into canonical ones.
func Normalize(unit string) string {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return ""
	}
	unit = strings.ReplaceAll(unit, "~m", "µm")
	unit = strings.ReplaceAll(unit, "μ", "µ") // Greek mu
	unit = strings.ReplaceAll(unit, "º", "°") // ordinal indicator used for degrees
	if strings.Contains(unit, "(") {
		// log(Pa), log(V), log(Arb)
		unit = strings.ReplaceAll(unit, "(", "_")
		unit = strings.ReplaceAll(unit, ")", "")
	}
	return unit
}

//------------------------//
// Unit expressions       //
//------------------------//

type term struct {
	symbol string
	exp    int
}

type expr []term

// parse reads "a*b/c/d^2" style expressions. Whitespace and the middle
// dot are accepted as multiplication.
func parse(unit string) expr {
	unit = Normalize(unit)
	var e expr
	sign := 1
	var cur strings.Builder
	flush := func() {
		s := cur.String()
		cur.Reset()
		if s == "" || s == "1" {
			return
		}
		exp := 1
		if i := strings.IndexByte(s, '^'); i > 0 {
			if n, err := strconv.Atoi(s[i+1:]); err == nil {
				exp = n
				s = s[:i]
			}
		}
		e = e.add(s, sign*exp)
	}
	for _, r := range unit {
		switch r {
		case '/':
			flush()
			sign = -1
		case '*', '·', ' ':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return e
}

func (e expr) add(symbol string, exp int) expr {
	for i := range e {
		if e[i].symbol == symbol {
			e[i].exp += exp
			if e[i].exp == 0 {
				return append(e[:i:i], e[i+1:]...)
			}
			return e
		}
	}
	return append(e, term{symbol: symbol, exp: exp})
}

func (e expr) mul(o expr, sign int) expr {
	r := append(expr(nil), e...)
	for _, t := range o {
		r = r.add(t.symbol, sign*t.exp)
	}
	return r
}

func (e expr) equal(o expr) bool {
	if len(e) != len(o) {
		return false
	}
	for _, t := range e {
		if !Has(o.String(), t.symbol, t.exp) {
			return false
		}
	}
	return true
}

// base strips SI prefixes and returns the factor they contributed.
func (e expr) base() (expr, float64) {
	var r expr
	f := 1.0
	for _, t := range e {
		sym, p := splitPrefix(t.symbol)
		f *= math.Pow(p, float64(t.exp))
		r = r.add(sym, t.exp)
	}
	return r, f
}

func (e expr) String() string {
	var num, den []string
	for _, t := range e {
		s := t.symbol
		exp := t.exp
		if exp < 0 {
			exp = -exp
		}
		if exp != 1 {
			s += "^" + strconv.Itoa(exp)
		}
		if t.exp > 0 {
			num = append(num, s)
		} else {
			den = append(den, s)
		}
	}
	out := strings.Join(num, "·")
	if out == "" && len(den) > 0 {
		out = "1"
	}
	for _, d := range den {
		out += "/" + d
	}
	return out
}

//------------------------//
// SI prefixes            //
//------------------------//

var baseSymbols = map[string]bool{
	"m": true, "g": true, "s": true, "A": true, "K": true, "V": true,
	"Hz": true, "Pa": true, "N": true, "W": true, "F": true, "C": true,
	"Ω": true, "rad": true, "°": true, "LSB": true, "Arb": true, "%": true,
	"log_V": true, "log_Pa": true, "log_Arb": true,
}

var prefixes = map[rune]float64{
	'a': 1e-18, 'f': 1e-15, 'p': 1e-12, 'n': 1e-9, 'µ': 1e-6, 'u': 1e-6,
	'm': 1e-3, 'c': 1e-2, 'k': 1e3, 'M': 1e6, 'G': 1e9, 'T': 1e12,
}

func splitPrefix(symbol string) (string, float64) {
	if baseSymbols[symbol] {
		return symbol, 1
	}
	r, size := utf8.DecodeRuneInString(symbol)
	if p, ok := prefixes[r]; ok && baseSymbols[symbol[size:]] {
		return symbol[size:], p
	}
	return symbol, 1
}
