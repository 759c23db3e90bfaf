package nanoscope

import (
	"math"

	"github.com/mdouchement/nanoscope/units"
)

// A Conversion is a resolved scale: a single multiplier and its unit. For
// image chains it converts one raw digitized sample into a physical value,
// and its unit then carries a "/LSB" term.
type Conversion struct {
	Factor float64
	Unit   string
}

// Quantity returns c as a quantity.
func (c Conversion) Quantity() units.Quantity {
	return units.Quantity{Value: c.Factor, Unit: c.Unit}
}

// SampleUnit returns the unit of Factor times one raw sample.
func (c Conversion) SampleUnit() string {
	if units.Has(c.Unit, "LSB", -1) {
		return units.Mul(c.Quantity(), units.New(1, "LSB")).Unit
	}
	return c.Unit
}

func conversionOf(q units.Quantity) Conversion {
	return Conversion{Factor: q.Value, Unit: q.Unit}
}

// Resolve follows the soft-scale references of p and returns its combined
// conversion. Lookups are performed in the given section scope, falling
// back to the global scope.
//
//   - Value: the hard scale (or the hard value when there is none) times the
//     resolved soft scale. Without soft scale, the hard scale or the hard
//     value is used as-is.
//   - Scale: the resolved referenced parameter times the hard value.
//   - Select parameters have no numeric resolution.
func (t *Table) Resolve(p *Parameter, section int) (Conversion, error) {
	return t.resolve(p, section, nil)
}

func (t *Table) resolve(p *Parameter, section int, visited []*Parameter) (Conversion, error) {
	for _, v := range visited {
		if v == p {
			path := make(CycleError, 0, len(visited)+1)
			for _, v := range visited {
				path = append(path, v.Key())
			}
			return Conversion{}, append(path, p.Key())
		}
	}
	visited = append(visited, p)

	switch p.Kind {
	case Value:
		base := p.HardValue
		if p.HardScale != nil {
			base = *p.HardScale
		}
		switch {
		case p.SoftScale != "":
			soft, err := t.follow(p.SoftScale, section, visited)
			if err != nil {
				return Conversion{}, err
			}
			return conversionOf(units.Mul(base, soft.Quantity())), nil
		case p.SoftScaleValue != nil:
			return conversionOf(units.Mul(base, *p.SoftScaleValue)), nil
		default:
			return conversionOf(base), nil
		}
	case Scale:
		ref, err := t.follow(p.SoftScale, section, visited)
		if err != nil {
			return Conversion{}, err
		}
		return conversionOf(units.Mul(ref.Quantity(), p.HardValue)), nil
	case Plain:
		// Plain numeric values may terminate a chain.
		if q, ok := p.Value.Quantity(); ok {
			return conversionOf(q), nil
		}
	}
	return Conversion{}, &TypeError{Label: p.Key(), Want: "quantity", Got: p.Kind.String()}
}

func (t *Table) follow(label string, section int, visited []*Parameter) (Conversion, error) {
	ref, ok := t.Lookup(section, label)
	if !ok {
		return Conversion{}, ReferenceError(label)
	}
	return t.resolve(ref, section, visited)
}

// check resolves every Value and Scale parameter from its own section and
// returns the first failure, so that a loaded file has no broken chain.
func (t *Table) check() error {
	for _, p := range t.params {
		if p.Kind != Value && p.Kind != Scale {
			continue
		}
		if _, err := t.Resolve(p, p.Section); err != nil {
			return err
		}
	}
	return nil
}

// ValueOf returns the resolved value of p: the resolved quantity of Value
// and Scale parameters, the external designation of Select parameters and
// the parsed value of plain ones.
func (t *Table) ValueOf(p *Parameter, section int) (ParameterValue, error) {
	switch p.Kind {
	case Value, Scale:
		c, err := t.Resolve(p, section)
		if err != nil {
			return ParameterValue{}, err
		}
		return QuantityOf(c.Quantity()), nil
	default:
		return p.Raw(), nil
	}
}

// derivedHardScale returns a copy of p whose hard scale is recomputed from
// its hard value over the full range of a sample of the given width. Raw
// samples then span the hard value.
func derivedHardScale(p *Parameter, bytesPerSample int) *Parameter {
	if p.Kind != Value || p.HardScale == nil {
		return p
	}
	d := *p
	hs := units.Div(p.HardValue, units.New(math.Exp2(float64(8*bytesPerSample)), "LSB"))
	d.HardScale = &hs
	return &d
}
