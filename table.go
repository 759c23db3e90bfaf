package nanoscope

// A Section is a "\*Name" block of the header. Repeated names, such as
// "Ciao image list", are numbered in file order.
type Section struct {
	Name       string
	Number     int // Occurrence of Name, starting at 0.
	Index      int // Position among all sections.
	Parameters []*Parameter
}

// scope indexes parameters by label and by qualified "group:label" key.
// Insertion order is file order, so the last element wins.
type scope map[string][]*Parameter

func (s scope) add(p *Parameter) {
	s[p.Label] = append(s[p.Label], p)
	if p.Grouped {
		k := p.Key()
		s[k] = append(s[k], p)
	}
}

func (s scope) last(label string) (*Parameter, bool) {
	l := s[label]
	if len(l) == 0 {
		return nil, false
	}
	return l[len(l)-1], true
}

// A Table holds every parameter of a header. The global scope holds all of
// them; each section scope holds the parameters of that section and shadows
// the global scope. A Table is immutable once built.
type Table struct {
	params   []*Parameter
	global   scope
	sections []*Section
	scopes   []scope
}

// newTable builds the table from classified header lines. Any malformed
// CIAO parameter aborts the construction.
func newTable(lines []line) (*Table, error) {
	t := &Table{global: make(scope)}
	counts := make(map[string]int)
	current := -1

	for _, l := range lines {
		var p *Parameter
		switch l.typ {
		case ltSection:
			s := &Section{
				Name:   l.name,
				Number: counts[l.name],
				Index:  len(t.sections),
			}
			counts[l.name]++
			t.sections = append(t.sections, s)
			t.scopes = append(t.scopes, make(scope))
			current = s.Index
			continue
		case ltParameter:
			var err error
			if p, err = parseParameter(l.text); err != nil {
				return nil, err
			}
		case ltPlain:
			if p = parsePlain(l.text); p.Label == "" {
				continue
			}
		default:
			continue
		}

		p.Section = current
		t.params = append(t.params, p)
		t.global.add(p)
		if current >= 0 {
			t.sections[current].Parameters = append(t.sections[current].Parameters, p)
			t.scopes[current].add(p)
		}
	}
	return t, nil
}

// Lookup returns the last parameter with the given label (or "group:label"
// key) in the section scope, falling back to the global scope. A negative
// section looks up the global scope only.
func (t *Table) Lookup(section int, label string) (*Parameter, bool) {
	if p, ok := t.Local(section, label); ok {
		return p, true
	}
	return t.global.last(label)
}

// Local returns the last parameter with the given label in the section
// scope only.
func (t *Table) Local(section int, label string) (*Parameter, bool) {
	if section < 0 || section >= len(t.scopes) {
		return nil, false
	}
	return t.scopes[section].last(label)
}

// All returns every parameter with the given label, in file order.
func (t *Table) All(label string) []*Parameter {
	return t.global[label]
}

// Parameters returns every parameter in file order.
func (t *Table) Parameters() []*Parameter {
	return t.params
}

// Sections returns the header sections in file order.
func (t *Table) Sections() []*Section {
	return t.sections
}

// sectionsNamed returns the sections with the given name, in file order.
func (t *Table) sectionsNamed(name string) []*Section {
	var r []*Section
	for _, s := range t.sections {
		if s.Name == name {
			r = append(r, s)
		}
	}
	return r
}
