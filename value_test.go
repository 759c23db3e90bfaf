package nanoscope

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseValue(t *testing.T) {
	v := parseValue(" 512")
	assert.Equal(t, QuantityValue, v.Type())
	n, ok := v.Int()
	assert.True(t, ok)
	assert.EqualValues(t, 512, n)

	v = parseValue("5.5 ~m")
	q, ok := v.Quantity()
	assert.True(t, ok)
	assert.Equal(t, 5.5, q.Value)
	assert.Equal(t, "µm", q.Unit)
	_, ok = v.Int()
	assert.False(t, ok)

	v = parseValue("5000 2500 nm")
	l, ok := v.List()
	assert.True(t, ok)
	if assert.Len(t, l, 2) {
		q, _ = l[1].Quantity()
		assert.Equal(t, 2500.0, q.Value)
		assert.Equal(t, "nm", q.Unit)
	}

	v = parseValue(`"Retrace"`)
	s, ok := v.Text()
	assert.True(t, ok)
	assert.Equal(t, "Retrace", s)

	v = parseValue("0x09300201")
	s, _ = v.Text()
	assert.Equal(t, "0x09300201", s)

	v = parseValue("")
	assert.Equal(t, StringValue, v.Type())
}

func TestParseValueDate(t *testing.T) {
	v := parseValue("02:35:56 PM Tue Jan 10 2023")
	d, ok := v.Time()
	assert.True(t, ok)
	assert.Equal(t, time.Date(2023, time.January, 10, 14, 35, 56, 0, time.UTC), d)
	assert.Equal(t, "2:35:56 PM Tue Jan 10 2023", v.String())
}

func TestParseValueUnitGuard(t *testing.T) {
	// Numbers followed by text containing digits are not quantities.
	v := parseValue("3 samples of 4")
	assert.Equal(t, StringValue, v.Type())

	v = parseValue("2 1/s")
	q, ok := v.Quantity()
	assert.True(t, ok)
	assert.Equal(t, "1/s", q.Unit)
}

func TestParameterValueInterface(t *testing.T) {
	assert.Equal(t, 3.0, parseValue("3").Interface())
	assert.Equal(t, "3 nm", parseValue("3 nm").Interface())
	assert.Equal(t, []interface{}{"1 nm", "2 nm"}, parseValue("1 2 nm").Interface())
	assert.Equal(t, "AFM", parseValue("AFM").Interface())
}
