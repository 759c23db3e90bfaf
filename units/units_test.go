package units_test

import (
	"testing"

	"github.com/mdouchement/nanoscope/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulCancelsUnits(t *testing.T) {
	hs, zsens := 0.006714, 33.97668
	hardScale := units.New(hs, "V/LSB")
	sens := units.New(zsens, "nm/V")

	q := units.Mul(hardScale, sens)
	assert.Equal(t, hs*zsens, q.Value)
	assert.Equal(t, "nm/LSB", q.Unit)

	q = units.Mul(q, units.New(100, "LSB"))
	assert.Equal(t, "nm", q.Unit)
}

func TestDiv(t *testing.T) {
	q := units.Div(units.New(10, "µm"), units.New(4, ""))
	assert.Equal(t, 2.5, q.Value)
	assert.Equal(t, "µm", q.Unit)

	q = units.Div(units.New(1, ""), units.New(2, "s"))
	assert.Equal(t, "1/s", q.Unit)
}

func TestTo(t *testing.T) {
	q, err := units.New(1500, "nm").To("µm")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, q.Value, 1e-12)
	assert.Equal(t, "µm", q.Unit)

	q, err = units.New(2, "mV/nm").To("V/m")
	require.NoError(t, err)
	assert.InDelta(t, 2e6, q.Value, 1e-6)

	_, err = units.New(1, "nm").To("V")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "µm", units.Normalize("~m"))
	assert.Equal(t, "µm", units.Normalize("μm"))
	assert.Equal(t, "°", units.Normalize("º"))
	assert.Equal(t, "log_Pa", units.Normalize("log(Pa)"))
	assert.Equal(t, "", units.Normalize("  "))
}

func TestHas(t *testing.T) {
	assert.True(t, units.Has("nm/LSB", "LSB", -1))
	assert.False(t, units.Has("nm", "LSB", -1))
	assert.True(t, units.New(3, "").Dimensionless())
	assert.False(t, units.New(3, "V").Dimensionless())
}

func TestString(t *testing.T) {
	assert.Equal(t, "33.97668 nm/V", units.New(33.97668, "nm/V").String())
	assert.Equal(t, "0.599", units.New(0.599, "").String())
}
