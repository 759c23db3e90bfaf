package nanoscope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTerminalValue(t *testing.T) {
	tbl := table(t, `\@Sens. Zsens: V 33.97668 nm/V`)
	p, _ := tbl.Lookup(-1, "Sens. Zsens")

	c, err := tbl.Resolve(p, -1)
	require.NoError(t, err)
	assert.Equal(t, 33.97668, c.Factor)
	assert.Equal(t, "nm/V", c.Unit)
}

func TestResolveValueChain(t *testing.T) {
	tbl := table(t,
		`\@Sens. Zsens: V 33.97668 nm/V`,
		`\@1:Z limit: V [Sens. Zsens] (0.006714 V/LSB) 440.0 V`,
	)
	p, _ := tbl.Lookup(-1, "Z limit")

	c, err := tbl.Resolve(p, -1)
	require.NoError(t, err)

	hs, zsens := 0.006714, 33.97668
	assert.Equal(t, hs*zsens, c.Factor)
	assert.Equal(t, "nm/LSB", c.Unit)
	assert.Equal(t, "nm", c.SampleUnit())
}

func TestResolveScale(t *testing.T) {
	tbl := table(t,
		`\@Sens. Zsens: V 33.97668 nm/V`,
		`\*Ciao image list`,
		`\@2:Z scale: V [Sens. Zsens] (0.006714 V/LSB) 440.0 V`,
		`\@Z magnify: C [2:Z scale] 0.599`,
	)
	section := tbl.sectionsNamed(sImageList)[0].Index

	zscale, _ := tbl.Lookup(section, "Z scale")
	ref, err := tbl.Resolve(zscale, section)
	require.NoError(t, err)

	magnify, _ := tbl.Lookup(section, "Z magnify")
	c, err := tbl.Resolve(magnify, section)
	require.NoError(t, err)
	assert.Equal(t, ref.Factor*0.599, c.Factor)
	assert.Equal(t, ref.Unit, c.Unit)
}

func TestResolveLiteralSoftScale(t *testing.T) {
	tbl := table(t, `\@2:Z offset: V [2.5 nm/V] (0.5 V/LSB) 1 V`)
	p, _ := tbl.Lookup(-1, "Z offset")

	c, err := tbl.Resolve(p, -1)
	require.NoError(t, err)
	assert.Equal(t, 1.25, c.Factor)
	assert.Equal(t, "nm/LSB", c.Unit)
}

func TestResolveHardValueOnly(t *testing.T) {
	tbl := table(t,
		`\Sens. Piezo: 2 nm/V`,
		`\@Z piezo: V [Sens. Piezo] 3 V`,
	)
	p, _ := tbl.Lookup(-1, "Z piezo")

	c, err := tbl.Resolve(p, -1)
	require.NoError(t, err)
	assert.Equal(t, 6.0, c.Factor)
	assert.Equal(t, "nm", c.Unit)
}

func TestResolveDeterministic(t *testing.T) {
	tbl := table(t,
		`\@Sens. Zsens: V 33.97668 nm/V`,
		`\@1:Z limit: V [Sens. Zsens] (0.006714 V/LSB) 440.0 V`,
	)
	p, _ := tbl.Lookup(-1, "Z limit")

	first, err := tbl.Resolve(p, -1)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		c, err := tbl.Resolve(p, -1)
		require.NoError(t, err)
		assert.Equal(t, first, c)
	}
}

func TestResolveCycle(t *testing.T) {
	tbl := table(t,
		`\@A: V [B] (1 V/LSB) 1 V`,
		`\@B: C [A] 2`,
	)
	p, _ := tbl.Lookup(-1, "A")

	_, err := tbl.Resolve(p, -1)
	var cycle CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, CycleError{"A", "B", "A"}, cycle)
}

func TestResolveSelfReference(t *testing.T) {
	tbl := table(t, `\@A: C [A] 2`)
	p, _ := tbl.Lookup(-1, "A")

	_, err := tbl.Resolve(p, -1)
	assert.IsType(t, CycleError{}, err)
}

func TestResolveUnresolvedReference(t *testing.T) {
	tbl := table(t, `\@1:Z limit: V [Sens. Missing] (0.006714 V/LSB) 440.0 V`)
	p, _ := tbl.Lookup(-1, "Z limit")

	_, err := tbl.Resolve(p, -1)
	assert.Equal(t, ReferenceError("Sens. Missing"), err)
}

func TestResolveSelect(t *testing.T) {
	tbl := table(t, `\@2:Image Data: S [Height] "Height"`)
	p, _ := tbl.Lookup(-1, "Image Data")

	_, err := tbl.Resolve(p, -1)
	var terr *TypeError
	assert.ErrorAs(t, err, &terr)

	v, err := tbl.ValueOf(p, -1)
	require.NoError(t, err)
	s, _ := v.Text()
	assert.Equal(t, "Height", s)
}

func TestDerivedHardScale(t *testing.T) {
	tbl := table(t, `\@2:Z scale: V [Sens. Zsens] (0.006714 V/LSB) 440.0 V`)
	p, _ := tbl.Lookup(-1, "Z scale")

	d := derivedHardScale(p, 4)
	require.NotNil(t, d.HardScale)
	assert.Equal(t, 440.0/4294967296, d.HardScale.Value)
	assert.Equal(t, "V/LSB", d.HardScale.Unit)
	// The table parameter is untouched.
	assert.Equal(t, 0.006714, p.HardScale.Value)

	d = derivedHardScale(p, 2)
	assert.Equal(t, 440.0/65536, d.HardScale.Value)
}

func TestCheckResolvesEveryChain(t *testing.T) {
	tbl := table(t,
		`\@Sens. Zsens: V 33.97668 nm/V`,
		`\@1:Z limit: V [Sens. Zsens] (0.006714 V/LSB) 440.0 V`,
		`\@2:Image Data: S [Height] "Height"`,
	)
	assert.NoError(t, tbl.check())

	tbl = table(t,
		`\@Sens. Zsens: V 33.97668 nm/V`,
		`\@3:Foo: V [Sens. Missing] (1 V/LSB) 2 V`,
	)
	assert.Equal(t, ReferenceError("Sens. Missing"), tbl.check())

	tbl = table(t,
		`\@Bar: C [Baz] 1`,
		`\@Baz: C [Bar] 1`,
	)
	assert.Equal(t, CycleError{"Bar", "Baz", "Bar"}, tbl.check())
}
