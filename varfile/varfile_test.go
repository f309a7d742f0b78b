package varfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/hfssexpr"
	"github.com/zephyrtronium/hfssexpr/varfile"
)

const antenna = `
project {
  freq = "4GHz"
  eps  = 4.4
}

design "Patch" {
  thicknessSubstrate = "30mils"
  wavelength         = "c0/$freq"
  widths             = ["1mm", 2, "3mm"]
  count              = 3
}

design "Horn" {
  aperture = "(wavelength) * 2"
  wavelength = "c0/$freq"
}
`

func TestParse(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f, err := varfile.Parse([]byte(antenna), "antenna.hcl")
	require.NoError(t, err)

	// --- Act ---
	v, err := f.Vars("Patch")
	require.NoError(t, err)

	// --- Assert ---
	assert.Equal(t, []string{"Patch", "Horn"}, f.Designs())
	assert.Equal(t, []string{"$eps", "$freq"}, v.Names(hfssexpr.ScopeProject))
	assert.Equal(t, []string{"count", "thicknessSubstrate", "wavelength", "widths"}, v.Names(hfssexpr.ScopeDesign))

	cases := map[string]string{
		"$freq":              "4GHz",
		"$eps":               "4.4",
		"thicknessSubstrate": "30mils",
		"wavelength":         "c0/$freq",
		"widths":             "[1mm,2,3mm]",
		"count":              "3",
	}
	for name, want := range cases {
		e, ok := v.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, want, e.String(), name)
	}
}

func TestVarsDefaultDesign(t *testing.T) {
	t.Parallel()

	f, err := varfile.Parse([]byte(antenna), "antenna.hcl")
	require.NoError(t, err)

	v, err := f.Vars("")
	require.NoError(t, err)
	_, ok := v.Get("thicknessSubstrate")
	assert.True(t, ok)
	_, ok = v.Get("aperture")
	assert.False(t, ok)
}

func TestVarsUnknownDesign(t *testing.T) {
	t.Parallel()

	f, err := varfile.Parse([]byte(antenna), "antenna.hcl")
	require.NoError(t, err)

	_, err = f.Vars("Dipole")
	require.ErrorIs(t, err, varfile.ErrUnknownDesign)
	assert.Contains(t, err.Error(), "Dipole")
}

func TestVarsProjectOnly(t *testing.T) {
	t.Parallel()

	f, err := varfile.Parse([]byte(`project { freq = "1GHz" }`), "p.hcl")
	require.NoError(t, err)
	assert.Empty(t, f.Designs())

	v, err := f.Vars("")
	require.NoError(t, err)
	assert.Equal(t, []string{"$freq"}, v.Names(hfssexpr.ScopeProject))
	assert.Empty(t, v.Names(hfssexpr.ScopeDesign))

	_, err = f.Vars("Patch")
	require.ErrorIs(t, err, varfile.ErrUnknownDesign)
}

func TestVarsResolve(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f, err := varfile.Parse([]byte(antenna), "antenna.hcl")
	require.NoError(t, err)
	v, err := f.Vars("Horn")
	require.NoError(t, err)

	// --- Act ---
	got, err := hfssexpr.Evaluate(hfssexpr.New("aperture"), v)

	// --- Assert ---
	require.NoError(t, err)
	assert.InDelta(t, 299792458.0/4e9*2, got, 1e-12)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		src  string
	}{
		{"syntax", `design "a" {`},
		{"two-projects", "project {}\nproject {}"},
		{"dup-design", "design \"a\" {}\ndesign \"a\" {}"},
		{"unlabeled-design", `design { x = 1 }`},
		{"unknown-block", `module "m" {}`},
		{"top-attr", `x = 1`},
		{"bool", `design "a" { x = true }`},
		{"null", `design "a" { x = null }`},
		{"object", `design "a" { x = { y = 1 } }`},
		{"nested-block", `design "a" { sub {} }`},
		{"reference", `design "a" { x = y }`},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			_, err := varfile.Parse([]byte(c.src), c.name+".hcl")
			assert.Error(t, err)
		})
	}
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "vars.hcl")
	require.NoError(t, os.WriteFile(path, []byte(antenna), 0o644))

	// --- Act ---
	f, err := varfile.ParseFile(path)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, path, f.Name)
	assert.Equal(t, []string{"Patch", "Horn"}, f.Designs())

	_, err = varfile.ParseFile(filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
