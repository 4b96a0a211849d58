package averages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

const sample = `Season,Top 20 PPG Avg,Top 20 APG Avg,Top 20 RPG Avg,Top 20 SPG Avg,Top 20 BPG Avg,Top 20 eFG% Avg,Notes
2021-22,26.1,7.9,10.8,1.6,1.9,0.58,x
1999-00,24.0,,10.1,1.8,2.2,0.51,
2023,27.5,8.0,11.0,1.5,1.8,0.59,
`

func TestParse(t *testing.T) {
	tbl, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	v, ok := tbl.Lookup(2022, provider.PPG)
	require.True(t, ok)
	assert.Equal(t, 26.1, v)

	v, ok = tbl.Lookup(2022, provider.EFG)
	require.True(t, ok)
	assert.Equal(t, 0.58, v)

	assert.True(t, tbl.Has(2000), "1999-00 is the 2000 season")
	_, ok = tbl.Lookup(2000, provider.APG)
	assert.False(t, ok, "blank cell is absent")

	_, ok = tbl.Lookup(2023, provider.BPG)
	assert.True(t, ok)

	assert.False(t, tbl.Has(1990))
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"empty":          "",
		"no season":      "Year,Top 20 PPG Avg\n2022,1\n",
		"bad season":     "Season,Top 20 PPG Avg\n2021-23,1\n",
		"bad number":     "Season,Top 20 PPG Avg\n2021-22,abc\n",
		"ragged columns": "Season,Top 20 PPG Avg\n2021-22,1,2\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "league_avgs.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	tbl, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestNilTable(t *testing.T) {
	var tbl *Table
	_, ok := tbl.Lookup(2022, provider.PPG)
	assert.False(t, ok)
	assert.False(t, tbl.Has(2022))
	assert.Equal(t, 0, tbl.Len())
}

func TestNewCopies(t *testing.T) {
	src := map[season.Season]map[provider.Category]float64{2022: {provider.PPG: 25}}
	tbl := New(src)
	src[2022][provider.PPG] = 99

	v, ok := tbl.Lookup(2022, provider.PPG)
	require.True(t, ok)
	assert.Equal(t, 25.0, v)
}
