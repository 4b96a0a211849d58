// Package averages loads the league-average reference table: per season, the
// mean of the top 20 players in each stat category. Normalized scores are a
// player's rate divided by that season's average.
package averages

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/albapepper/hoopscore/internal/provider"
	"github.com/albapepper/hoopscore/internal/season"
)

// Columns maps each category to its header in the reference file.
var Columns = map[provider.Category]string{
	provider.PPG: "Top 20 PPG Avg",
	provider.APG: "Top 20 APG Avg",
	provider.RPG: "Top 20 RPG Avg",
	provider.SPG: "Top 20 SPG Avg",
	provider.BPG: "Top 20 BPG Avg",
	provider.EFG: "Top 20 eFG% Avg",
}

// Table holds league averages keyed by season. A season present in the file
// may still lack individual categories (blank cells). The zero Table is empty
// and usable.
type Table struct {
	rows map[season.Season]map[provider.Category]float64
}

// New builds a Table from in-memory values.
func New(rows map[season.Season]map[provider.Category]float64) *Table {
	t := &Table{rows: make(map[season.Season]map[provider.Category]float64, len(rows))}
	for s, cats := range rows {
		cp := make(map[provider.Category]float64, len(cats))
		for c, v := range cats {
			cp[c] = v
		}
		t.rows[s] = cp
	}
	return t
}

// Load reads the reference file at path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open league averages: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the CSV reference table. The Season column accepts any form
// season.Parse does. Unknown columns are ignored.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("league averages: empty file")
		}
		return nil, fmt.Errorf("league averages: read header: %w", err)
	}

	seasonCol := -1
	catCols := make(map[provider.Category]int)
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "Season" {
			seasonCol = i
			continue
		}
		for cat, name := range Columns {
			if h == name {
				catCols[cat] = i
			}
		}
	}
	if seasonCol < 0 {
		return nil, errors.New("league averages: missing Season column")
	}

	t := &Table{rows: make(map[season.Season]map[provider.Category]float64)}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("league averages: line %d: %w", line, err)
		}

		s, err := season.Parse(rec[seasonCol])
		if err != nil {
			return nil, fmt.Errorf("league averages: line %d: %w", line, err)
		}
		vals := make(map[provider.Category]float64, len(catCols))
		for cat, col := range catCols {
			if col >= len(rec) || strings.TrimSpace(rec[col]) == "" {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
			if err != nil {
				return nil, fmt.Errorf("league averages: line %d column %q: %w", line, Columns[cat], err)
			}
			vals[cat] = v
		}
		t.rows[s] = vals
	}
	return t, nil
}

// Lookup returns the season's average for a category.
func (t *Table) Lookup(s season.Season, cat provider.Category) (float64, bool) {
	if t == nil {
		return 0, false
	}
	v, ok := t.rows[s][cat]
	return v, ok
}

// Has reports whether the season appears in the table at all.
func (t *Table) Has(s season.Season) bool {
	if t == nil {
		return false
	}
	_, ok := t.rows[s]
	return ok
}

// Len returns the number of seasons covered.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}
