// Package season provides the canonical season identifier shared by every
// fetcher, cache key and join in the pipeline.
//
// Upstream sources disagree on format: the standings site and the GraphQL API
// key a season by its ending year (2022 for the 2021-22 season), while the
// league-averages reference file uses "2021-22" labels. Everything is parsed
// into a Season (the ending year) at the ingress boundary.
package season

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// First is the earliest season the upstream sources carry.
	First Season = 1947
	// Last is a sanity ceiling, not a data-coverage claim.
	Last Season = 2100
)

// Season is the ending four-digit year of an NBA season.
type Season int

// Parse normalizes "2022", "2021-22" and "2021-2022" into a Season.
//
// A range must be consecutive years: "2021-23" is rejected. The two-digit
// suffix wraps at the century, so "1999-00" is the 2000 season.
func Parse(s string) (Season, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty season")
	}

	start, end, isRange := strings.Cut(s, "-")
	if !isRange {
		y, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid season %q", s)
		}
		return FromYear(y)
	}

	if len(start) != 4 {
		return 0, fmt.Errorf("invalid season %q: start year must have four digits", s)
	}
	startYear, err := strconv.Atoi(start)
	if err != nil {
		return 0, fmt.Errorf("invalid season %q", s)
	}
	want := startYear + 1

	switch len(end) {
	case 2:
		suffix, err := strconv.Atoi(end)
		if err != nil || suffix != want%100 {
			return 0, fmt.Errorf("invalid season %q: %q does not follow %d", s, end, startYear)
		}
	case 4:
		endYear, err := strconv.Atoi(end)
		if err != nil || endYear != want {
			return 0, fmt.Errorf("invalid season %q: %q does not follow %d", s, end, startYear)
		}
	default:
		return 0, fmt.Errorf("invalid season %q", s)
	}
	return FromYear(want)
}

// FromYear validates an ending year.
func FromYear(y int) (Season, error) {
	s := Season(y)
	if s < First || s > Last {
		return 0, fmt.Errorf("season %d out of range [%d, %d]", y, First, Last)
	}
	return s, nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Season {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Year returns the ending year.
func (s Season) Year() int { return int(s) }

// String is the canonical form used in cache and join keys.
func (s Season) String() string { return strconv.Itoa(int(s)) }

// Label renders the "YYYY-YY" form, e.g. 2000 -> "1999-00".
func (s Season) Label() string {
	return fmt.Sprintf("%d-%02d", int(s)-1, int(s)%100)
}

// Range returns every season from `from` to `to` inclusive, in order.
func Range(from, to Season) []Season {
	if to < from {
		return nil
	}
	out := make([]Season, 0, int(to-from)+1)
	for s := from; s <= to; s++ {
		out = append(out, s)
	}
	return out
}
