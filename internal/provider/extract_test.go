package provider

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractValue(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
		ok   bool
	}{
		{"float", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"pct string", ".634", 0.634, true},
		{"padded string", " 50 ", 50, true},
		{"empty string", "", 0, false},
		{"garbage", "n/a", 0, false},
		{"nil", nil, 0, false},
		{"nan", math.NaN(), 0, false},
		{"nested total", map[string]interface{}{"total": 3.0}, 3, true},
		{"bool", true, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractValue(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestCleanName(t *testing.T) {
	assert.Equal(t, "Michael Jordan", CleanName(" Michael Jordan* "))
	assert.Equal(t, "Nikola Jokić", CleanName("Nikola Jokić"))
}

func TestErrorClassification(t *testing.T) {
	fe := &FetchError{Source: "bref", Season: 2022, Status: 503}
	wrapped := errors.Join(errors.New("context"), fe)
	assert.True(t, IsFetchError(wrapped))
	assert.False(t, IsSchemaMismatch(wrapped))
	assert.Contains(t, fe.Error(), "2021-22")
	assert.Contains(t, fe.Error(), "503")

	se := &SchemaMismatchError{Source: "bref", Season: 2022, Missing: "table#divs_standings_E"}
	assert.True(t, IsSchemaMismatch(se))
	assert.Contains(t, se.Error(), "divs_standings_E")

	rl := &FetchError{Source: "bref", Season: 2022, Status: 429, Err: ErrRateLimited}
	assert.ErrorIs(t, rl, ErrRateLimited)
}
