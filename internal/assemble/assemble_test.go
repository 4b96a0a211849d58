package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(ps []ScoredPlayer) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Player
	}
	return out
}

func TestAssembleSortsAndFlagsMVP(t *testing.T) {
	in := []ScoredPlayer{
		{Player: "B", Score: 30},
		{Player: "A", Score: 40},
		{Player: "C", Score: 35},
	}
	out := Assemble(in, "C")

	assert.Equal(t, []string{"A", "C", "B"}, names(out))
	assert.False(t, out[0].IsMVP)
	assert.True(t, out[1].IsMVP)
	assert.False(t, in[2].IsMVP, "input not mutated")
}

func TestAssembleDedupeKeepsHighest(t *testing.T) {
	in := []ScoredPlayer{
		{Player: "A", Team: "X", Score: 20},
		{Player: "B", Score: 25},
		{Player: "A", Team: "Y", Score: 30},
	}
	out := Assemble(in, "")
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Player)
	assert.Equal(t, "Y", out[0].Team)
	assert.Equal(t, 30.0, out[0].Score)
}

func TestAssembleStableTies(t *testing.T) {
	in := []ScoredPlayer{
		{Player: "first", Score: 10},
		{Player: "second", Score: 10},
		{Player: "third", Score: 10},
	}
	assert.Equal(t, []string{"first", "second", "third"}, names(Assemble(in, "")))
}

func TestAssembleNoMVPKnown(t *testing.T) {
	out := Assemble([]ScoredPlayer{{Player: ""}, {Player: "A"}}, "")
	for _, p := range out {
		assert.False(t, p.IsMVP)
	}
}

func TestAssembleEmpty(t *testing.T) {
	assert.Empty(t, Assemble(nil, "A"))
}
