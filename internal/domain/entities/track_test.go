package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector_ValueAndScan(t *testing.T) {
	// Setup
	vector := Vector{0.5, -1.25, 3}

	// Execute
	value, err := vector.Value()
	require.NoError(t, err)

	var scanned Vector
	require.NoError(t, scanned.Scan(value))

	// Assert
	assert.Equal(t, "[0.5,-1.25,3]", value)
	assert.Equal(t, vector, scanned)
}

func TestVector_ScanPgvectorLiteral(t *testing.T) {
	var vector Vector
	require.NoError(t, vector.Scan([]byte("[0.1, 0.2, 0.3]")))

	assert.Len(t, vector, 3)
	assert.InDelta(t, 0.2, float64(vector[1]), 1e-6)
}

func TestVector_ScanNil(t *testing.T) {
	vector := Vector{1}
	require.NoError(t, vector.Scan(nil))

	assert.Nil(t, vector)
}

func TestVector_ScanMalformed(t *testing.T) {
	var vector Vector

	assert.Error(t, vector.Scan("not a vector"))
	assert.Error(t, vector.Scan("[1,x]"))
}

func TestUserProfile_HasEmbedding(t *testing.T) {
	profile := &UserProfile{}
	assert.False(t, profile.HasEmbedding())

	profile.ProfileEmbedding = make(Vector, EmbeddingDim)
	assert.True(t, profile.HasEmbedding())

	// Une dimension inattendue n'est pas un embedding exploitable
	profile.ProfileEmbedding = make(Vector, 12)
	assert.False(t, profile.HasEmbedding())
}

func TestInterestGraph_AvoidScore(t *testing.T) {
	graph := &InterestGraph{
		AvoidArtists: map[string]float64{"Nickelback": 0.9},
		AvoidGenres:  map[string]float64{"Polka": 0.4},
	}

	assert.Equal(t, 0.9, graph.AvoidScore("Nickelback", "Rock"))
	assert.Equal(t, 0.4, graph.AvoidScore("Someone", "Polka"))
	assert.Zero(t, graph.AvoidScore("Someone", "Rock"))
	assert.Zero(t, (*InterestGraph)(nil).AvoidScore("X", "Y"))
}
