package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auralis/auralis-backend/internal/domain/entities"
)

func byArtist(artists ...string) []*entities.Track {
	tracks := make([]*entities.Track, len(artists))
	for i, artist := range artists {
		tracks[i] = &entities.Track{ID: artist + "-" + string(rune('0'+i)), Artist: artist}
	}
	return tracks
}

func TestEnforceArtistDiversity_CapsRunAtThree(t *testing.T) {
	// A,A,A,A,B avec borne 3 → A,A,A,B
	tracks := byArtist("A", "A", "A", "A", "B")

	// Execute
	result := enforceArtistDiversity(tracks, 3)

	// Assert
	artists := make([]string, len(result))
	for i, tr := range result {
		artists[i] = tr.Artist
	}
	assert.Equal(t, []string{"A", "A", "A", "B"}, artists)
}

func TestEnforceArtistDiversity_SkippedTracksAreDiscarded(t *testing.T) {
	// Le 4e A est écarté, pas réordonné après B
	tracks := byArtist("A", "A", "A", "A", "B", "A")

	// Execute
	result := enforceArtistDiversity(tracks, 3)

	// Assert: le A final suit B, la suite reste ≤ 3
	artists := make([]string, len(result))
	for i, tr := range result {
		artists[i] = tr.Artist
	}
	assert.Equal(t, []string{"A", "A", "A", "B", "A"}, artists)
}

func TestEnforceArtistDiversity_NoQuadrupleRunEver(t *testing.T) {
	tracks := byArtist("A", "A", "B", "A", "A", "A", "A", "C", "A")

	// Execute
	result := enforceArtistDiversity(tracks, 3)

	// Assert: aucune fenêtre de 4 pistes consécutives du même artiste
	for i := 0; i+3 < len(result); i++ {
		same := result[i].Artist == result[i+1].Artist &&
			result[i+1].Artist == result[i+2].Artist &&
			result[i+2].Artist == result[i+3].Artist
		assert.False(t, same, "run of four at index %d", i)
	}
}

func TestEnforceArtistDiversity_ShortListUntouched(t *testing.T) {
	tracks := byArtist("A", "B")

	// Execute
	result := enforceArtistDiversity(tracks, 3)

	// Assert
	assert.Len(t, result, 2)
}
