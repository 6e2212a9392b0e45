package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/auralis/auralis-backend/internal/domain/entities"
)

func fptr(v float64) *float64 {
	return &v
}

func featured(id string, energy, valence, danceability float64) *entities.Track {
	return &entities.Track{
		ID:     id,
		Artist: id,
		Features: &entities.AudioFeatures{
			Energy:       fptr(energy),
			Valence:      fptr(valence),
			Danceability: fptr(danceability),
		},
	}
}

func TestRerankByContext_ExerciseOrdersByEnergy(t *testing.T) {
	// Candidats en ordre ANN T1, T2, T3
	tracks := []*entities.Track{
		featured("T1", 0.9, 0, 0),
		featured("T2", 0.2, 0, 0),
		featured("T3", 0.5, 0, 0),
	}
	ctx := &entities.ListeningContext{Activity: entities.ActivityExercise}

	// Execute
	result := rerankByContext(tracks, ctx)

	// Assert: T1, T3, T2
	assert.Equal(t, "T1", result[0].ID)
	assert.Equal(t, "T3", result[1].ID)
	assert.Equal(t, "T2", result[2].ID)
}

func TestRerankByContext_TiesKeepANNOrder(t *testing.T) {
	tracks := []*entities.Track{
		featured("T1", 0.5, 0, 0),
		featured("T2", 0.5, 0, 0),
		featured("T3", 0.5, 0, 0),
	}
	ctx := &entities.ListeningContext{Mood: entities.MoodEnergetic}

	// Execute
	result := rerankByContext(tracks, ctx)

	// Assert: tri stable, ordre ANN conservé
	assert.Equal(t, "T1", result[0].ID)
	assert.Equal(t, "T2", result[1].ID)
	assert.Equal(t, "T3", result[2].ID)
}

func TestContextScore_MissingFeaturesScoreZero(t *testing.T) {
	bare := &entities.Track{ID: "bare"}
	ctx := &entities.ListeningContext{Activity: entities.ActivityParty}

	// Assert
	assert.Zero(t, contextScore(bare, ctx))
}

func TestContextScore_AbsentFieldContributesZeroInInvertedTerms(t *testing.T) {
	// Bag présent mais sans energy ni valence: aucun bonus, même pour les
	// termes en (1−x)
	partial := &entities.Track{
		ID:       "partial",
		Features: &entities.AudioFeatures{Danceability: fptr(0.9)},
	}
	ctx := &entities.ListeningContext{
		Activity: entities.ActivityRelax,
		Mood:     entities.MoodSad,
	}

	// Assert
	assert.Zero(t, contextScore(partial, ctx))
}

func TestRerankByContext_AbsentEnergyRanksBelowLowEnergy(t *testing.T) {
	lowEnergy := featured("low", 0.1, 0, 0)
	noEnergy := &entities.Track{
		ID:       "absent",
		Artist:   "absent",
		Features: &entities.AudioFeatures{Valence: fptr(0.5)},
	}
	ctx := &entities.ListeningContext{Activity: entities.ActivityRelax}

	// Execute: ANN place la piste sans energy en tête
	result := rerankByContext([]*entities.Track{noEnergy, lowEnergy}, ctx)

	// Assert: la piste à energy faible gagne le bonus RELAX, l'absente vaut 0
	assert.Equal(t, "low", result[0].ID)
	assert.Equal(t, "absent", result[1].ID)
}

func TestContextScore_CombinesActivityAndMood(t *testing.T) {
	track := featured("T1", 0.8, 0.6, 0.4)
	ctx := &entities.ListeningContext{
		Activity: entities.ActivityExercise,
		Mood:     entities.MoodHappy,
	}

	// Execute: +10·energy +10·valence
	score := contextScore(track, ctx)

	// Assert
	assert.InDelta(t, 14.0, score, 1e-9)
}

func TestContextScore_RelaxAndCalmRewardLowEnergy(t *testing.T) {
	calm := featured("calm", 0.1, 0, 0)
	loud := featured("loud", 0.9, 0, 0)
	ctx := &entities.ListeningContext{
		Activity: entities.ActivityRelax,
		Mood:     entities.MoodCalm,
	}

	// Assert
	assert.Greater(t, contextScore(calm, ctx), contextScore(loud, ctx))
}
