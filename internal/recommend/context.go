package recommend

import (
	"sort"

	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// contextScore somme des contributions par caractéristique conditionnées au
// contexte. Seules les pistes avec caractéristiques audio participent au
// bonus; les autres valent 0. Un champ absent du bag contribue 0 pour ce
// champ, y compris dans les termes inversés (1−x).
func contextScore(track *entities.Track, ctx *entities.ListeningContext) float64 {
	if track.Features == nil || ctx == nil {
		return 0
	}

	f := track.Features
	score := 0.0

	switch ctx.Activity {
	case entities.ActivityExercise:
		if f.Energy != nil {
			score += 10 * *f.Energy
		}
	case entities.ActivityRelax:
		if f.Energy != nil {
			score += 8 * (1 - *f.Energy)
		}
	case entities.ActivityParty:
		if f.Danceability != nil {
			score += 10 * *f.Danceability
		}
	}

	switch ctx.Mood {
	case entities.MoodCalm:
		if f.Energy != nil {
			score += 10 * (1 - *f.Energy)
		}
	case entities.MoodEnergetic:
		if f.Energy != nil {
			score += 10 * *f.Energy
		}
	case entities.MoodHappy:
		if f.Valence != nil {
			score += 10 * *f.Valence
		}
	case entities.MoodSad:
		if f.Valence != nil {
			score += 10 * (1 - *f.Valence)
		}
	}

	return score
}

// rerankByContext trie les candidats par score contextuel décroissant. Tri
// stable: les égalités conservent l'ordre ANN.
func rerankByContext(tracks []*entities.Track, ctx *entities.ListeningContext) []*entities.Track {
	sort.SliceStable(tracks, func(i, j int) bool {
		return contextScore(tracks[i], ctx) > contextScore(tracks[j], ctx)
	})
	return tracks
}
