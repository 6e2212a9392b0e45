package recommend

import (
	"github.com/auralis/auralis-backend/internal/domain/entities"
)

// enforceArtistDiversity parcourt la liste classée et retient chaque piste
// sauf si elle créerait une suite de plus de maxRun pistes consécutives du
// même artiste. Les pistes écartées sont abandonnées, jamais réinsérées.
func enforceArtistDiversity(tracks []*entities.Track, maxRun int) []*entities.Track {
	if maxRun <= 0 {
		return tracks
	}

	out := make([]*entities.Track, 0, len(tracks))
	for _, t := range tracks {
		run := 0
		for i := len(out) - 1; i >= 0 && out[i].Artist == t.Artist; i-- {
			run++
		}
		if run >= maxRun {
			continue
		}
		out = append(out, t)
	}
	return out
}
