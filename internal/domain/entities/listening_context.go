package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Mood humeur déclarée par le client au moment de la requête
type Mood string

// Activity activité en cours déclarée par le client
type Activity string

// TimeBucket tranche horaire déclarée par le client
type TimeBucket string

const (
	MoodCalm      Mood = "CALM"
	MoodHappy     Mood = "HAPPY"
	MoodSad       Mood = "SAD"
	MoodEnergetic Mood = "ENERGETIC"

	ActivityWork     Activity = "WORK"
	ActivityExercise Activity = "EXERCISE"
	ActivityRelax    Activity = "RELAX"
	ActivityParty    Activity = "PARTY"

	TimeMorning   TimeBucket = "MORNING"
	TimeAfternoon TimeBucket = "AFTERNOON"
	TimeEvening   TimeBucket = "EVENING"
	TimeNight     TimeBucket = "NIGHT"
)

// ListeningContext contexte optionnel d'une requête de recommandation ou
// d'une interaction
type ListeningContext struct {
	Mood       Mood       `json:"mood,omitempty"`
	Activity   Activity   `json:"activity,omitempty"`
	TimeBucket TimeBucket `json:"timeBucket,omitempty"`
}

func validMood(m Mood) bool {
	switch m {
	case MoodCalm, MoodHappy, MoodSad, MoodEnergetic:
		return true
	}
	return false
}

func validActivity(a Activity) bool {
	switch a {
	case ActivityWork, ActivityExercise, ActivityRelax, ActivityParty:
		return true
	}
	return false
}

func validTimeBucket(t TimeBucket) bool {
	switch t {
	case TimeMorning, TimeAfternoon, TimeEvening, TimeNight:
		return true
	}
	return false
}

// Normalize retire les champs inconnus et replie un contexte vide sur nil,
// pour qu'un contexte absent et un contexte vide produisent la même clé
func (c *ListeningContext) Normalize() *ListeningContext {
	if c == nil {
		return nil
	}

	out := &ListeningContext{}
	if validMood(Mood(strings.ToUpper(string(c.Mood)))) {
		out.Mood = Mood(strings.ToUpper(string(c.Mood)))
	}
	if validActivity(Activity(strings.ToUpper(string(c.Activity)))) {
		out.Activity = Activity(strings.ToUpper(string(c.Activity)))
	}
	if validTimeBucket(TimeBucket(strings.ToUpper(string(c.TimeBucket)))) {
		out.TimeBucket = TimeBucket(strings.ToUpper(string(c.TimeBucket)))
	}

	if out.IsEmpty() {
		return nil
	}
	return out
}

// IsEmpty indique qu'aucun champ du contexte n'est renseigné
func (c *ListeningContext) IsEmpty() bool {
	return c == nil || (c.Mood == "" && c.Activity == "" && c.TimeBucket == "")
}

// CacheKeyPart sérialise le contexte normalisé avec un ordre de clés stable.
// Un contexte nil donne "none".
func (c *ListeningContext) CacheKeyPart() string {
	if c.IsEmpty() {
		return "none"
	}
	parts := make([]string, 0, 3)
	if c.Activity != "" {
		parts = append(parts, "activity="+string(c.Activity))
	}
	if c.Mood != "" {
		parts = append(parts, "mood="+string(c.Mood))
	}
	if c.TimeBucket != "" {
		parts = append(parts, "timeBucket="+string(c.TimeBucket))
	}
	return strings.Join(parts, "|")
}

// Value sérialise le contexte vers la colonne JSONB
func (c *ListeningContext) Value() (driver.Value, error) {
	if c.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan désérialise la colonne JSONB de contexte
func (c *ListeningContext) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	switch s := src.(type) {
	case []byte:
		return json.Unmarshal(s, c)
	case string:
		return json.Unmarshal([]byte(s), c)
	default:
		return fmt.Errorf("cannot scan %T into ListeningContext", src)
	}
}
