package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListeningContext_Normalize_DropsUnknownFields(t *testing.T) {
	ctx := &ListeningContext{
		Mood:       "GRUMPY",
		Activity:   ActivityExercise,
		TimeBucket: "BRUNCH",
	}

	// Execute
	normalized := ctx.Normalize()

	// Assert
	assert.NotNil(t, normalized)
	assert.Empty(t, normalized.Mood)
	assert.Equal(t, ActivityExercise, normalized.Activity)
	assert.Empty(t, normalized.TimeBucket)
}

func TestListeningContext_Normalize_EmptyFoldsToNil(t *testing.T) {
	assert.Nil(t, (&ListeningContext{}).Normalize())
	assert.Nil(t, (*ListeningContext)(nil).Normalize())
	assert.Nil(t, (&ListeningContext{Mood: "NOPE"}).Normalize())
}

func TestListeningContext_Normalize_UppercasesInput(t *testing.T) {
	normalized := (&ListeningContext{Mood: "happy", Activity: "party"}).Normalize()

	assert.Equal(t, MoodHappy, normalized.Mood)
	assert.Equal(t, ActivityParty, normalized.Activity)
}

func TestListeningContext_CacheKeyPart_StableOrder(t *testing.T) {
	a := &ListeningContext{Mood: MoodCalm, Activity: ActivityWork, TimeBucket: TimeNight}
	b := &ListeningContext{TimeBucket: TimeNight, Activity: ActivityWork, Mood: MoodCalm}

	// Assert: même contexte → même clé, quel que soit l'ordre de construction
	assert.Equal(t, a.CacheKeyPart(), b.CacheKeyPart())
	assert.Equal(t, "activity=WORK|mood=CALM|timeBucket=NIGHT", a.CacheKeyPart())
}

func TestListeningContext_CacheKeyPart_MissingEqualsEmpty(t *testing.T) {
	var missing *ListeningContext

	assert.Equal(t, "none", missing.CacheKeyPart())
	assert.Equal(t, "none", (&ListeningContext{}).CacheKeyPart())
}
