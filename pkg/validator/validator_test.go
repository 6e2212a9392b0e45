package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type preferencesPayload struct {
	PreferredGenres []string `validate:"required,min=1,max=10,dive,safe_genre"`
}

type identityPayload struct {
	UserID string `validate:"required,external_user_id"`
}

type freeTextPayload struct {
	Comment string `validate:"no_sql_injection,no_xss"`
}

func TestValidator_SafeGenre(t *testing.T) {
	v := New()

	testCases := []struct {
		name    string
		genres  []string
		wantErr bool
	}{
		{"accepts plain genres", []string{"Pop", "Electronic"}, false},
		{"accepts accents and separators", []string{"Variété française", "Drum & Bass", "Hip-Hop/Rap"}, false},
		{"rejects empty genre", []string{""}, true},
		{"rejects markup", []string{"<script>alert(1)</script>"}, true},
		{"rejects empty list", []string{}, true},
		{"rejects more than ten", make([]string, 11), true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Validate(&preferencesPayload{PreferredGenres: tc.genres})
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_ExternalUserID(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&identityPayload{UserID: "platform-user-42"}))
	assert.Error(t, v.Validate(&identityPayload{UserID: ""}))
	assert.Error(t, v.Validate(&identityPayload{UserID: "with space"}))

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, v.Validate(&identityPayload{UserID: string(long)}))
}

func TestValidator_SecurityRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&freeTextPayload{Comment: "great track"}))
	assert.Error(t, v.Validate(&freeTextPayload{Comment: "x'; drop table interactions; --"}))
	assert.Error(t, v.Validate(&freeTextPayload{Comment: "<script>steal()</script>"}))
}
