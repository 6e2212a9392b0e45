package entities

import (
	"time"
)

// EventType type d'événement d'interaction
type EventType string

const (
	EventPlay          EventType = "PLAY"
	EventSkip          EventType = "SKIP"
	EventLike          EventType = "LIKE"
	EventDislike       EventType = "DISLIKE"
	EventAddToPlaylist EventType = "ADD_TO_PLAYLIST"
)

// ValidEventType vérifie qu'un type d'événement fait partie de l'énumération
func ValidEventType(t EventType) bool {
	switch t {
	case EventPlay, EventSkip, EventLike, EventDislike, EventAddToPlaylist:
		return true
	}
	return false
}

// Interaction est un événement d'écoute, en append-only. L'horodatage fait foi
// côté serveur; clientTs est transporté mais jamais utilisé pour une décision.
type Interaction struct {
	ID             int64             `json:"id" db:"id"`
	ExternalUserID string            `json:"external_user_id" db:"external_user_id"`
	TrackID        string            `json:"track_id" db:"track_id"`
	EventType      EventType         `json:"event_type" db:"event_type"`
	EventValue     *int              `json:"event_value,omitempty" db:"event_value"`
	Context        *ListeningContext `json:"context,omitempty" db:"context"`
	ClientTs       *time.Time        `json:"client_ts,omitempty" db:"client_ts"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
}

// InteractionEvent requête de création d'une interaction. L'identité portée
// par le corps est ignorée au profit de l'identité authentifiée.
type InteractionEvent struct {
	TrackID    string            `json:"trackId" validate:"required,max=64"`
	EventType  EventType         `json:"eventType" validate:"required"`
	EventValue *int              `json:"eventValue,omitempty" validate:"omitempty,min=0"`
	Context    *ListeningContext `json:"context,omitempty"`
	ClientTs   *time.Time        `json:"clientTs,omitempty"`
}

// InteractionStats agrégats d'interactions d'un utilisateur sur toute la durée
type InteractionStats struct {
	Total     int64 `json:"total" db:"total"`
	LikeCount int64 `json:"like_count" db:"like_count"`
	SkipCount int64 `json:"skip_count" db:"skip_count"`
	PlayCount int64 `json:"play_count" db:"play_count"`
}

// InteractionWithTrackMeta ligne d'interaction jointe aux métadonnées de piste,
// consommée par le moteur de graphe d'intérêts
type InteractionWithTrackMeta struct {
	EventType EventType `db:"event_type"`
	CreatedAt time.Time `db:"created_at"`
	Artist    string    `db:"artist"`
	Genre     string    `db:"genre"`
}
