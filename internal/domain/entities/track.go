package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EmbeddingDim dimension des embeddings de pistes et de profils
const EmbeddingDim = 256

// Track représente une piste musicale du catalogue
type Track struct {
	ID         string         `json:"id" db:"id"`
	Title      string         `json:"title" db:"title"`
	Artist     string         `json:"artist" db:"artist"`
	Genre      string         `json:"genre" db:"genre"`
	Duration   int            `json:"duration" db:"duration"` // en secondes
	URL        string         `json:"url" db:"url"`
	PreviewURL *string        `json:"preview_url,omitempty" db:"preview_url"`
	Features   *AudioFeatures `json:"audio_features,omitempty" db:"audio_features"`
	Embedding  Vector         `json:"-" db:"embedding"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
}

// AudioFeatures caractéristiques audio d'une piste (bornées à leurs plages
// documentées). Les champs consommés par le reranker contextuel sont des
// pointeurs: un champ absent du bag contribue 0, y compris dans les termes
// inversés (1−x).
type AudioFeatures struct {
	Energy           *float64 `json:"energy,omitempty" validate:"omitempty,min=0,max=1"`
	Valence          *float64 `json:"valence,omitempty" validate:"omitempty,min=0,max=1"`
	Danceability     *float64 `json:"danceability,omitempty" validate:"omitempty,min=0,max=1"`
	Tempo            float64  `json:"tempo" validate:"min=0,max=300"`
	Loudness         float64  `json:"loudness" validate:"min=-60,max=0"`
	Speechiness      float64  `json:"speechiness" validate:"min=0,max=1"`
	Acousticness     float64  `json:"acousticness" validate:"min=0,max=1"`
	Instrumentalness float64  `json:"instrumentalness" validate:"min=0,max=1"`
	Liveness         float64  `json:"liveness" validate:"min=0,max=1"`
	Key              int      `json:"key" validate:"min=-1,max=11"`
	Mode             int      `json:"mode" validate:"min=0,max=1"`
	TimeSignature    int      `json:"time_signature" validate:"min=3,max=7"`
}

// Value sérialise les caractéristiques audio vers la colonne JSONB
func (f *AudioFeatures) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// Scan désérialise la colonne JSONB audio_features
func (f *AudioFeatures) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	switch s := src.(type) {
	case []byte:
		return json.Unmarshal(s, f)
	case string:
		return json.Unmarshal([]byte(s), f)
	default:
		return fmt.Errorf("cannot scan %T into AudioFeatures", src)
	}
}

// Vector embedding à 256 dimensions, sérialisé au format pgvector
type Vector []float32

// Value implémente driver.Valuer pour la colonne vector(256)
func (v Vector) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String(), nil
}

// Scan implémente sql.Scanner pour la colonne vector(256)
func (v *Vector) Scan(src interface{}) error {
	if src == nil {
		*v = nil
		return nil
	}

	var raw string
	switch s := src.(type) {
	case string:
		raw = s
	case []byte:
		raw = string(s)
	default:
		return fmt.Errorf("cannot scan %T into Vector", src)
	}

	raw = strings.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '[' || raw[len(raw)-1] != ']' {
		return fmt.Errorf("malformed vector literal: %q", raw)
	}

	body := raw[1 : len(raw)-1]
	if body == "" {
		*v = Vector{}
		return nil
	}

	parts := strings.Split(body, ",")
	out := make(Vector, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fmt.Errorf("malformed vector element %d: %w", i, err)
		}
		out[i] = float32(f)
	}
	*v = out
	return nil
}
