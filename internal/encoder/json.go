package encoder

import (
	"bytes"
	"encoding/json"
	"fmt"

	"moviefetch/internal/models"
)

// jsonEntity fixes the key order of one JSON object.
type jsonEntity struct {
	ID          int64                    `json:"id"`
	Kind        models.Kind              `json:"kind"`
	Title       string                   `json:"title"`
	ReleaseDate models.OptDate           `json:"release_date"`
	Rating      models.OptFloat          `json:"rating"`
	Genres      []string                 `json:"genres"`
	Overview    models.OptString         `json:"overview"`
	Cast        []models.CastMember      `json:"cast"`
	Extra       map[string]models.Scalar `json:"extra"`
}

// JSONEncoder writes an indented JSON array.
type JSONEncoder struct {
	opts Options
}

// Format returns JSON.
func (j *JSONEncoder) Format() Format { return JSON }

// Encode implements Encoder.
func (j *JSONEncoder) Encode(entities []*models.Entity) (*Document, error) {
	views, err := j.opts.projectAll(JSON, entities)
	if err != nil {
		return nil, err
	}

	out := make([]jsonEntity, 0, len(views))

	for _, v := range views {
		e := v.entity

		cast := v.cast
		if cast == nil {
			cast = []models.CastMember{}
		}

		out = append(out, jsonEntity{
			ID:          e.ID,
			Kind:        e.Kind,
			Title:       e.Title,
			ReleaseDate: e.ReleaseDate,
			Rating:      e.Rating,
			Genres:      v.genres,
			Overview:    e.Overview,
			Cast:        cast,
			Extra:       v.extra(),
		})
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("%w: json: %w", ErrEncoding, err)
	}

	return newDocument(JSON, entities, buf.Bytes()), nil
}
