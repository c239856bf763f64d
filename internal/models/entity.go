// Package models defines the catalog entities produced by the normalizer and
// consumed by the encoders.
package models

import (
	"slices"
	"sort"
)

// RawRecord is a single upstream catalog item as decoded from JSON or YAML.
// Its shape varies per record and per kind.
type RawRecord map[string]any

// Entity is the normalized, read-only representation of one catalog item.
// Encoders must not modify an Entity or any slice or map reachable from it.
type Entity struct {
	ID          int64             `json:"id" validate:"gt=0"`
	Kind        Kind              `json:"kind" validate:"required,oneof=movie series episode person"`
	Title       string            `json:"title" validate:"required"`
	ReleaseDate OptDate           `json:"release_date"`
	Rating      OptFloat          `json:"rating"`
	Genres      []string          `json:"genres" validate:"dive,required"`
	Overview    OptString         `json:"overview"`
	Cast        []CastMember      `json:"cast" validate:"dive"`
	Extra       map[string]Scalar `json:"extra"`
}

// CastMember is one credited person on an entity.
type CastMember struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role"`
}

// ExtraKeys returns the keys of Extra in sorted order.
func (e *Entity) ExtraKeys() []string {
	keys := make([]string, 0, len(e.Extra))
	for k := range e.Extra {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// GenresCopy returns a copy of the genre list in source order.
func (e *Entity) GenresCopy() []string {
	return slices.Clone(e.Genres)
}

// CastCopy returns a copy of the cast list in source order.
func (e *Entity) CastCopy() []CastMember {
	return slices.Clone(e.Cast)
}
