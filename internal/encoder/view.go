package encoder

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"moviefetch/internal/models"
)

// imageKeys are Extra keys dropped when Options.IncludeImages is false.
var imageKeys = map[string]bool{
	"poster_path":   true,
	"backdrop_path": true,
	"profile_path":  true,
	"still_path":    true,
}

// view is the read-only projection of an entity an encoder writes. It
// shares nothing mutable with the entity.
type view struct {
	entity    *models.Entity
	genres    []string
	cast      []models.CastMember
	extraKeys []string
}

func (o Options) project(e *models.Entity) view {
	v := view{entity: e, genres: e.GenresCopy()}
	if v.genres == nil {
		v.genres = []string{}
	}

	if o.IncludeCast {
		v.cast = e.CastCopy()
		if o.MaxCast > 0 && len(v.cast) > o.MaxCast {
			v.cast = v.cast[:o.MaxCast]
		}
	}

	for _, k := range e.ExtraKeys() {
		if !o.IncludeImages && imageKeys[k] {
			continue
		}

		v.extraKeys = append(v.extraKeys, k)
	}

	return v
}

// projectAll projects and checks every entity for format f.
func (o Options) projectAll(f Format, entities []*models.Entity) ([]view, error) {
	views := make([]view, 0, len(entities))

	for i, e := range entities {
		if e == nil {
			return nil, &EncodingError{Format: f, Field: fmt.Sprintf("entities[%d]", i), Reason: "nil entity"}
		}

		v := o.project(e)
		if err := v.check(f); err != nil {
			return nil, err
		}

		views = append(views, v)
	}

	return views, nil
}

func (v view) extra() map[string]models.Scalar {
	m := make(map[string]models.Scalar, len(v.extraKeys))
	for _, k := range v.extraKeys {
		m[k] = v.entity.Extra[k]
	}

	return m
}

// check walks every string the view will write and rejects values the
// format cannot represent.
func (v view) check(f Format) error {
	e := v.entity

	fail := func(field, reason string) error {
		return &EncodingError{Format: f, EntityID: e.ID, Field: field, Reason: reason}
	}

	test := func(field, s string) error {
		if reason := invalidText(f, s); reason != "" {
			return fail(field, reason)
		}

		return nil
	}

	if err := test("title", e.Title); err != nil {
		return err
	}

	if s, ok := e.Overview.Get(); ok {
		if err := test("overview", s); err != nil {
			return err
		}
	}

	for i, g := range v.genres {
		if err := test("genres["+strconv.Itoa(i)+"]", g); err != nil {
			return err
		}
	}

	for i, m := range v.cast {
		prefix := "cast[" + strconv.Itoa(i) + "]"
		if err := test(prefix+".name", m.Name); err != nil {
			return err
		}

		if err := test(prefix+".role", m.Role); err != nil {
			return err
		}
	}

	for _, k := range v.extraKeys {
		if err := test("extra", k); err != nil {
			return err
		}

		if s := e.Extra[k]; s.Kind() == models.ScalarString {
			if err := test("extra."+k, s.String()); err != nil {
				return err
			}
		}
	}

	return nil
}

// invalidText returns why s cannot be written in format f, or "".
func invalidText(f Format, s string) string {
	if !utf8.ValidString(s) {
		return "invalid UTF-8"
	}

	for _, r := range s {
		switch f {
		case XML:
			if !isXMLChar(r) {
				return fmt.Sprintf("character %U is not allowed in XML", r)
			}
		case SQL:
			if r == 0 {
				return "NUL byte in string literal"
			}
		}
	}

	return ""
}

// isXMLChar reports whether r matches the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}
