package normalizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"moviefetch/internal/models"
)

// ErrInvalidTransformerDataType is returned when the data type is invalid.
var ErrInvalidTransformerDataType = errors.New("invalid data type: expected models.RawRecord")

// Rating bounds.
const (
	MinRating = 0.0
	MaxRating = 10.0
)

// numericExtraKeys are kind-specific fields that upstream sometimes sends as
// strings. They are coerced to integers; popularity is the only float.
var numericExtraKeys = map[string]bool{
	"runtime":            true,
	"episode_number":     true,
	"season_number":      true,
	"series_id":          true,
	"vote_count":         true,
	"number_of_seasons":  true,
	"number_of_episodes": true,
	"budget":             true,
	"revenue":            true,
}

var floatExtraKeys = map[string]bool{
	"popularity": true,
}

// Warning is a non-fatal problem found while transforming a record. The
// affected value is treated as missing or dropped.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return w.Field + ": " + w.Message
}

// Transformer handles data format transformations.
type Transformer struct {
	validator *Validator
}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{validator: NewValidator()}
}

// Transform converts a raw record into an Entity. Required fields are assumed
// present (see Validator.Validate); their values are still coerced and a bad
// value is returned as a *ValidationError.
func (t *Transformer) Transform(data any) (*models.Entity, []Warning, error) {
	raw, ok := data.(models.RawRecord)
	if !ok {
		m, isMap := data.(map[string]any)
		if !isMap {
			return nil, nil, ErrInvalidTransformerDataType
		}

		raw = m
	}

	f := canonicalize(raw)

	var warnings []Warning

	warn := func(field, format string, args ...any) {
		warnings = append(warnings, Warning{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	e := &models.Entity{}

	if err := t.transformRequired(f, e); err != nil {
		return nil, nil, err
	}

	e.ReleaseDate = transformDate(f)
	e.Rating = transformRating(f, warn)
	e.Overview = transformOverview(f, warn)
	e.Genres = transformGenres(f, warn)
	e.Cast = t.transformCast(f, warn)
	e.Extra = transformExtra(f, warn)
	summarizeSeasons(f, e.Extra, warn)

	return e, warnings, nil
}

func (t *Transformer) transformRequired(f fields, e *models.Entity) error {
	rawID, _, ok := f.present(idKeys)
	if !ok {
		return missing("id")
	}

	id, err := toInt(rawID)
	if err != nil {
		return invalid("id", rawID, err)
	}

	if id <= 0 {
		return invalid("id", rawID, errors.New("must be positive"))
	}

	e.ID = id

	rawKind, _, ok := f.present(kindKeys)
	if !ok {
		return missing("kind")
	}

	kindStr, err := toString(rawKind)
	if err != nil {
		return invalid("kind", rawKind, err)
	}

	kind, ok := models.ParseKind(kindStr)
	if !ok {
		return invalid("kind", rawKind, errors.New("unsupported kind"))
	}

	e.Kind = kind

	rawTitle, _, ok := f.present(titleKeys)
	if !ok {
		return missing("title")
	}

	title, err := toString(rawTitle)
	if err != nil {
		return invalid("title", rawTitle, err)
	}

	title = cleanText(strings.TrimSpace(title))
	if title == "" {
		return missing("title")
	}

	e.Title = title

	return nil
}

// transformDate never fails: a supplied but unusable date becomes Unknown.
// Aliases are tried in order and the first parseable one wins, so a null
// release_date does not hide a first_air_date.
func transformDate(f fields) models.OptDate {
	supplied := false

	for _, key := range dateKeys {
		v, ok := f[key]
		if !ok {
			continue
		}

		supplied = true

		if d, ok := parseDate(v); ok {
			return models.DateOf(d)
		}
	}

	if supplied {
		return models.UnknownDate()
	}

	return models.MissingDate()
}

func parseDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case time.Time:
		return d, true
	case string:
		parsed, err := time.Parse(models.DateLayout, strings.TrimSpace(d))
		if err != nil {
			return time.Time{}, false
		}

		return parsed, true
	default:
		return time.Time{}, false
	}
}

func transformRating(f fields, warn func(field, format string, args ...any)) models.OptFloat {
	v, key, ok := f.present(ratingKeys)
	if !ok {
		return models.MissingFloat()
	}

	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return models.MissingFloat()
	}

	r, err := toFloat(v)
	if err != nil {
		warn("rating", "%s %v, treated as missing", key, err)
		return models.MissingFloat()
	}

	if r < MinRating || r > MaxRating {
		warn("rating", "%s %v outside [%v, %v], treated as missing", key, r, MinRating, MaxRating)
		return models.MissingFloat()
	}

	return models.FloatOf(r)
}

func transformOverview(f fields, warn func(field, format string, args ...any)) models.OptString {
	v, key, ok := f.present(overviewKeys)
	if !ok {
		return models.MissingString()
	}

	s, err := toString(v)
	if err != nil {
		warn("overview", "%s %v, treated as missing", key, err)
		return models.MissingString()
	}

	return models.StringOf(cleanText(s))
}

func transformGenres(f fields, warn func(field, format string, args ...any)) []string {
	v, _, ok := f.present(genresKeys)
	if !ok {
		return []string{}
	}

	var items []any

	switch g := v.(type) {
	case []any:
		items = g
	case []string:
		for _, s := range g {
			items = append(items, s)
		}
	case string:
		for _, s := range strings.Split(g, ",") {
			items = append(items, s)
		}
	default:
		warn("genres", "unsupported type %T, ignored", v)
		return []string{}
	}

	genres := make([]string, 0, len(items))

	for i, item := range items {
		var name string

		switch g := item.(type) {
		case string:
			name = g
		case map[string]any:
			name, _ = g["name"].(string)
		}

		name = cleanText(strings.TrimSpace(name))
		if name == "" {
			warn(fmt.Sprintf("genres[%d]", i), "entry without a name dropped")
			continue
		}

		genres = append(genres, name)
	}

	return genres
}

func (t *Transformer) transformCast(f fields, warn func(field, format string, args ...any)) []models.CastMember {
	v, _, ok := f.present(castKeys)
	if !ok {
		if credits, _, hasCredits := f.present(creditsKeys); hasCredits {
			if m, isMap := credits.(map[string]any); isMap {
				v, ok = m["cast"], m["cast"] != nil
			}
		}
	}

	if !ok {
		return []models.CastMember{}
	}

	items, isList := v.([]any)
	if !isList {
		warn("cast", "unsupported type %T, ignored", v)
		return []models.CastMember{}
	}

	cast := make([]models.CastMember, 0, len(items))

	for i, item := range items {
		m, ok := castMember(item)
		if !ok || !t.validator.validCastMember(m) {
			warn(fmt.Sprintf("cast[%d]", i), "entry without a name dropped")
			continue
		}

		cast = append(cast, m)
	}

	return cast
}

func castMember(item any) (models.CastMember, bool) {
	var name, role string

	switch c := item.(type) {
	case string:
		name = c
	case map[string]any:
		name, _ = c["name"].(string)
		if role, _ = c["role"].(string); role == "" {
			role, _ = c["character"].(string)
		}
	case map[string]string:
		name = c["name"]
		if role = c["role"]; role == "" {
			role = c["character"]
		}
	default:
		return models.CastMember{}, false
	}

	m := models.CastMember{
		Name: cleanText(strings.TrimSpace(name)),
		Role: cleanText(strings.TrimSpace(role)),
	}

	return m, m.Name != ""
}

// transformExtra copies the remaining scalar fields. Nested values cannot be
// represented in Extra and are dropped with a warning.
func transformExtra(f fields, warn func(field, format string, args ...any)) map[string]models.Scalar {
	extra := make(map[string]models.Scalar)

	for key, v := range f {
		if _, structural := structuralKeys[key]; structural || v == nil {
			continue
		}

		field := "extra." + key

		switch {
		case numericExtraKeys[key]:
			i, err := toInt(v)
			if err != nil {
				warn(field, "%v, dropped", err)
				continue
			}

			extra[key] = models.IntScalar(i)
		case floatExtraKeys[key]:
			fl, err := toFloat(v)
			if err != nil {
				warn(field, "%v, dropped", err)
				continue
			}

			extra[key] = models.FloatScalar(fl)
		default:
			s, ok := scalarOf(v)
			if !ok {
				warn(field, "nested %T value dropped", v)
				continue
			}

			extra[key] = s
		}
	}

	return extra
}

func scalarOf(v any) (models.Scalar, bool) {
	switch x := v.(type) {
	case string:
		return models.StringScalar(cleanText(x)), true
	case bool:
		return models.BoolScalar(x), true
	case float64, float32:
		fl, err := toFloat(x)
		if err != nil {
			return models.Scalar{}, false
		}

		return models.FloatScalar(fl), true
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return models.IntScalar(i), true
		}

		if fl, err := x.Float64(); err == nil {
			return models.FloatScalar(fl), true
		}

		return models.StringScalar(x.String()), true
	case time.Time:
		return models.StringScalar(x.Format(time.RFC3339)), true
	default:
		if i, err := toInt(v); err == nil {
			return models.IntScalar(i), true
		}

		return models.Scalar{}, false
	}
}

// cleanText applies Unicode NFC so visually identical titles encode identically.
func cleanText(s string) string {
	return norm.NFC.String(s)
}
