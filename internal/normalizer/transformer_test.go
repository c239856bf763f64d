package normalizer

import (
	"encoding/json"
	"errors"
	"testing"

	"moviefetch/internal/models"
)

func TestNewTransformer(t *testing.T) {
	tr := NewTransformer()
	if tr == nil {
		t.Fatal("NewTransformer returned nil")
	}
}

func TestTransformer_Transform(t *testing.T) {
	tr := NewTransformer()

	input := models.RawRecord{
		"id":             "1399",
		"media_type":     "tv",
		"name":           "  Game of Thrones ",
		"first_air_date": "2011-04-17",
		"vote_average":   "8.4",
		"overview":       "Seven noble families fight for control.",
		"genres": []any{
			map[string]any{"id": 18, "name": "Drama"},
			map[string]any{"id": 10765, "name": "Sci-Fi & Fantasy"},
		},
		"credits": map[string]any{
			"cast": []any{
				map[string]any{"name": "Emilia Clarke", "character": "Daenerys Targaryen"},
				map[string]any{"character": "Nameless"},
			},
		},
		"number_of_seasons": "8",
		"original_name":     "Game of Thrones",
		"in_production":     false,
		"popularity":        json.Number("369.594"),
		"networks":          []any{"HBO"},
	}

	e, warnings, err := tr.Transform(input)
	if err != nil {
		t.Fatalf("Transform returned unexpected error: %v", err)
	}

	if e.ID != 1399 {
		t.Errorf("ID = %d, want 1399", e.ID)
	}

	if e.Kind != models.KindSeries {
		t.Errorf("Kind = %s, want series", e.Kind)
	}

	if e.Title != "Game of Thrones" {
		t.Errorf("Title = %q, want trimmed title", e.Title)
	}

	if got := e.ReleaseDate.String(); got != "2011-04-17" {
		t.Errorf("ReleaseDate = %s, want 2011-04-17", got)
	}

	if r, ok := e.Rating.Get(); !ok || r != 8.4 {
		t.Errorf("Rating = %v, want 8.4", r)
	}

	if len(e.Genres) != 2 || e.Genres[0] != "Drama" || e.Genres[1] != "Sci-Fi & Fantasy" {
		t.Errorf("Genres = %v, want [Drama Sci-Fi & Fantasy]", e.Genres)
	}

	if len(e.Cast) != 1 || e.Cast[0].Name != "Emilia Clarke" || e.Cast[0].Role != "Daenerys Targaryen" {
		t.Errorf("Cast = %v, want only the named member", e.Cast)
	}

	if len(warnings) != 2 || warnings[0].Field != "cast[1]" || warnings[1].Field != "extra.networks" {
		t.Errorf("warnings = %v, want cast[1] and extra.networks", warnings)
	}

	if s := e.Extra["number_of_seasons"]; s.Kind() != models.ScalarInt || s.String() != "8" {
		t.Errorf("number_of_seasons = %v (%s), want int 8", s, s.Kind())
	}

	if s := e.Extra["popularity"]; s.Kind() != models.ScalarFloat {
		t.Errorf("popularity kind = %s, want float", s.Kind())
	}

	if s := e.Extra["in_production"]; s.Kind() != models.ScalarBool || s.String() != "false" {
		t.Errorf("in_production = %v, want bool false", s)
	}

	if _, ok := e.Extra["networks"]; ok {
		t.Error("nested values must not be copied into Extra")
	}

	if _, ok := e.Extra["name"]; ok {
		t.Error("structural keys must not be copied into Extra")
	}
}

func TestTransformer_Transform_MissingMarkers(t *testing.T) {
	tr := NewTransformer()

	e, _, err := tr.Transform(models.RawRecord{"id": 1, "kind": "movie", "title": "Bare"})
	if err != nil {
		t.Fatalf("Transform returned unexpected error: %v", err)
	}

	if e.ReleaseDate.State() != models.Absent {
		t.Errorf("ReleaseDate state = %s, want absent", e.ReleaseDate.State())
	}

	if !e.Rating.IsMissing() {
		t.Error("Rating should be missing")
	}

	if !e.Overview.IsMissing() {
		t.Error("Overview should be missing")
	}

	if e.Genres == nil || len(e.Genres) != 0 {
		t.Errorf("Genres = %#v, want empty non-nil slice", e.Genres)
	}

	e, _, err = tr.Transform(models.RawRecord{"id": 2, "kind": "movie", "title": "Empty", "overview": ""})
	if err != nil {
		t.Fatalf("Transform returned unexpected error: %v", err)
	}

	if e.Overview.State() != models.Empty {
		t.Errorf("Overview state = %s, want empty", e.Overview.State())
	}
}

func TestTransformer_Transform_Dates(t *testing.T) {
	tr := NewTransformer()

	tests := []struct {
		name  string
		value any
		want  models.Presence
	}{
		{"valid", "2020-02-29", models.Present},
		{"wrong layout", "29/02/2020", models.Unknown},
		{"empty", "", models.Unknown},
		{"null", nil, models.Unknown},
		{"number", 2020, models.Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _, err := tr.Transform(models.RawRecord{"id": 1, "kind": "movie", "title": "T", "release_date": tt.value})
			if err != nil {
				t.Fatalf("Transform returned unexpected error: %v", err)
			}

			if got := e.ReleaseDate.State(); got != tt.want {
				t.Errorf("ReleaseDate state = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTransformer_Transform_DateAliases(t *testing.T) {
	tr := NewTransformer()

	tests := []struct {
		name      string
		raw       models.RawRecord
		wantState models.Presence
		wantDate  string
	}{
		{"null release date falls through", models.RawRecord{"release_date": nil, "first_air_date": "2020-01-02"}, models.Present, "2020-01-02"},
		{"bad release date falls through", models.RawRecord{"release_date": "TBA", "air_date": "2019-05-19"}, models.Present, "2019-05-19"},
		{"first parseable alias wins", models.RawRecord{"release_date": "2001-01-01", "first_air_date": "2002-02-02"}, models.Present, "2001-01-01"},
		{"all unusable", models.RawRecord{"release_date": nil, "first_air_date": ""}, models.Unknown, "unknown"},
		{"none supplied", models.RawRecord{}, models.Absent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := models.RawRecord{"id": 1, "kind": "series", "title": "T"}
			for k, v := range tt.raw {
				raw[k] = v
			}

			e, _, err := tr.Transform(raw)
			if err != nil {
				t.Fatalf("Transform returned unexpected error: %v", err)
			}

			if got := e.ReleaseDate.State(); got != tt.wantState {
				t.Errorf("ReleaseDate state = %s, want %s", got, tt.wantState)
			}

			if got := e.ReleaseDate.String(); got != tt.wantDate {
				t.Errorf("ReleaseDate = %q, want %q", got, tt.wantDate)
			}
		})
	}
}

func TestTransformer_Transform_Rating(t *testing.T) {
	tr := NewTransformer()

	tests := []struct {
		name        string
		value       any
		wantPresent bool
		wantWarn    bool
	}{
		{"float", 7.5, true, false},
		{"int", 7, true, false},
		{"string", "6.25", true, false},
		{"blank string", " ", false, false},
		{"non numeric", "great", false, true},
		{"too high", 11.0, false, true},
		{"negative", -1, false, true},
		{"bool", true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, warnings, err := tr.Transform(models.RawRecord{"id": 1, "kind": "movie", "title": "T", "rating": tt.value})
			if err != nil {
				t.Fatalf("Transform returned unexpected error: %v", err)
			}

			if _, ok := e.Rating.Get(); ok != tt.wantPresent {
				t.Errorf("rating present = %v, want %v", ok, tt.wantPresent)
			}

			if (len(warnings) > 0) != tt.wantWarn {
				t.Errorf("warnings = %v, want warning %v", warnings, tt.wantWarn)
			}
		})
	}
}

func TestTransformer_Transform_RequiredValueErrors(t *testing.T) {
	tr := NewTransformer()

	tests := []struct {
		name      string
		raw       models.RawRecord
		wantField string
		wantErr   error
	}{
		{"non numeric id", models.RawRecord{"id": "abc", "kind": "movie", "title": "T"}, "id", ErrInvalidValue},
		{"fractional id", models.RawRecord{"id": 1.5, "kind": "movie", "title": "T"}, "id", ErrNotIntegral},
		{"huge id", models.RawRecord{"id": 1e30, "kind": "movie", "title": "T"}, "id", ErrOverflow},
		{"zero id", models.RawRecord{"id": 0, "kind": "movie", "title": "T"}, "id", ErrInvalidValue},
		{"unknown kind", models.RawRecord{"id": 1, "kind": "podcast", "title": "T"}, "kind", ErrInvalidValue},
		{"numeric title", models.RawRecord{"id": 1, "kind": "movie", "title": 42}, "title", ErrInvalidValue},
		{"blank title", models.RawRecord{"id": 1, "kind": "movie", "title": "   "}, "title", ErrMissingField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tr.Transform(tt.raw)
			if err == nil {
				t.Fatal("Transform expected error")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error type = %T, want *ValidationError", err)
			}

			if verr.Field != tt.wantField {
				t.Errorf("Field = %s, want %s", verr.Field, tt.wantField)
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransformer_Transform_GenresString(t *testing.T) {
	tr := NewTransformer()

	e, _, err := tr.Transform(models.RawRecord{"id": 1, "kind": "movie", "title": "T", "genres": "Action, Drama"})
	if err != nil {
		t.Fatalf("Transform returned unexpected error: %v", err)
	}

	if len(e.Genres) != 2 || e.Genres[0] != "Action" || e.Genres[1] != "Drama" {
		t.Errorf("Genres = %v, want [Action Drama]", e.Genres)
	}
}

func TestTransformer_Transform_CaseFoldedKeys(t *testing.T) {
	tr := NewTransformer()

	e, _, err := tr.Transform(models.RawRecord{"ID": 5, "Kind": "Movie", " Title ": "Folded"})
	if err != nil {
		t.Fatalf("Transform returned unexpected error: %v", err)
	}

	if e.ID != 5 || e.Kind != models.KindMovie || e.Title != "Folded" {
		t.Errorf("unexpected entity: %+v", e)
	}
}

func TestTransformer_Transform_NFC(t *testing.T) {
	tr := NewTransformer()

	e, _, err := tr.Transform(models.RawRecord{"id": 1, "kind": "movie", "title": "Ame\u0301lie"})
	if err != nil {
		t.Fatalf("Transform returned unexpected error: %v", err)
	}

	if e.Title != "Am\u00e9lie" {
		t.Errorf("Title = %q, want NFC form", e.Title)
	}
}

func TestTransformer_Transform_Error(t *testing.T) {
	tr := NewTransformer()

	_, _, err := tr.Transform("invalid input")
	if !errors.Is(err, ErrInvalidTransformerDataType) {
		t.Errorf("Transform error = %v, want ErrInvalidTransformerDataType", err)
	}
}

func TestTransformer_Transform_NestedExtraWarns(t *testing.T) {
	tr := NewTransformer()

	e, warnings, err := tr.Transform(models.RawRecord{
		"id":                    1,
		"kind":                  "movie",
		"title":                 "T",
		"production_companies":  []any{map[string]any{"name": "Studio"}},
		"belongs_to_collection": map[string]any{"name": "Saga"},
	})
	if err != nil {
		t.Fatalf("Transform returned unexpected error: %v", err)
	}

	if len(e.Extra) != 0 {
		t.Errorf("Extra = %v, want nested values dropped", e.Extra)
	}

	got := map[string]bool{}
	for _, w := range warnings {
		got[w.Field] = true
	}

	for _, field := range []string{"extra.production_companies", "extra.belongs_to_collection"} {
		if !got[field] {
			t.Errorf("warnings = %v, missing %s", warnings, field)
		}
	}
}

func TestTransformer_Transform_SeasonSummary(t *testing.T) {
	tr := NewTransformer()

	tests := []struct {
		name         string
		input        models.RawRecord
		wantSeasons  string
		wantEpisodes string
		wantWarnings int
	}{
		{
			"counts from seasons",
			models.RawRecord{"seasons": []any{
				map[string]any{"season_number": 1, "episode_count": 10},
				map[string]any{"season_number": 2, "episode_count": "8"},
			}},
			"2", "18", 0,
		},
		{
			"upstream counts win",
			models.RawRecord{"number_of_seasons": 5, "number_of_episodes": 50, "seasons": []any{
				map[string]any{"season_number": 1, "episode_count": 10},
			}},
			"5", "50", 0,
		},
		{
			"nested episode lists",
			models.RawRecord{"seasons": []any{
				map[string]any{"episodes": []any{map[string]any{"id": 2}, map[string]any{"id": 3}}},
				"junk",
			}},
			"1", "2", 1,
		},
		{
			"not a list",
			models.RawRecord{"seasons": "eight"},
			"", "", 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := models.RawRecord{"id": 1, "kind": "tv", "name": "Show"}
			for k, v := range tt.input {
				raw[k] = v
			}

			e, warnings, err := tr.Transform(raw)
			if err != nil {
				t.Fatalf("Transform returned unexpected error: %v", err)
			}

			if got := e.Extra["number_of_seasons"].String(); got != tt.wantSeasons {
				t.Errorf("number_of_seasons = %q, want %q", got, tt.wantSeasons)
			}

			if got := e.Extra["number_of_episodes"].String(); got != tt.wantEpisodes {
				t.Errorf("number_of_episodes = %q, want %q", got, tt.wantEpisodes)
			}

			if len(warnings) != tt.wantWarnings {
				t.Errorf("warnings = %v, want %d", warnings, tt.wantWarnings)
			}
		})
	}
}

func TestTransformer_Episodes(t *testing.T) {
	tr := NewTransformer()

	raw := models.RawRecord{
		"id":   7,
		"kind": "tv",
		"name": "Show",
		"Episodes": []any{
			map[string]any{"id": 70, "name": "Own kind", "kind": "movie", "series_id": 9},
			"junk",
		},
		"seasons": []any{
			map[string]any{"season_number": 3, "episodes": []any{map[string]any{"id": 71, "name": "S3E1"}}},
		},
	}

	parent := &models.Entity{ID: 7, Kind: models.KindSeries}

	eps := tr.Episodes(raw, parent)
	if len(eps) != 3 {
		t.Fatalf("Episodes = %v, want 3 records", eps)
	}

	if eps[0]["kind"] != "movie" || eps[0]["series_id"] != 9 {
		t.Errorf("explicit fields should be kept: %v", eps[0])
	}

	if eps[1] != nil {
		t.Errorf("non-object item = %v, want nil", eps[1])
	}

	if eps[2]["kind"] != "episode" || eps[2]["series_id"] != int64(7) || eps[2]["season_number"] != 3 {
		t.Errorf("season episode defaults = %v", eps[2])
	}

	if _, ok := raw["Episodes"].([]any)[0].(map[string]any)["season_number"]; ok {
		t.Error("Episodes must not modify the input record")
	}

	if got := tr.Episodes(raw, &models.Entity{ID: 7, Kind: models.KindMovie}); got != nil {
		t.Errorf("Episodes for a movie = %v, want nil", got)
	}
}
