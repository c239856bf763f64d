package normalizer

import (
	"sort"
	"strings"

	"moviefetch/internal/models"
)

// Upstream key aliases, in priority order. TMDB names series and people with
// "name" and dates with "first_air_date" / "air_date".
var (
	idKeys       = []string{"id"}
	kindKeys     = []string{"kind", "media_type"}
	titleKeys    = []string{"title", "name"}
	dateKeys     = []string{"release_date", "first_air_date", "air_date", "birthday"}
	ratingKeys   = []string{"rating", "vote_average"}
	overviewKeys = []string{"overview", "biography"}
	genresKeys   = []string{"genres"}
	castKeys     = []string{"cast"}
	creditsKeys  = []string{"credits"}
	episodesKeys = []string{"episodes"}
	seasonsKeys  = []string{"seasons"}
)

// structuralKeys are consumed by named Entity fields, or expanded into their
// own entities, and never copied into Extra.
var structuralKeys = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, group := range [][]string{idKeys, kindKeys, titleKeys, dateKeys, ratingKeys, overviewKeys, genresKeys, castKeys, creditsKeys, episodesKeys, seasonsKeys} {
		for _, k := range group {
			set[k] = struct{}{}
		}
	}

	return set
}()

// fields is a raw record with canonical (lower-cased, trimmed) keys.
type fields map[string]any

// canonicalize folds raw keys. When two keys fold to the same name the one
// already spelled canonically wins, otherwise the first in sorted order.
func canonicalize(raw models.RawRecord) fields {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make(fields, len(raw))
	exact := make(map[string]bool, len(raw))

	for _, k := range keys {
		ck := strings.ToLower(strings.TrimSpace(k))
		if ck == "" {
			continue
		}

		if _, seen := out[ck]; seen && (exact[ck] || k != ck) {
			continue
		}

		out[ck] = raw[k]
		exact[ck] = k == ck
	}

	return out
}

// present returns the non-nil value under the first alias in f, together with
// the key it was found under.
func (f fields) present(keys []string) (any, string, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok && v != nil {
			return v, k, true
		}
	}

	return nil, "", false
}
