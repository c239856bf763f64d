package normalizer

import (
	"fmt"

	"moviefetch/internal/models"
)

// Episodes returns the episode records nested in a series record, in the
// order they appear: the top-level "episodes" list first, then the episodes
// of each entry in "seasons". Each record is a copy that defaults kind to
// episode, series_id to the parent id and season_number to the enclosing
// season. An item that is not an object is returned as nil.
func (t *Transformer) Episodes(raw models.RawRecord, parent *models.Entity) []models.RawRecord {
	if parent == nil || parent.Kind != models.KindSeries {
		return nil
	}

	f := canonicalize(raw)

	var out []models.RawRecord

	if v, _, ok := f.present(episodesKeys); ok {
		out = appendEpisodes(out, v, parent.ID, nil)
	}

	if v, _, ok := f.present(seasonsKeys); ok {
		seasons, _ := v.([]any)
		for _, item := range seasons {
			season, isMap := item.(map[string]any)
			if !isMap {
				continue
			}

			sf := canonicalize(season)
			if eps, _, ok := sf.present(episodesKeys); ok {
				out = appendEpisodes(out, eps, parent.ID, sf["season_number"])
			}
		}
	}

	return out
}

func appendEpisodes(out []models.RawRecord, v any, seriesID int64, seasonNumber any) []models.RawRecord {
	items, _ := v.([]any)

	for _, item := range items {
		m, isMap := item.(map[string]any)
		if !isMap {
			out = append(out, nil)
			continue
		}

		ef := canonicalize(m)

		ep := make(models.RawRecord, len(m)+3)
		for k, val := range m {
			ep[k] = val
		}

		if _, _, ok := ef.present(kindKeys); !ok {
			ep["kind"] = string(models.KindEpisode)
		}

		if _, ok := ef["series_id"]; !ok {
			ep["series_id"] = seriesID
		}

		if _, ok := ef["season_number"]; !ok && seasonNumber != nil {
			ep["season_number"] = seasonNumber
		}

		out = append(out, ep)
	}

	return out
}

// summarizeSeasons fills number_of_seasons and number_of_episodes from a
// "seasons" list when upstream did not send them.
func summarizeSeasons(f fields, extra map[string]models.Scalar, warn func(field, format string, args ...any)) {
	v, _, ok := f.present(seasonsKeys)
	if !ok {
		return
	}

	seasons, isList := v.([]any)
	if !isList {
		warn("seasons", "unsupported type %T, ignored", v)
		return
	}

	var count, episodes int64

	for i, item := range seasons {
		season, isMap := item.(map[string]any)
		if !isMap {
			warn(fmt.Sprintf("seasons[%d]", i), "unsupported type %T, ignored", item)
			continue
		}

		count++

		sf := canonicalize(season)
		if n, err := toInt(sf["episode_count"]); err == nil {
			episodes += n
		} else if eps, isList := sf["episodes"].([]any); isList {
			episodes += int64(len(eps))
		}
	}

	if _, ok := extra["number_of_seasons"]; !ok && count > 0 {
		extra["number_of_seasons"] = models.IntScalar(count)
	}

	if _, ok := extra["number_of_episodes"]; !ok && episodes > 0 {
		extra["number_of_episodes"] = models.IntScalar(episodes)
	}
}
