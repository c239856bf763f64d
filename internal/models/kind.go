package models

import "strings"

// Kind enumerates the catalog entity kinds.
type Kind string

// Entity kinds.
const (
	KindMovie   Kind = "movie"
	KindSeries  Kind = "series"
	KindEpisode Kind = "episode"
	KindPerson  Kind = "person"
)

// Kinds lists every supported kind in declaration order.
var Kinds = []Kind{KindMovie, KindSeries, KindEpisode, KindPerson}

// kindAliases maps upstream spellings to kinds. TMDB uses "tv" for series.
var kindAliases = map[string]Kind{
	"movie":   KindMovie,
	"film":    KindMovie,
	"series":  KindSeries,
	"tv":      KindSeries,
	"tv_show": KindSeries,
	"show":    KindSeries,
	"episode": KindEpisode,
	"person":  KindPerson,
	"people":  KindPerson,
}

// ParseKind resolves an upstream kind string. Matching ignores case and
// surrounding whitespace.
func ParseKind(s string) (Kind, bool) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	return k, ok
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindMovie, KindSeries, KindEpisode, KindPerson:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}
