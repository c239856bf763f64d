package encoder

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"moviefetch/internal/models"
	"moviefetch/pkg/utils"
)

const txtBannerWidth = 60

// TXTEncoder writes a human-readable block per entity. The output is not
// meant to be parsed back.
type TXTEncoder struct {
	opts Options
}

// Format returns TXT.
func (t *TXTEncoder) Format() Format { return TXT }

// Encode implements Encoder.
func (t *TXTEncoder) Encode(entities []*models.Entity) (*Document, error) {
	views, err := t.opts.projectAll(TXT, entities)
	if err != nil {
		return nil, err
	}

	// Casers carry state and are not shared between calls.
	upper := cases.Upper(language.English)
	title := cases.Title(language.English)

	blocks := make([]string, 0, len(views))
	for _, v := range views {
		blocks = append(blocks, t.block(v, upper, title))
	}

	var buf bytes.Buffer
	if len(blocks) > 0 {
		buf.WriteString(strings.Join(blocks, "\n\n"))
		buf.WriteByte('\n')
	}

	return newDocument(TXT, entities, buf.Bytes()), nil
}

func (t *TXTEncoder) block(v view, upper, title cases.Caser) string {
	e := v.entity
	banner := strings.Repeat("=", txtBannerWidth)

	lines := []string{
		banner,
		upper.String(e.Kind.String()) + ": " + e.Title,
		banner,
		"ID: " + strconv.FormatInt(e.ID, 10),
		"Release Date: " + orNA(e.ReleaseDate.String()),
	}

	rating := NotAvailable
	if r, ok := e.Rating.Get(); ok {
		rating = formatRating(r) + "/10"
	}

	lines = append(lines, "Rating: "+rating)
	lines = append(lines, "Genres: "+orNA(strings.Join(v.genres, ", ")))

	lines = append(lines, "Overview:")

	overview, ok := e.Overview.Get()
	switch {
	case !ok:
		lines = append(lines, NotAvailable)
	case overview == "":
		lines = append(lines, "")
	default:
		overview = utils.Truncate(utils.NormalizeWhitespace(overview), t.opts.TXTMaxOverview)
		lines = append(lines, utils.Wrap(overview, t.opts.TXTWrapWidth)...)
	}

	if t.opts.IncludeCast {
		if len(v.cast) == 0 {
			lines = append(lines, "Cast: "+NotAvailable)
		} else {
			lines = append(lines, "Cast:")
			for _, m := range v.cast {
				if m.Role == "" {
					lines = append(lines, "  - "+m.Name)
					continue
				}

				lines = append(lines, "  - "+m.Name+" as "+m.Role)
			}
		}
	}

	if len(v.extraKeys) > 0 {
		lines = append(lines, "Details:")
		for _, k := range v.extraKeys {
			label := title.String(strings.ReplaceAll(k, "_", " "))
			lines = append(lines, "  "+label+": "+e.Extra[k].String())
		}
	}

	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}

	return s
}
