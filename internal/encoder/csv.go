package encoder

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"moviefetch/internal/models"
)

// CSVEncoder writes one row per entity under CSVHeader. Quoting follows
// RFC 4180.
type CSVEncoder struct {
	opts Options
}

// Format returns CSV.
func (c *CSVEncoder) Format() Format { return CSV }

// Encode implements Encoder.
func (c *CSVEncoder) Encode(entities []*models.Entity) (*Document, error) {
	views, err := c.opts.projectAll(CSV, entities)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	w.Comma = c.opts.CSVDelimiter

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("%w: csv header: %w", ErrEncoding, err)
	}

	for _, v := range views {
		row, err := csvRow(v)
		if err != nil {
			return nil, err
		}

		if err := w.Write(row); err != nil {
			return nil, &EncodingError{Format: CSV, EntityID: v.entity.ID, Reason: err.Error()}
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: csv: %w", ErrEncoding, err)
	}

	return newDocument(CSV, entities, buf.Bytes()), nil
}

func csvRow(v view) ([]string, error) {
	e := v.entity

	rating := ""
	if r, ok := e.Rating.Get(); ok {
		rating = formatRating(r)
	}

	overview, _ := e.Overview.Get()

	cast := v.cast
	if cast == nil {
		cast = []models.CastMember{}
	}

	castJSON, err := json.Marshal(cast)
	if err != nil {
		return nil, &EncodingError{Format: CSV, EntityID: e.ID, Field: "cast", Reason: err.Error()}
	}

	extraJSON, err := json.Marshal(v.extra())
	if err != nil {
		return nil, &EncodingError{Format: CSV, EntityID: e.ID, Field: "extra", Reason: err.Error()}
	}

	return []string{
		strconv.FormatInt(e.ID, 10),
		e.Kind.String(),
		e.Title,
		e.ReleaseDate.String(),
		rating,
		strings.Join(v.genres, CSVListSeparator),
		overview,
		string(castJSON),
		string(extraJSON),
	}, nil
}
