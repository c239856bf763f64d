package encoder

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"moviefetch/internal/models"
)

type xmlCatalog struct {
	XMLName   xml.Name   `xml:"catalog"`
	Generator string     `xml:"generator,attr"`
	Count     int        `xml:"count,attr"`
	Entries   []xmlEntry `xml:"entry"`
}

// xmlEntry keeps id as the only attribute. Pointer fields are nil for
// missing values so the element is omitted rather than written empty.
type xmlEntry struct {
	ID          int64      `xml:"id,attr"`
	Kind        string     `xml:"kind"`
	Title       string     `xml:"title"`
	ReleaseDate *string    `xml:"release_date"`
	Rating      *string    `xml:"rating"`
	Genres      *xmlGenres `xml:"genres"`
	Overview    *string    `xml:"overview"`
	Cast        *xmlCast   `xml:"cast"`
	Extra       *xmlExtra  `xml:"extra"`
}

type xmlGenres struct {
	Genre []string `xml:"genre"`
}

type xmlCast struct {
	Member []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name string  `xml:"name"`
	Role *string `xml:"role"`
}

type xmlExtra struct {
	Field []xmlField `xml:"field"`
}

type xmlField struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

// XMLEncoder writes a catalog document with one entry element per entity.
type XMLEncoder struct {
	opts Options
}

// Format returns XML.
func (x *XMLEncoder) Format() Format { return XML }

// Encode implements Encoder.
func (x *XMLEncoder) Encode(entities []*models.Entity) (*Document, error) {
	views, err := x.opts.projectAll(XML, entities)
	if err != nil {
		return nil, err
	}

	doc := xmlCatalog{
		Generator: XMLGenerator,
		Count:     len(views),
		Entries:   make([]xmlEntry, 0, len(views)),
	}

	for _, v := range views {
		doc.Entries = append(doc.Entries, x.entry(v))
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", x.opts.XMLIndent)

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("%w: xml: %w", ErrEncoding, err)
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("%w: xml: %w", ErrEncoding, err)
	}

	buf.WriteByte('\n')

	return newDocument(XML, entities, buf.Bytes()), nil
}

func (x *XMLEncoder) entry(v view) xmlEntry {
	e := v.entity

	out := xmlEntry{
		ID:     e.ID,
		Kind:   e.Kind.String(),
		Title:  e.Title,
		Genres: &xmlGenres{Genre: v.genres},
	}

	switch e.ReleaseDate.State() {
	case models.Present, models.Unknown:
		s := e.ReleaseDate.String()
		out.ReleaseDate = &s
	}

	if r, ok := e.Rating.Get(); ok {
		s := formatRating(r)
		out.Rating = &s
	}

	if s, ok := e.Overview.Get(); ok {
		out.Overview = &s
	}

	if x.opts.IncludeCast {
		out.Cast = &xmlCast{Member: make([]xmlMember, 0, len(v.cast))}

		for _, m := range v.cast {
			member := xmlMember{Name: m.Name}
			if m.Role != "" {
				role := m.Role
				member.Role = &role
			}

			out.Cast.Member = append(out.Cast.Member, member)
		}
	}

	out.Extra = &xmlExtra{Field: make([]xmlField, 0, len(v.extraKeys))}

	for _, k := range v.extraKeys {
		s := e.Extra[k]
		out.Extra.Field = append(out.Extra.Field, xmlField{Name: k, Type: s.Kind().String(), Value: s.String()})
	}

	return out
}
