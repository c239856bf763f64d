// Package encoder serializes normalized entities into the supported export
// formats. Encoders are pure: they never modify their input and the same
// entities always produce the same bytes.
package encoder

import (
	"errors"
	"fmt"
	"strings"

	"moviefetch/internal/models"
)

// Format identifies an output format.
type Format string

// Supported formats.
const (
	JSON Format = "json"
	CSV  Format = "csv"
	SQL  Format = "sql"
	TXT  Format = "txt"
	XML  Format = "xml"
)

// Formats lists every supported format in display order.
var Formats = []Format{JSON, CSV, SQL, TXT, XML}

var mimeTypes = map[Format]string{
	JSON: "application/json",
	CSV:  "text/csv",
	SQL:  "application/sql",
	TXT:  "text/plain",
	XML:  "application/xml",
}

// Encoder errors.
var (
	ErrEncoding      = errors.New("encoding failed")
	ErrUnknownFormat = errors.New("unknown format")
)

// ParseFormat resolves a case-insensitive format identifier.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := mimeTypes[f]; !ok {
		return "", false
	}

	return f, true
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

// MIMEType returns the content type of documents in this format.
func (f Format) MIMEType() string {
	return mimeTypes[f]
}

func (f Format) String() string {
	return string(f)
}

// Document is an encoded export ready to be written or served.
type Document struct {
	Content  []byte
	Filename string
	MIMEType string
}

// Encoder converts an ordered entity sequence into one Document.
type Encoder interface {
	Format() Format
	Encode(entities []*models.Entity) (*Document, error)
}

// EncodingError reports a value that cannot be represented in the target
// format. The encoder produces no document when it returns one.
type EncodingError struct {
	Format   Format
	Field    string
	Reason   string
	EntityID int64
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s: entity %d field %s: %s", e.Format, e.EntityID, e.Field, e.Reason)
}

func (e *EncodingError) Unwrap() error {
	return ErrEncoding
}

// New returns the encoder for format configured with opts.
func New(format Format, opts Options) (Encoder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	switch format {
	case JSON:
		return &JSONEncoder{opts: opts}, nil
	case CSV:
		return &CSVEncoder{opts: opts}, nil
	case SQL:
		return &SQLEncoder{opts: opts}, nil
	case TXT:
		return &TXTEncoder{opts: opts}, nil
	case XML:
		return &XMLEncoder{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Stem returns the filename stem for entities: their shared kind, or
// "batch" when kinds are mixed or the sequence is empty.
func Stem(entities []*models.Entity) string {
	var kind models.Kind

	for _, e := range entities {
		if e == nil {
			continue
		}

		if kind == "" {
			kind = e.Kind
			continue
		}

		if e.Kind != kind {
			return "batch"
		}
	}

	if kind == "" {
		return "batch"
	}

	return kind.String()
}

func newDocument(f Format, entities []*models.Entity, content []byte) *Document {
	return &Document{
		Content:  content,
		Filename: Stem(entities) + "." + f.Extension(),
		MIMEType: f.MIMEType(),
	}
}
