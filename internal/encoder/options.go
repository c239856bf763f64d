package encoder

import (
	"errors"
	"fmt"
	"regexp"
)

// Dialect selects the SQL string quoting rules.
type Dialect string

// SQL dialects. ANSI doubles single quotes and leaves backslashes literal;
// MySQL additionally escapes backslashes.
const (
	DialectANSI  Dialect = "ansi"
	DialectMySQL Dialect = "mysql"
)

// Option validation errors.
var (
	ErrInvalidDelimiter = errors.New("invalid csv delimiter")
	ErrInvalidDialect   = errors.New("invalid sql dialect")
	ErrInvalidTable     = errors.New("invalid sql table name")
	ErrInvalidWidth     = errors.New("width must not be negative")
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options carries per-call encoder settings. The zero value is not usable;
// start from DefaultOptions.
type Options struct {
	SQLTable   string
	SQLDialect Dialect
	XMLIndent  string

	CSVDelimiter rune

	// TXTWrapWidth and TXTMaxOverview are measured in display cells. Zero
	// disables wrapping or truncation.
	TXTWrapWidth   int
	TXTMaxOverview int

	// MaxCast limits the number of cast members written. Zero means no limit.
	MaxCast int

	SQLIncludeSchema bool
	IncludeCast      bool
	IncludeImages    bool
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SQLTable:      SQLTable,
		SQLDialect:    DialectANSI,
		XMLIndent:     "  ",
		CSVDelimiter:  ',',
		IncludeCast:   true,
		IncludeImages: true,
	}
}

// Validate checks options for values no encoder can honour.
func (o Options) Validate() error {
	switch o.CSVDelimiter {
	case 0, '"', '\r', '\n', 0xFFFD:
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, o.CSVDelimiter)
	}

	if o.SQLDialect != DialectANSI && o.SQLDialect != DialectMySQL {
		return fmt.Errorf("%w: %q", ErrInvalidDialect, o.SQLDialect)
	}

	if !identifierRegex.MatchString(o.SQLTable) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, o.SQLTable)
	}

	if o.TXTWrapWidth < 0 || o.TXTMaxOverview < 0 || o.MaxCast < 0 {
		return ErrInvalidWidth
	}

	return nil
}
