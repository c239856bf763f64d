// Package validator checks exported documents for well-formedness by
// parsing them back with a standard reader for their format.
package validator

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"moviefetch/internal/encoder"
	"moviefetch/pkg/metadata"
)

// Validation errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrMalformed         = errors.New("malformed document")
)

// ValidationError is one problem found in a document. Line and Column are
// 1-based and zero when unknown.
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Line    int
	Column  int
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Format   encoder.Format
	Errors   []ValidationError
	Warnings []string
	Stats    ValidationStats
	IsValid  bool
}

// ValidationStats counts the records found in a document.
type ValidationStats struct {
	TotalRows   int
	ValidRows   int
	InvalidRows int
}

// DocumentValidator validates encoded documents. It is safe for concurrent
// use; every SQL check runs in its own in-memory database.
type DocumentValidator struct {
	opts encoder.Options
}

// NewDocumentValidator creates a validator for documents produced with opts.
func NewDocumentValidator(opts encoder.Options) *DocumentValidator {
	return &DocumentValidator{opts: opts}
}

func newResult(f encoder.Format) *ValidationResult {
	return &ValidationResult{
		Format:   f,
		IsValid:  true,
		Errors:   []ValidationError{},
		Warnings: []string{},
	}
}

func (r *ValidationResult) fail(e ValidationError) {
	r.IsValid = false
	r.Errors = append(r.Errors, e)
}

// Err returns nil for a valid document and an ErrMalformed error naming the
// first problem otherwise.
func (r *ValidationResult) Err() error {
	if r.IsValid {
		return nil
	}

	if len(r.Errors) == 0 {
		return ErrMalformed
	}

	e := r.Errors[0]
	if e.Line > 0 {
		return fmt.Errorf("%w: %s line %d: %s", ErrMalformed, r.Format, e.Line, e.Message)
	}

	return fmt.Errorf("%w: %s: %s", ErrMalformed, r.Format, e.Message)
}

// Validate parses content as format. A malformed document is reported in the
// result; the error is reserved for unsupported formats and checker failures.
func (v *DocumentValidator) Validate(ctx context.Context, format encoder.Format, content []byte) (*ValidationResult, error) {
	result := newResult(format)

	if !utf8.Valid(content) {
		result.fail(ValidationError{Message: "document is not valid UTF-8"})
		return result, nil
	}

	var err error

	switch format {
	case encoder.JSON:
		v.validateJSON(content, result)
	case encoder.CSV:
		v.validateCSV(content, result)
	case encoder.SQL:
		err = v.validateSQL(ctx, content, result)
	case encoder.TXT:
		v.validateTXT(content, result)
	case encoder.XML:
		v.validateXML(content, result)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	if err != nil {
		return nil, err
	}

	return result, nil
}

// ValidateIntegrity checks content against its recorded digest.
func (v *DocumentValidator) ValidateIntegrity(content []byte, meta *metadata.Metadata) *ValidationResult {
	result := newResult(encoder.Format(meta.Format))

	valid, err := metadata.Verify(content, meta.Hash)
	if !valid {
		result.fail(ValidationError{Message: fmt.Sprintf("integrity check failed: %v", err)})
	}

	if meta.Size > 0 && meta.Size != int64(len(content)) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("size mismatch: recorded %d bytes, found %d", meta.Size, len(content)))
	}

	return result
}

func (v *DocumentValidator) validateJSON(content []byte, result *ValidationResult) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		result.fail(ValidationError{Message: fmt.Sprintf("expected a JSON array of objects: %v", err)})
		return
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		result.fail(ValidationError{Message: "unexpected data after the top-level array"})
		return
	}

	for i, row := range rows {
		result.Stats.TotalRows++

		if missing := missingKeys(row, "id", "kind", "title"); len(missing) > 0 {
			result.Stats.InvalidRows++
			result.fail(ValidationError{
				Field:   strings.Join(missing, ","),
				Message: fmt.Sprintf("object %d lacks required keys %v", i, missing),
			})

			continue
		}

		result.Stats.ValidRows++
	}
}

func missingKeys(row map[string]any, keys ...string) []string {
	var missing []string

	for _, k := range keys {
		if row[k] == nil {
			missing = append(missing, k)
		}
	}

	return missing
}

// validateCSV checks the fixed header and the id and title of every row.
// encoding/csv reads \r\n inside a quoted field as \n, so the check cannot
// tell whether a field's CRLF survived encoding.
func (v *DocumentValidator) validateCSV(content []byte, result *ValidationResult) {
	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = v.opts.CSVDelimiter

	header, err := r.Read()
	if err != nil {
		result.fail(csvError(err, "read header"))
		return
	}

	if !slices.Equal(header, encoder.CSVHeader) {
		result.fail(ValidationError{
			Line:    1,
			Column:  1,
			Value:   strings.Join(header, string(v.opts.CSVDelimiter)),
			Message: "header does not match the fixed column set",
		})

		return
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			result.fail(csvError(err, "read row"))
			return
		}

		result.Stats.TotalRows++

		line, _ := r.FieldPos(0)
		if rowErr := validateCSVRecord(record, line); rowErr != nil {
			result.Stats.InvalidRows++
			result.fail(*rowErr)

			continue
		}

		result.Stats.ValidRows++
	}
}

func validateCSVRecord(record []string, line int) *ValidationError {
	if _, err := strconv.ParseInt(record[0], 10, 64); err != nil {
		return &ValidationError{Line: line, Column: 1, Field: "id", Value: record[0], Message: "id is not an integer"}
	}

	if record[2] == "" {
		return &ValidationError{Line: line, Column: 3, Field: "title", Message: "title is empty"}
	}

	for _, col := range []int{7, 8} {
		if !json.Valid([]byte(record[col])) {
			name := encoder.CSVHeader[col]
			return &ValidationError{Line: line, Column: col + 1, Field: name, Value: record[col], Message: name + " column is not valid JSON"}
		}
	}

	return nil
}

func csvError(err error, what string) ValidationError {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return ValidationError{Line: perr.Line, Column: perr.Column, Message: fmt.Sprintf("%s: %v", what, perr.Err)}
	}

	return ValidationError{Message: fmt.Sprintf("%s: %v", what, err)}
}

// validateSQL executes the document against an in-memory SQLite database
// holding the fixed schema.
func (v *DocumentValidator) validateSQL(ctx context.Context, content []byte, result *ValidationResult) error {
	statements := countStatements(string(content))
	if statements == 0 {
		return nil
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("open sqlite db: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, encoder.SQLSchema(v.opts.SQLTable, encoder.DialectANSI)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		result.fail(ValidationError{Message: fmt.Sprintf("execute statements: %v", err)})
		return nil
	}

	var rows int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+v.opts.SQLTable).Scan(&rows); err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	result.Stats.TotalRows = rows
	result.Stats.ValidRows = rows

	if inserts := strings.Count(string(content), "INSERT INTO "); inserts != rows {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("found %d INSERT statements but %d rows", inserts, rows))
	}

	return nil
}

// countStatements counts lines that are neither blank nor comments.
func countStatements(content string) int {
	n := 0

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}

		n++
	}

	return n
}

func (v *DocumentValidator) validateTXT(content []byte, result *ValidationResult) {
	for i, line := range strings.Split(string(content), "\n") {
		if !strings.HasPrefix(line, "ID: ") {
			continue
		}

		result.Stats.TotalRows++

		if _, err := strconv.ParseInt(strings.TrimPrefix(line, "ID: "), 10, 64); err != nil {
			result.Stats.InvalidRows++
			result.fail(ValidationError{Line: i + 1, Column: 5, Field: "id", Value: line, Message: "id is not an integer"})

			continue
		}

		result.Stats.ValidRows++
	}
}

func (v *DocumentValidator) validateXML(content []byte, result *ValidationResult) {
	dec := xml.NewDecoder(bytes.NewReader(content))

	var (
		depth    int
		sawRoot  bool
		declared = -1
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			var serr *xml.SyntaxError
			if errors.As(err, &serr) {
				result.fail(ValidationError{Line: serr.Line, Message: serr.Msg})
			} else {
				result.fail(ValidationError{Message: err.Error()})
			}

			return
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++

			switch depth {
			case 1:
				if sawRoot || t.Name.Local != encoder.XMLRoot {
					result.fail(ValidationError{Field: t.Name.Local, Message: fmt.Sprintf("root element must be <%s>", encoder.XMLRoot)})
					return
				}

				sawRoot = true
				declared = countAttr(t)
			case 2:
				v.validateXMLEntry(t, dec, result)
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}

	if !sawRoot {
		result.fail(ValidationError{Message: "document has no root element"})
		return
	}

	if declared >= 0 && declared != result.Stats.TotalRows {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("count attribute %d does not match %d entries", declared, result.Stats.TotalRows))
	}
}

func (v *DocumentValidator) validateXMLEntry(start xml.StartElement, dec *xml.Decoder, result *ValidationResult) {
	line, col := dec.InputPos()
	result.Stats.TotalRows++

	var id string

	for _, a := range start.Attr {
		if a.Name.Local == "id" {
			id = a.Value
		}
	}

	// Consume the entry so nested syntax errors surface here.
	if err := dec.Skip(); err != nil {
		result.Stats.InvalidRows++
		result.fail(ValidationError{Line: line, Column: col, Message: err.Error()})

		return
	}

	if start.Name.Local != encoder.XMLEntry {
		result.Stats.InvalidRows++
		result.fail(ValidationError{Line: line, Column: col, Field: start.Name.Local, Message: fmt.Sprintf("unexpected element, want <%s>", encoder.XMLEntry)})

		return
	}

	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		result.Stats.InvalidRows++
		result.fail(ValidationError{Line: line, Column: col, Field: "id", Value: id, Message: "entry id attribute is not an integer"})

		return
	}

	result.Stats.ValidRows++
}

func countAttr(t xml.StartElement) int {
	for _, a := range t.Attr {
		if a.Name.Local == "count" {
			if n, err := strconv.Atoi(a.Value); err == nil {
				return n
			}
		}
	}

	return -1
}

// String returns string representation of validation result.
func (r *ValidationResult) String() string {
	status := "✅ VALID"
	if !r.IsValid {
		status = "❌ INVALID"
	}

	return fmt.Sprintf(
		"%s | Format: %s | Total: %d | Valid: %d | Invalid: %d | Warnings: %d",
		status,
		r.Format,
		r.Stats.TotalRows,
		r.Stats.ValidRows,
		r.Stats.InvalidRows,
		len(r.Warnings),
	)
}

// PrintErrors prints validation errors in readable format.
func (r *ValidationResult) PrintErrors(w io.Writer) {
	if len(r.Errors) == 0 {
		return
	}

	fmt.Fprintln(w, "❌ Validation Errors:")

	for _, err := range r.Errors {
		if err.Line > 0 {
			fmt.Fprintf(w, "  Line %d, Col %d", err.Line, err.Column)

			if err.Field != "" {
				fmt.Fprintf(w, " [%s]", err.Field)
			}

			fmt.Fprintf(w, ": %s\n", err.Message)

			if err.Value != "" {
				fmt.Fprintf(w, "    Found: %q\n", err.Value)
			}
		} else {
			fmt.Fprintf(w, "  %s\n", err.Message)
		}
	}
}

// PrintWarnings prints validation warnings.
func (r *ValidationResult) PrintWarnings(w io.Writer) {
	if len(r.Warnings) == 0 {
		return
	}

	fmt.Fprintln(w, "⚠️  Validation Warnings:")

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
}
