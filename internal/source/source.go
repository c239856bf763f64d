// Package source loads raw catalog records for the export pipeline.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"moviefetch/internal/config"
	"moviefetch/internal/models"
)

// Source errors.
var (
	ErrUnsupportedExtension = errors.New("unsupported batch file extension")
	ErrInvalidBatch         = errors.New("invalid batch")
)

// Source yields raw records. The catalog API client implements it outside
// this repository; FileSource reads batch files.
type Source interface {
	Name() string
	Records(ctx context.Context) ([]models.RawRecord, error)
}

// FileSource reads one JSON or YAML batch file.
type FileSource struct {
	Label string
	Path  string
}

// NewFileSource creates a source for path. The label defaults to the file name.
func NewFileSource(label, path string) *FileSource {
	if label == "" {
		label = filepath.Base(path)
	}

	return &FileSource{Label: label, Path: path}
}

// Name returns the source label.
func (f *FileSource) Name() string { return f.Label }

// Records reads and decodes the file.
func (f *FileSource) Records(ctx context.Context) ([]models.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return LoadFile(f.Path)
}

// Multi concatenates sources in order.
type Multi []Source

// Name lists the member names.
func (m Multi) Name() string {
	names := make([]string, 0, len(m))
	for _, s := range m {
		names = append(names, s.Name())
	}

	return strings.Join(names, "+")
}

// Records returns the records of every member, stopping at the first error.
func (m Multi) Records(ctx context.Context) ([]models.RawRecord, error) {
	var all []models.RawRecord

	for _, s := range m {
		records, err := s.Records(ctx)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", s.Name(), err)
		}

		all = append(all, records...)
	}

	return all, nil
}

// FromConfig builds a Multi from the enabled sources in cfg.
func FromConfig(cfg *config.Config) Multi {
	enabled := cfg.GetEnabledSources()

	m := make(Multi, 0, len(enabled))
	for _, src := range enabled {
		m = append(m, NewFileSource(src.Name, src.File))
	}

	return m
}

// LoadFile reads a batch file, choosing the decoder by extension.
func LoadFile(path string) ([]models.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file %s: %w", path, err)
	}

	records, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return records, nil
}

// Decode parses a batch. ext is ".json", ".yaml" or ".yml". The document may
// be a list of records, a single record, or an object with a "results" list
// as returned by catalog search endpoints. A list item that is not an object
// is returned as a nil record.
func Decode(data []byte, ext string) ([]models.RawRecord, error) {
	var doc any

	switch strings.ToLower(ext) {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	return records(doc)
}

func records(doc any) ([]models.RawRecord, error) {
	switch d := doc.(type) {
	case nil:
		return []models.RawRecord{}, nil
	case []any:
		out := make([]models.RawRecord, 0, len(d))

		for _, item := range d {
			// Non-object items stay in place as nil records so the normalizer
			// reports them as failures at their own index.
			m, _ := item.(map[string]any)
			out = append(out, m)
		}

		return out, nil
	case map[string]any:
		if results, ok := d["results"].([]any); ok {
			return records(results)
		}

		return []models.RawRecord{d}, nil
	default:
		return nil, fmt.Errorf("%w: top-level %T", ErrInvalidBatch, doc)
	}
}
