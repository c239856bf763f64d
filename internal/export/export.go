// Package export runs the normalize and encode pipeline for one batch and
// reports partial success.
package export

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"moviefetch/internal/config"
	"moviefetch/internal/encoder"
	"moviefetch/internal/logger"
	"moviefetch/internal/models"
	"moviefetch/internal/normalizer"
	"moviefetch/internal/validator"
	"moviefetch/pkg/metadata"
	"moviefetch/pkg/utils"
)

// TimestampLayout formats the timestamp part of export file names.
const TimestampLayout = "20060102_150405"

// Export errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyResult       = errors.New("empty result")
	ErrVerification      = errors.New("document failed verification")
)

// UnsupportedFormatError is returned for a format outside encoder.Formats.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	names := make([]string, 0, len(encoder.Formats))
	for _, f := range encoder.Formats {
		names = append(names, f.String())
	}

	return fmt.Sprintf("unsupported format %q (want one of %s)", e.Format, strings.Join(names, ", "))
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// EmptyResultError is returned when no entity is left to encode. Failures is
// empty when nothing was requested and holds every record otherwise.
type EmptyResultError struct {
	Failures []normalizer.RecordFailure
}

func (e *EmptyResultError) Error() string {
	if len(e.Failures) == 0 {
		return "no records to export"
	}

	return fmt.Sprintf("all %d records failed: first: %v", len(e.Failures), e.Failures[0])
}

func (e *EmptyResultError) Unwrap() error {
	return ErrEmptyResult
}

// Result is the outcome of a successful export. Failures lists the records
// left out of Document, in input order.
type Result struct {
	Document   *encoder.Document
	Validation *validator.ValidationResult
	RequestID  string
	Digest     string
	Failures   []normalizer.RecordFailure
	Warnings   []normalizer.RecordWarning
	Entities   int
}

// Exporter runs exports. It holds no per-call state and is safe for
// concurrent use.
type Exporter struct {
	processor *normalizer.Processor
	checker   *validator.DocumentValidator
	logger    *logger.Logger
	clock     func() time.Time
	opts      encoder.Options
	verify    bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithProcessor sets the normalizer.
func WithProcessor(p *normalizer.Processor) Option {
	return func(x *Exporter) {
		if p != nil {
			x.processor = p
		}
	}
}

// WithEncoderOptions sets the options passed to every encoder.
func WithEncoderOptions(opts encoder.Options) Option {
	return func(x *Exporter) {
		x.opts = opts
	}
}

// WithClock sets the time source used for file names.
func WithClock(clock func() time.Time) Option {
	return func(x *Exporter) {
		if clock != nil {
			x.clock = clock
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(x *Exporter) {
		if log != nil {
			x.logger = log
		}
	}
}

// WithVerify re-parses every document before it is returned.
func WithVerify(verify bool) Option {
	return func(x *Exporter) {
		x.verify = verify
	}
}

// New creates an Exporter. It fails when the encoder options are invalid.
func New(opts ...Option) (*Exporter, error) {
	x := &Exporter{
		processor: normalizer.NewProcessor(),
		logger:    logger.Nop(),
		clock:     time.Now,
		opts:      encoder.DefaultOptions(),
	}

	for _, opt := range opts {
		opt(x)
	}

	if err := x.opts.Validate(); err != nil {
		return nil, fmt.Errorf("encoder options: %w", err)
	}

	x.checker = validator.NewDocumentValidator(x.opts)

	return x, nil
}

// FromConfig creates an Exporter configured by cfg.
func FromConfig(cfg *config.Config, log *logger.Logger, opts ...Option) (*Exporter, error) {
	base := []Option{
		WithProcessor(normalizer.NewProcessor(
			normalizer.WithWorkers(cfg.Normalizer.Workers),
			normalizer.WithEpisodes(cfg.Export.IncludeEpisodes),
			normalizer.WithLogger(log),
		)),
		WithEncoderOptions(cfg.EncoderOptions()),
		WithVerify(cfg.Export.VerifyOutput),
		WithLogger(log),
	}

	return New(append(base, opts...)...)
}

// Export normalizes raws and encodes the surviving entities as format.
// Per-record problems are returned in the Result; the error is reserved for
// call-level failures.
func (x *Exporter) Export(ctx context.Context, raws []models.RawRecord, format string) (*Result, error) {
	f, ok := encoder.ParseFormat(format)
	if !ok {
		return nil, &UnsupportedFormatError{Format: format}
	}

	if len(raws) == 0 {
		return nil, &EmptyResultError{}
	}

	requestID := uuid.NewString()
	log := x.logger.With("request_id", requestID, "format", f.String())

	batch := x.processor.NormalizeBatch(raws)
	log.Debug("normalized batch", "records", len(raws), "entities", len(batch.Entities), "failures", len(batch.Failures))

	if len(batch.Entities) == 0 {
		return nil, &EmptyResultError{Failures: batch.Failures}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	enc, err := encoder.New(f, x.opts)
	if err != nil {
		return nil, fmt.Errorf("create %s encoder: %w", f, err)
	}

	doc, entities, failures, err := x.encode(enc, batch, log)
	if err != nil {
		return nil, err
	}

	doc.Filename = Filename(entities, f, x.clock())

	result := &Result{
		Document:  doc,
		RequestID: requestID,
		Digest:    metadata.Digest(doc.Content),
		Failures:  failures,
		Warnings:  batch.Warnings,
		Entities:  len(entities),
	}

	if x.verify {
		check, err := x.checker.Validate(ctx, f, doc.Content)
		if err != nil {
			return nil, fmt.Errorf("verify %s document: %w", f, err)
		}

		if !check.IsValid {
			return nil, fmt.Errorf("%w: %w", ErrVerification, check.Err())
		}

		result.Validation = check
	}

	log.Info("export complete",
		"file", doc.Filename,
		"entities", result.Entities,
		"failures", len(result.Failures),
		"warnings", len(result.Warnings),
		"bytes", len(doc.Content),
	)

	return result, nil
}

// encode retries without each entity the encoder rejects, recording it as a
// failure, until the remaining entities encode or none are left.
func (x *Exporter) encode(enc encoder.Encoder, batch *normalizer.BatchResult, log *logger.Logger) (*encoder.Document, []*models.Entity, []normalizer.RecordFailure, error) {
	entities := slices.Clone(batch.Entities)
	indices := slices.Clone(batch.Indices)
	failures := slices.Clone(batch.Failures)

	for {
		doc, err := enc.Encode(entities)
		if err == nil {
			slices.SortFunc(failures, func(a, b normalizer.RecordFailure) int { return a.Index - b.Index })

			return doc, entities, failures, nil
		}

		var encErr *encoder.EncodingError

		pos := -1
		if errors.As(err, &encErr) {
			pos = slices.IndexFunc(entities, func(e *models.Entity) bool { return e.ID == encErr.EntityID })
		}

		if pos < 0 {
			return nil, nil, nil, fmt.Errorf("encode %s: %w", enc.Format(), err)
		}

		log.Warn("record dropped", "record", indices[pos], "id", encErr.EntityID, "field", encErr.Field, "reason", encErr.Reason)

		failures = append(failures, normalizer.RecordFailure{Err: encErr, Index: indices[pos], ID: encErr.EntityID})
		entities = slices.Delete(entities, pos, pos+1)
		indices = slices.Delete(indices, pos, pos+1)

		if len(entities) == 0 {
			slices.SortFunc(failures, func(a, b normalizer.RecordFailure) int { return a.Index - b.Index })

			return nil, nil, nil, &EmptyResultError{Failures: failures}
		}
	}
}

// Filename returns "{kind-or-batch}_{timestamp}.{ext}" for entities.
func Filename(entities []*models.Entity, f encoder.Format, at time.Time) string {
	name := fmt.Sprintf("%s_%s.%s", encoder.Stem(entities), at.UTC().Format(TimestampLayout), f.Extension())

	return utils.SanitizeFilename(name)
}
