// Package normalizer converts raw catalog records into models.Entity values.
package normalizer

import (
	"errors"
	"fmt"
	"sync"

	"moviefetch/internal/logger"
	"moviefetch/internal/models"
)

// DefaultWorkers bounds batch normalization concurrency.
const DefaultWorkers = 4

// RecordFailure is a record that did not make it into the output.
type RecordFailure struct {
	Err   error
	Index int
	ID    int64
}

func (f RecordFailure) Error() string {
	if f.ID != 0 {
		return fmt.Sprintf("record %d (id %d): %v", f.Index, f.ID, f.Err)
	}

	return fmt.Sprintf("record %d: %v", f.Index, f.Err)
}

func (f RecordFailure) Unwrap() error {
	return f.Err
}

// RecordWarning is a Warning tied to its record position in the batch.
type RecordWarning struct {
	Warning
	Index int
}

func (w RecordWarning) String() string {
	return fmt.Sprintf("record %d: %s", w.Index, w.Warning)
}

// BatchResult holds the outcome of NormalizeBatch. Entities keep input order
// and Indices[i] is the input position of Entities[i]. Episodes expanded from a
// series follow it and share its index.
type BatchResult struct {
	Entities []*models.Entity
	Indices  []int
	Failures []RecordFailure
	Warnings []RecordWarning
}

// Processor handles data processing and transformation.
type Processor struct {
	validator   *Validator
	transformer *Transformer
	logger      *logger.Logger
	workers     int
	episodes    bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers sets the batch concurrency. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n >= 1 {
			p.workers = n
		}
	}
}

// WithLogger sets the logger used for warnings.
func WithLogger(log *logger.Logger) Option {
	return func(p *Processor) {
		if log != nil {
			p.logger = log
		}
	}
}

// WithEpisodes controls whether episodes nested in a series record are
// expanded into their own entities.
func WithEpisodes(include bool) Option {
	return func(p *Processor) {
		p.episodes = include
	}
}

// NewProcessor creates a new processor instance.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
		logger:      logger.Nop(),
		workers:     DefaultWorkers,
		episodes:    true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Normalize converts one raw record. Failures are returned as *ValidationError.
func (p *Processor) Normalize(raw models.RawRecord) (*models.Entity, error) {
	e, warnings, err := p.normalize(raw)
	for _, w := range warnings {
		p.logger.Warn("normalization warning", "field", w.Field, "detail", w.Message)
	}

	return e, err
}

func (p *Processor) normalize(raw models.RawRecord) (*models.Entity, []Warning, error) {
	// 1. Validate the input data
	if err := p.validator.Validate(raw); err != nil {
		return nil, nil, err
	}

	// 2. Transform the data
	e, warnings, err := p.transformer.Transform(raw)
	if err != nil {
		return nil, nil, err
	}

	// 3. Check entity invariants
	if err := p.validator.ValidateEntity(e); err != nil {
		return nil, warnings, err
	}

	return e, warnings, nil
}

type outcome struct {
	entity   *models.Entity
	err      error
	warnings []Warning
	episodes []outcome
	id       int64
}

// NormalizeBatch normalizes every record, collecting failures instead of
// stopping at the first one. Records are processed concurrently but the
// result preserves input order.
func (p *Processor) NormalizeBatch(raws []models.RawRecord) *BatchResult {
	outcomes := make([]outcome, len(raws))

	var (
		wg  sync.WaitGroup
		sem = make(chan struct{}, p.workers)
	)

	for i, raw := range raws {
		wg.Add(1)

		go func(index int, rec models.RawRecord) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			outcomes[index] = p.process(rec)
		}(i, raw)
	}

	wg.Wait()

	result := &BatchResult{
		Entities: make([]*models.Entity, 0, len(raws)),
		Indices:  make([]int, 0, len(raws)),
	}

	seen := make(map[int64]int, len(raws))

	for i, o := range outcomes {
		if !p.collect(result, seen, i, "", o) {
			continue
		}

		for j, ep := range o.episodes {
			p.collect(result, seen, i, fmt.Sprintf("episodes[%d].", j), ep)
		}
	}

	return result
}

func (p *Processor) process(rec models.RawRecord) outcome {
	e, warnings, err := p.normalize(rec)
	o := outcome{entity: e, err: err, warnings: warnings, id: rawID(rec)}

	if err != nil || !p.episodes {
		return o
	}

	for _, ep := range p.transformer.Episodes(rec, e) {
		ee, ew, eerr := p.normalize(ep)
		o.episodes = append(o.episodes, outcome{entity: ee, err: eerr, warnings: ew, id: rawID(ep)})
	}

	return o
}

// collect adds o to result under input index i. Fields of nested records
// carry prefix. It reports whether the entity was kept.
func (p *Processor) collect(result *BatchResult, seen map[int64]int, i int, prefix string, o outcome) bool {
	for _, w := range o.warnings {
		w.Field = prefix + w.Field
		result.Warnings = append(result.Warnings, RecordWarning{Warning: w, Index: i})
		p.logger.Warn("normalization warning", "record", i, "field", w.Field, "detail", w.Message)
	}

	if o.err != nil {
		err := nestedError(prefix, o.err)
		result.Failures = append(result.Failures, RecordFailure{Err: err, Index: i, ID: o.id})
		p.logger.Debug("record rejected", "record", i, "error", err)

		return false
	}

	if first, dup := seen[o.entity.ID]; dup {
		err := &ValidationError{Field: prefix + "id", Value: o.entity.ID, Err: fmt.Errorf("%w: first seen at record %d", ErrDuplicateID, first)}
		result.Failures = append(result.Failures, RecordFailure{Err: err, Index: i, ID: o.entity.ID})

		return false
	}

	seen[o.entity.ID] = i
	result.Entities = append(result.Entities, o.entity)
	result.Indices = append(result.Indices, i)

	return true
}

func nestedError(prefix string, err error) error {
	if prefix == "" {
		return err
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		cp := *verr
		cp.Field = prefix + verr.Field

		return &cp
	}

	return &ValidationError{Field: prefix[:len(prefix)-1], Err: err}
}

// rawID extracts a best-effort id for failure reports.
func rawID(raw models.RawRecord) int64 {
	v, _, ok := canonicalize(raw).present(idKeys)
	if !ok {
		return 0
	}

	id, err := toInt(v)
	if err != nil || id < 0 {
		return 0
	}

	return id
}
