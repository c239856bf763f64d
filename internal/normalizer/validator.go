package normalizer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"moviefetch/internal/models"
)

// Validation errors.
var (
	ErrValidation   = errors.New("validation failed")
	ErrMissingField = errors.New("missing required field")
	ErrInvalidValue = errors.New("invalid field value")
	ErrDuplicateID  = errors.New("duplicate id in batch")
	ErrNotObject    = errors.New("record is not an object")
)

// ValidationError reports a record that could not be normalized. Field names
// the offending field using its output name (e.g. "id", "cast[0].name").
type ValidationError struct {
	Value any
	Err   error
	Field string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %v (got %v)", e.Field, e.Err, e.Value)
	}

	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap exposes both ErrValidation and the specific cause.
func (e *ValidationError) Unwrap() []error {
	return []error{ErrValidation, e.Err}
}

func missing(field string) *ValidationError {
	return &ValidationError{Field: field, Err: ErrMissingField}
}

func invalid(field string, value any, cause error) *ValidationError {
	err := ErrInvalidValue
	if cause != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidValue, cause)
	}

	return &ValidationError{Field: field, Value: value, Err: err}
}

// Validator handles data validation.
type Validator struct {
	structs *validator.Validate
}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	return &Validator{structs: v}
}

// Validate checks that a raw record carries every required field. Presence
// is checked here; value coercion is left to the Transformer. A nil record
// stands for a batch item that was not an object.
func (v *Validator) Validate(raw models.RawRecord) error {
	if raw == nil {
		return &ValidationError{Field: "record", Err: ErrNotObject}
	}

	return v.validateFields(canonicalize(raw))
}

func (v *Validator) validateFields(f fields) error {
	if _, _, ok := f.present(idKeys); !ok {
		return missing("id")
	}

	if _, _, ok := f.present(kindKeys); !ok {
		return missing("kind")
	}

	title, _, ok := f.present(titleKeys)
	if !ok {
		return missing("title")
	}

	if s, isString := title.(string); isString && strings.TrimSpace(s) == "" {
		return missing("title")
	}

	return nil
}

// ValidateEntity checks the struct-level invariants of a built entity.
func (v *Validator) ValidateEntity(e *models.Entity) error {
	if e == nil {
		return missing("id")
	}

	err := v.structs.Struct(e)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate entity %d: %w", e.ID, err)
	}

	fe := fieldErrs[0]

	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	if fe.Tag() == "required" {
		return missing(field)
	}

	return invalid(field, fe.Value(), fmt.Errorf("failed %q constraint", fe.Tag()))
}

// validCastMember reports whether a cast entry satisfies its struct tags.
func (v *Validator) validCastMember(m models.CastMember) bool {
	return v.structs.Struct(m) == nil
}
