package service

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ── shared business errors ──

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access restricted")
	ErrValidation      = errors.New("validation failed")
)

// ValidationError names the request fields that are missing or malformed.
type ValidationError struct {
	Fields []string
}

func newValidationError(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	return "missing or invalid fields: " + strings.Join(e.Fields, ", ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field rules shared with the request binding tags. varchar bounds match the
// column widths in the schema.
const (
	ruleName       = "required,max=100"
	ruleEmail      = "required,email,max=255"
	ruleCaseWorker = "required,max=100"
	ruleSignature  = "required,max=200"
	ruleTitle      = "required,max=200"
	ruleLongText   = "required,max=2000"
	ruleOptText    = "omitempty,max=2000"
	ruleContent    = "required,max=10000"

	maxTitleLength = 200
)

var validate = validator.New()

// canonicalID normalizes a client-supplied row id. ok is false when id is
// not a UUID and so cannot name any stored row.
func canonicalID(id string) (string, bool) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// fieldChecker collects field-level problems in declaration order.
type fieldChecker struct {
	fields []string
	seen   map[string]bool
}

func (fc *fieldChecker) add(field string) {
	if fc.seen == nil {
		fc.seen = make(map[string]bool)
	}
	if fc.seen[field] {
		return
	}
	fc.seen[field] = true
	fc.fields = append(fc.fields, field)
}

// check records field when the trimmed value breaks rule.
func (fc *fieldChecker) check(field, value, rule string) {
	if validate.Var(strings.TrimSpace(value), rule) != nil {
		fc.add(field)
	}
}

// required records field when value is blank.
func (fc *fieldChecker) required(field, value string) {
	fc.check(field, value, "required")
}

func (fc *fieldChecker) err() error {
	if len(fc.fields) == 0 {
		return nil
	}
	return newValidationError(fc.fields...)
}
