package ir

import (
	"errors"
	"fmt"

	cerrdefs "github.com/containerd/errdefs"
)

// QueryError represents a client-input error detected while compiling a clause.
//
// Query errors include:
//   - Syntax: a statement has no operator or splits into empty parts
//   - Unknown property: a name does not resolve in the property catalog
//   - Invalid value: a literal does not parse as the property's type
//   - Search target: a search names a non-string property
//   - Missing value: a search statement has an empty value
//   - Unsupported type: the property's declared type cannot be compared
//
// QueryError classifies as an invalid-argument error for containerd/errdefs,
// so transport layers can map it to a client error without knowing the codes.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// Message is a human-readable description.
	Message string

	// Statement is the offending statement text, when known.
	Statement string

	// Property is the property name involved, when known.
	Property string

	// Expected is the expected type name for ErrCodeInvalidValue.
	Expected string

	// Literal is the raw value that failed to parse.
	Literal string
}

// QueryErrorCode categorizes query errors.
type QueryErrorCode string

const (
	// ErrCodeInvalidClauseSyntax indicates a statement could not be split or recognized.
	ErrCodeInvalidClauseSyntax QueryErrorCode = "INVALID_CLAUSE_SYNTAX"

	// ErrCodeUnknownProperty indicates a property name is not in the catalog.
	ErrCodeUnknownProperty QueryErrorCode = "UNKNOWN_PROPERTY"

	// ErrCodeInvalidValue indicates a literal failed type coercion.
	ErrCodeInvalidValue QueryErrorCode = "INVALID_VALUE"

	// ErrCodeUnsupportedSearchTarget indicates a search on a non-string property.
	ErrCodeUnsupportedSearchTarget QueryErrorCode = "UNSUPPORTED_SEARCH_TARGET"

	// ErrCodeMissingValue indicates an empty value where one is required.
	ErrCodeMissingValue QueryErrorCode = "MISSING_VALUE"

	// ErrCodeUnsupportedPropertyType indicates a property whose declared type
	// is outside the supported kinds.
	ErrCodeUnsupportedPropertyType QueryErrorCode = "UNSUPPORTED_PROPERTY_TYPE"
)

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// InvalidParameter marks QueryError as an invalid-parameter error.
func (e *QueryError) InvalidParameter() {}

// Unwrap exposes the errdefs class so errors.Is(err, cerrdefs.ErrInvalidArgument) holds.
func (e *QueryError) Unwrap() error {
	return cerrdefs.ErrInvalidArgument
}

// WithProperty returns a copy of the error naming the given property.
func (e *QueryError) WithProperty(name string) *QueryError {
	c := *e
	c.Property = name
	if c.Code == ErrCodeUnsupportedPropertyType {
		c.Message = unsupportedMessage(name, c.Expected)
	}
	return &c
}

// NewSyntaxError creates a QueryError for a malformed statement.
func NewSyntaxError(statement, reason string) *QueryError {
	return &QueryError{
		Code:      ErrCodeInvalidClauseSyntax,
		Message:   fmt.Sprintf("bad clause '%s': %s", statement, reason),
		Statement: statement,
	}
}

// NewUnknownPropertyError creates a QueryError for an unresolvable name.
func NewUnknownPropertyError(name string) *QueryError {
	return &QueryError{
		Code:     ErrCodeUnknownProperty,
		Message:  fmt.Sprintf("the specified property '%s' is not a valid property name", name),
		Property: name,
	}
}

// NewInvalidValueError creates a QueryError for a literal that does not parse as kind.
func NewInvalidValueError(kind Kind, literal string) *QueryError {
	return &QueryError{
		Code:     ErrCodeInvalidValue,
		Message:  fmt.Sprintf("the value '%s' must be a valid %s", literal, kind),
		Expected: kind.String(),
		Literal:  literal,
	}
}

// NewSearchTargetError creates a QueryError for a search on a non-string property.
func NewSearchTargetError(name string, kind Kind) *QueryError {
	return &QueryError{
		Code:     ErrCodeUnsupportedSearchTarget,
		Message:  fmt.Sprintf("searches require a string property; '%s' is a %s", name, kind),
		Property: name,
		Expected: KindString.String(),
	}
}

// NewMissingValueError creates a QueryError for a statement with an empty value.
func NewMissingValueError(statement, name string) *QueryError {
	return &QueryError{
		Code:      ErrCodeMissingValue,
		Message:   fmt.Sprintf("missing value for property '%s' in '%s'", name, statement),
		Statement: statement,
		Property:  name,
	}
}

// NewUnsupportedPropertyTypeError creates a QueryError for a property whose
// declared type cannot be parsed or compared.
func NewUnsupportedPropertyTypeError(name string, kind Kind) *QueryError {
	return &QueryError{
		Code:     ErrCodeUnsupportedPropertyType,
		Message:  unsupportedMessage(name, kind.String()),
		Property: name,
		Expected: kind.String(),
	}
}

func unsupportedMessage(name, kind string) string {
	if name == "" {
		return fmt.Sprintf("properties of %s type cannot be queried", kind)
	}
	return fmt.Sprintf("the property '%s' has a type that cannot be queried", name)
}

// AsQueryError extracts a *QueryError from err.
// Uses errors.As to handle wrapped errors.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

func hasCode(err error, code QueryErrorCode) bool {
	qe, ok := AsQueryError(err)
	return ok && qe.Code == code
}

// IsInvalidClauseSyntax returns true if err is a syntax error.
func IsInvalidClauseSyntax(err error) bool { return hasCode(err, ErrCodeInvalidClauseSyntax) }

// IsUnknownProperty returns true if err is an unknown-property error.
func IsUnknownProperty(err error) bool { return hasCode(err, ErrCodeUnknownProperty) }

// IsInvalidValue returns true if err is a coercion error.
func IsInvalidValue(err error) bool { return hasCode(err, ErrCodeInvalidValue) }

// IsUnsupportedSearchTarget returns true if err is a non-string search error.
func IsUnsupportedSearchTarget(err error) bool { return hasCode(err, ErrCodeUnsupportedSearchTarget) }

// IsMissingValue returns true if err is a missing-value error.
func IsMissingValue(err error) bool { return hasCode(err, ErrCodeMissingValue) }

// IsUnsupportedPropertyType returns true if err is an unsupported-type error.
func IsUnsupportedPropertyType(err error) bool { return hasCode(err, ErrCodeUnsupportedPropertyType) }
