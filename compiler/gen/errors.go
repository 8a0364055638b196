package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched by the typed errors of this package.
var (
	// ErrInvalidMetadata is matched by errors of malformed metadata records.
	ErrInvalidMetadata = errors.New("xrmgen: invalid metadata")
	// ErrInvalidConfig is matched by errors of invalid options.
	ErrInvalidConfig = errors.New("xrmgen: invalid configuration")
	// ErrInvalidContext is matched by every violation reported by
	// Context.Validate.
	ErrInvalidContext = errors.New("xrmgen: invalid context")
	// ErrInvalidRelationship is matched by relationships that do not point
	// into their Context.
	ErrInvalidRelationship = errors.New("xrmgen: invalid relationship")
	// ErrGenerationFailed is matched by renderer errors.
	ErrGenerationFailed = errors.New("xrmgen: code generation failed")
)

// describe formats "xrmgen: <kind> <subject>: <message>: <cause>", leaving
// out the empty parts.
func describe(kind, subject, message string, cause error) string {
	var b strings.Builder
	b.WriteString("xrmgen: ")
	b.WriteString(kind)
	if subject != "" {
		b.WriteString(" ")
		b.WriteString(subject)
	}
	if message != "" {
		b.WriteString(": ")
		b.WriteString(message)
	}
	if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

// SchemaError reports a raw metadata record that cannot be mapped.
type SchemaError struct {
	Entity    string
	Attribute string
	Message   string
}

func (e *SchemaError) Error() string {
	subject := e.Entity
	if e.Attribute != "" {
		subject += "." + e.Attribute
	}
	return describe("invalid metadata", subject, e.Message, nil)
}

// Is matches ErrInvalidMetadata.
func (e *SchemaError) Is(target error) bool { return target == ErrInvalidMetadata }

// NewSchemaError returns a SchemaError for the entity, and the attribute
// when set.
func NewSchemaError(entity, attribute, message string) *SchemaError {
	return &SchemaError{Entity: entity, Attribute: attribute, Message: message}
}

// ConfigError reports an option that was given an invalid value.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Value != nil {
		msg = fmt.Sprintf("%s (got %v)", msg, e.Value)
	}
	return describe("invalid option", e.Option, msg, nil)
}

// Is matches ErrInvalidConfig.
func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// NewConfigError returns a ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// RelationshipError reports a relationship of an entity whose target is not
// resolved into the same Context.
type RelationshipError struct {
	Entity       string
	Target       string
	Relationship string
	Message      string
}

func (e *RelationshipError) Error() string {
	return describe("relationship", fmt.Sprintf("%s (%s -> %s)", e.Relationship, e.Entity, e.Target), e.Message, nil)
}

// Is matches ErrInvalidRelationship and ErrInvalidContext.
func (e *RelationshipError) Is(target error) bool {
	return target == ErrInvalidRelationship || target == ErrInvalidContext
}

// ValidationError reports any other invariant violation of a Context, such
// as duplicate logical names.
type ValidationError struct {
	Entity  string
	Message string
}

func (e *ValidationError) Error() string {
	return describe("invalid context", e.Entity, e.Message, nil)
}

// Is matches ErrInvalidContext.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidContext }

// GenerationError reports a renderer failure while producing a file.
type GenerationError struct {
	Phase   string // template, format, validate or write
	File    string
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	subject := e.Phase
	if e.File != "" {
		subject += " " + e.File
	}
	return describe("generate", subject, e.Message, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// Is matches ErrGenerationFailed.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// NewGenerationError returns a GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{Phase: phase, File: file, Message: message, Cause: cause}
}

// IsSchemaError reports whether err is or wraps a SchemaError.
func IsSchemaError(err error) bool { return errors.Is(err, ErrInvalidMetadata) }

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool { return errors.Is(err, ErrInvalidConfig) }

// IsValidationError reports whether err holds a violation found by
// Context.Validate.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidContext) }

// IsGenerationError reports whether err is or wraps a GenerationError.
func IsGenerationError(err error) bool { return errors.Is(err, ErrGenerationFailed) }
