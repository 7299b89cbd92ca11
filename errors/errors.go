/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when a table or row is not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when an idempotent write finds its key already present
	ErrAlreadyExists = errors.New("key already exists")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrConditionFailed is returned when a conditional update fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrCoercion is returned when a raw value cannot be converted to its declared type
	ErrCoercion = errors.New("coercion failed")

	// ErrSchemaViolation is returned when an item does not satisfy the table schema
	ErrSchemaViolation = errors.New("schema violation")

	// ErrBackingStore is returned for network, throughput and resource failures
	ErrBackingStore = errors.New("backing store failure")

	// ErrConfiguration is returned for missing or invalid configuration
	ErrConfiguration = errors.New("invalid configuration")

	// ErrBatchFailed is returned when every item of a non-empty batch failed
	ErrBatchFailed = errors.New("batch failed")
)

// NotFoundError represents an error when a table or row is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConditionalWriteSkippedError reports an idempotent write that found its key
// already present. It is informational: the write is a successful no-op.
type ConditionalWriteSkippedError struct {
	Table string
	Key   string
}

func (e *ConditionalWriteSkippedError) Error() string {
	return fmt.Sprintf("item with key %s already exists in table %q, skipped", e.Key, e.Table)
}

func (e *ConditionalWriteSkippedError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// CoercionError represents a single attribute whose raw value could not be
// converted to the declared attribute type.
type CoercionError struct {
	Attribute string
	Value     any
	Type      string
	Reason    string
}

func (e *CoercionError) Error() string {
	if e.Attribute != "" {
		return fmt.Sprintf("cannot coerce attribute %q value %v to %s: %s", e.Attribute, e.Value, e.Type, e.Reason)
	}
	return fmt.Sprintf("cannot coerce value %v to %s: %s", e.Value, e.Type, e.Reason)
}

func (e *CoercionError) Is(target error) bool {
	return target == ErrCoercion
}

// SchemaViolationError represents an item rejected before reaching the backing store.
type SchemaViolationError struct {
	Table  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation on table %q: %s", e.Table, e.Reason)
}

func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}

// BackingStoreError wraps a failure returned by the backing store client.
type BackingStoreError struct {
	Operation string
	Table     string
	Code      string
	Retryable bool
	Cause     error
}

func (e *BackingStoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s on table %q failed (%s): %v", e.Operation, e.Table, e.Code, e.Cause)
	}
	return fmt.Sprintf("%s on table %q failed: %v", e.Operation, e.Table, e.Cause)
}

func (e *BackingStoreError) Is(target error) bool {
	return target == ErrBackingStore
}

func (e *BackingStoreError) Unwrap() error {
	return e.Cause
}

// ConfigurationError represents missing or invalid schema or environment configuration.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Setting != "" {
		return fmt.Sprintf("configuration %q: %s", e.Setting, e.Message)
	}
	return fmt.Sprintf("configuration: %s", e.Message)
}

func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// BatchError is returned when every item of a batch write failed.
type BatchError struct {
	Table  string
	Total  int
	Failed int
	Last   error
}

func (e *BatchError) Error() string {
	if e.Last != nil {
		return fmt.Sprintf("all %d items failed to write to table %q, last error: %v", e.Total, e.Table, e.Last)
	}
	return fmt.Sprintf("all %d items failed to write to table %q", e.Total, e.Table)
}

func (e *BatchError) Is(target error) bool {
	return target == ErrBatchFailed
}

func (e *BatchError) Unwrap() error {
	return e.Last
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewConditionalWriteSkipped creates a new ConditionalWriteSkippedError
func NewConditionalWriteSkipped(table, key string) error {
	return &ConditionalWriteSkippedError{Table: table, Key: key}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewCoercionError creates a new CoercionError without an attribute name
func NewCoercionError(value any, typeName, reason string) error {
	return &CoercionError{Value: value, Type: typeName, Reason: reason}
}

// NewSchemaViolation creates a new SchemaViolationError
func NewSchemaViolation(table, reason string) error {
	return &SchemaViolationError{Table: table, Reason: reason}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(setting, message string) error {
	return &ConfigurationError{Setting: setting, Message: message}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error reports an existing key
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsCoercion checks if an error is a coercion error
func IsCoercion(err error) bool {
	return errors.Is(err, ErrCoercion)
}

// IsSchemaViolation checks if an error is a schema violation
func IsSchemaViolation(err error) bool {
	return errors.Is(err, ErrSchemaViolation)
}

// IsBackingStore checks if an error came from the backing store
func IsBackingStore(err error) bool {
	return errors.Is(err, ErrBackingStore)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsBatchFailed checks if an error reports a fully failed batch
func IsBatchFailed(err error) bool {
	return errors.Is(err, ErrBatchFailed)
}
