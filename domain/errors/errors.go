// Package errors provides domain-specific error types for the bridge.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"os"

	"github.com/reglet-dev/portbridge/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// ErrUnitClosed is returned when a closed unit is asked to send or subscribe.
var ErrUnitClosed = stdErrors.New("unit is closed")

// ErrPayloadTooLarge is wrapped when a payload exceeds the configured
// max_payload_size in either direction.
var ErrPayloadTooLarge = stdErrors.New("payload exceeds maximum size")

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// MissingInputError reports an input file that could not be read. The
// corresponding inbound port never receives a message.
type MissingInputError struct {
	Err  error
	Port string
	Path string
}

func (e *MissingInputError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("input for %s unavailable at %s: %v", e.Port, e.Path, e.Err)
	}
	return fmt.Sprintf("input unavailable at %s: %v", e.Path, e.Err)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// NotFound reports whether the file simply does not exist.
func (e *MissingInputError) NotFound() bool {
	return stdErrors.Is(e.Err, os.ErrNotExist)
}

// ToErrorDetail implements DetailedError.
func (e *MissingInputError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "input", Code: e.Port, IsNotFound: e.NotFound()}
}

// WriteError reports a failed output write. It is fatal to a bridge run.
type WriteError struct {
	Err  error
	Port string
	Path string
}

func (e *WriteError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("failed to write %s output to %s: %v", e.Port, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WriteError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "output", Code: e.Port}
}

// PortError reports use of a port the unit does not declare.
type PortError struct {
	Port      string
	Direction entities.Direction
}

func (e *PortError) Error() string {
	if e.Direction != "" {
		return fmt.Sprintf("unknown %s port: %q", e.Direction, e.Port)
	}
	return fmt.Sprintf("unknown port: %q", e.Port)
}

// ToErrorDetail implements DetailedError.
func (e *PortError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "port", Code: e.Port, IsNotFound: true}
}

// UnitError represents a failure inside the Computation Unit or its runtime.
type UnitError struct {
	Err       error
	Operation string // e.g. "instantiate", "initialize", "deliver"
	Port      string
}

func (e *UnitError) Error() string {
	if e.Port != "" {
		return fmt.Sprintf("unit %s on %s failed: %v", e.Operation, e.Port, e.Err)
	}
	return fmt.Sprintf("unit %s failed: %v", e.Operation, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *UnitError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "unit", Code: e.Operation}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}
