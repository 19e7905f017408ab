package entities

import "fmt"

// ErrorDetail is the serializable form of a bridge error, as recorded in a
// Report. Type is one of "input", "output", "port", "unit", "config" or
// "internal".
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`

	// Code names the port or field the error is about, when there is one.
	Code string `json:"code,omitempty"`

	// IsNotFound is set when the underlying cause was a missing file or port.
	IsNotFound bool `json:"is_not_found,omitempty"`
}

// Error implements the error interface.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	return msg
}

// NewErrorDetail creates a new ErrorDetail with the given type and message.
func NewErrorDetail(errorType, message string) *ErrorDetail {
	return &ErrorDetail{
		Type:    errorType,
		Message: message,
	}
}
