package hostfuncs

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/portbridge/domain/errors"
)

// Error kinds reported to guests in ErrorResponse.Error.
const (
	KindValidation = "VALIDATION_ERROR"
	KindNotFound   = "NOT_FOUND"
	KindCancelled  = "CANCELLED"
	KindWrite      = "WRITE_FAILED"
	KindInternal   = "INTERNAL_ERROR"
)

// ErrorResponse is what the emit host function hands back to a guest when an
// emission is rejected. A guest decodes it instead of trapping.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`

	// Code mirrors the closest HTTP status, for guests that only branch on numbers.
	Code int `json:"code"`
}

// ToJSON serializes the response; the struct has no field that can fail to encode.
func (e ErrorResponse) ToJSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

// NewValidationError rejects a malformed emission (oversized payload, empty port name).
func NewValidationError(message string) ErrorResponse {
	return ErrorResponse{Error: KindValidation, Message: message, Code: 400}
}

// NewNotFoundError rejects an emission on an undeclared port.
func NewNotFoundError(port string) ErrorResponse {
	return ErrorResponse{Error: KindNotFound, Message: "unknown outbound port: " + port, Code: 404}
}

// NewInternalError reports a host-side failure unrelated to the payload.
func NewInternalError(message string) ErrorResponse {
	return ErrorResponse{Error: KindInternal, Message: message, Code: 500}
}

// NewPanicError reports a handler that panicked while taking an emission.
func NewPanicError(panicValue any) ErrorResponse {
	return NewInternalError(fmt.Sprintf("panic: %v", panicValue))
}

// FromError maps a dispatch error to the response a guest sees.
func FromError(err error) ErrorResponse {
	var (
		portErr  *errors.PortError
		writeErr *errors.WriteError
	)
	switch {
	case stdErrors.As(err, &portErr):
		return NewNotFoundError(portErr.Port)
	case stdErrors.As(err, &writeErr):
		return ErrorResponse{Error: KindWrite, Message: writeErr.Error(), Code: 500}
	case stdErrors.Is(err, context.Canceled), stdErrors.Is(err, context.DeadlineExceeded):
		return ErrorResponse{Error: KindCancelled, Message: err.Error(), Code: 499}
	default:
		return NewInternalError(err.Error())
	}
}
