package dto

import (
	"net/http"

	"github.com/labelprint/backend/internal/domain/labeling"
)

// Transport error codes. Domain rejections keep the codes defined by the
// labeling domain so clients see one flat code namespace.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = labeling.CodeInternalError
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
	// ErrCodeInvalidJSON is used when the body cannot be decoded
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeValidation is used when binding tags reject the request
	ErrCodeValidation = "VALIDATION_ERROR"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	// ErrCodeInvalidInput is used for generic bad input
	ErrCodeInvalidInput = "INVALID_INPUT"
	// ErrCodeDuplicateRequest is used when an Idempotency-Key was already seen
	ErrCodeDuplicateRequest = "DUPLICATE_REQUEST"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// Weight and request validation -> 400 Bad Request
	labeling.CodeWeightRequired:       http.StatusBadRequest,
	labeling.CodeTotalWeightRequired:  http.StatusBadRequest,
	labeling.CodePalletWeightRequired: http.StatusBadRequest,
	labeling.CodeInvalidWeight:        http.StatusBadRequest,
	labeling.CodeInvalidWeightFormat:  http.StatusBadRequest,
	labeling.CodeInvalidTotal:         http.StatusBadRequest,
	labeling.CodeInvalidPallet:        http.StatusBadRequest,
	labeling.CodeInvalidExtra:         http.StatusBadRequest,
	labeling.CodeInvalidCopies:        http.StatusBadRequest,
	labeling.CodeInvalidShift:         http.StatusBadRequest,
	labeling.CodeInvalidLabelSize:     http.StatusBadRequest,
	labeling.CodeNoLabels:             http.StatusBadRequest,
	ErrCodeInvalidJSON:                http.StatusBadRequest,
	ErrCodeValidation:                 http.StatusBadRequest,
	ErrCodeInvalidInput:               http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,
	ErrCodeDuplicateRequest: http.StatusConflict,

	// Dispatch and unexpected failures -> 500
	labeling.CodePrintFailed: http.StatusInternalServerError,
	ErrCodeInternal:          http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
