package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Upload error codes
const (
	// ErrCodeUnsupportedPlatform is used when the platform tag is unknown
	ErrCodeUnsupportedPlatform = "ERR_UNSUPPORTED_PLATFORM"
	// ErrCodeSchemaMismatch is used when required columns are missing
	ErrCodeSchemaMismatch = "ERR_SCHEMA_MISMATCH"
	// ErrCodeMalformedFile is used when the CSV cannot be parsed at all
	ErrCodeMalformedFile = "ERR_MALFORMED_FILE"
	// ErrCodeFileTooLarge is used when the upload exceeds the size limit
	ErrCodeFileTooLarge = "ERR_FILE_TOO_LARGE"
	// ErrCodeTooManyRows is used when the upload exceeds the row limit
	ErrCodeTooManyRows = "ERR_TOO_MANY_ROWS"
	// ErrCodeReturnsNotSupported is used when a returns file is sent for a
	// platform whose adapter cannot merge one
	ErrCodeReturnsNotSupported = "ERR_RETURNS_NOT_SUPPORTED"
	// ErrCodeUnsupportedMediaType is used when the uploaded file is not CSV
	ErrCodeUnsupportedMediaType = "ERR_UNSUPPORTED_MEDIA_TYPE"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeUnsupportedPlatform:  http.StatusBadRequest,
	ErrCodeSchemaMismatch:       http.StatusBadRequest,
	ErrCodeMalformedFile:        http.StatusBadRequest,
	ErrCodeFileTooLarge:         http.StatusRequestEntityTooLarge,
	ErrCodeTooManyRows:          http.StatusRequestEntityTooLarge,
	ErrCodeReturnsNotSupported:  http.StatusBadRequest,
	ErrCodeUnsupportedMediaType: http.StatusUnsupportedMediaType,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the wire format
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"UNSUPPORTED_PLATFORM":  ErrCodeUnsupportedPlatform,
	"SCHEMA_MISMATCH":       ErrCodeSchemaMismatch,
	"MALFORMED_CSV":         ErrCodeMalformedFile,
	"FILE_TOO_LARGE":        ErrCodeFileTooLarge,
	"TOO_MANY_ROWS":         ErrCodeTooManyRows,
	"RETURNS_NOT_SUPPORTED": ErrCodeReturnsNotSupported,
}

// NormalizeErrorCode converts a domain error code to the wire format.
// If the code is already in the wire format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := DomainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
