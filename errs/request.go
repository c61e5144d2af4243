package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Request & Input-Validation Errors
var (
	ErrMalformedPayload     = errors.New("malformed payload")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
	ErrMaxBodySizeExceeded  = errors.New("max body size exceeded")
	ErrInvalidJSON          = errors.New("invalid JSON")
	ErrMissingFile          = errors.New("missing upload file")
	ErrInvalidFileType      = errors.New("invalid file type")
	ErrNoOp                 = errors.New("no valid fields to update")
)

func NewMalformedPayloadError(payloadType string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMalformedPayload,
		Details:    fmt.Sprintf("Malformed %s payload", payloadType),
		Cause:      cause,
		Field:      "payload",
	}
}

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingRequiredField,
		Details:    fmt.Sprintf("Missing required field: %s", fieldName),
		Field:      fieldName,
	}
}

func NewInvalidFieldError(fieldName string, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidField,
		Details:    fmt.Sprintf("Invalid field %s: %s", fieldName, reason),
		Field:      fieldName,
	}
}

func NewMaxBodySizeExceededError(maxSize int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusRequestEntityTooLarge,
		err:        ErrMaxBodySizeExceeded,
		Details:    fmt.Sprintf("Request body size exceeded maximum allowed size of %d bytes", maxSize),
		Field:      "body_size",
	}
}

func NewInvalidJSONError(cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidJSON,
		Details:    "Invalid JSON format",
		Cause:      cause,
		Field:      "json",
	}
}

// NewMissingFilesError reports upload fields that were not present in the multipart form.
func NewMissingFilesError(fields ...string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingFile,
		Details:    fmt.Sprintf("Both files (%s) are required", strings.Join(fields, ", ")),
		Field:      strings.Join(fields, ","),
	}
}

func NewInvalidFileTypeError(field, filename string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidFileType,
		Details:    fmt.Sprintf("%q is not an Excel file. Allowed extensions: %s", filename, strings.Join(allowed, ", ")),
		Field:      field,
	}
}

func NewNoOpError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrNoOp,
	}
}

func IsMalformedPayloadError(err error) bool {
	return errors.Is(err, ErrMalformedPayload)
}

func IsMissingRequiredFieldError(err error) bool {
	return errors.Is(err, ErrMissingRequiredField)
}

func IsInvalidFieldError(err error) bool {
	return errors.Is(err, ErrInvalidField)
}

func IsMaxBodySizeExceededError(err error) bool {
	return errors.Is(err, ErrMaxBodySizeExceeded)
}

func IsInvalidJSONError(err error) bool {
	return errors.Is(err, ErrInvalidJSON)
}

func IsMissingFileError(err error) bool {
	return errors.Is(err, ErrMissingFile)
}

func IsInvalidFileTypeError(err error) bool {
	return errors.Is(err, ErrInvalidFileType)
}

func IsNoOpError(err error) bool {
	return errors.Is(err, ErrNoOp)
}
