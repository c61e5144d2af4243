package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Spreadsheet ingestion errors
var (
	ErrSpreadsheetParse = errors.New("error reading Excel file")
	ErrSchema           = errors.New("spreadsheet is missing required columns")
	ErrInvalidRow       = errors.New("invalid spreadsheet row")
)

// NewParseError is returned when a workbook cannot be decoded at all.
func NewParseError(source string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrSpreadsheetParse,
		Details:    fmt.Sprintf("Could not read %s", source),
		Cause:      cause,
		Field:      source,
	}
}

func NewSchemaError(source string, missing []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrSchema,
		Details:    fmt.Sprintf("%s must contain columns: %s", source, strings.Join(missing, ", ")),
		Field:      source,
	}
}

func NewInvalidRowError(source string, line int, reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidRow,
		Details:    fmt.Sprintf("%s row %d: %s", source, line, reason),
		Field:      source,
	}
}

func IsParseError(err error) bool {
	return errors.Is(err, ErrSpreadsheetParse)
}

func IsSchemaError(err error) bool {
	return errors.Is(err, ErrSchema)
}

func IsInvalidRowError(err error) bool {
	return errors.Is(err, ErrInvalidRow)
}
