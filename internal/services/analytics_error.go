package services

import (
	"errors"
	"fmt"

	"airtraffic/statboard/internal/analytics"
	"airtraffic/statboard/internal/constants"
)

// AnalyticsError carries an error code the HTTP layer maps to a status.
type AnalyticsError struct {
	Code    string
	Message string
	Err     error
}

func (e *AnalyticsError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AnalyticsError) Unwrap() error {
	return e.Err
}

func newError(code string, err error) *AnalyticsError {
	return &AnalyticsError{Code: code, Message: constants.GetErrorMessage(code), Err: err}
}

func invalidParam(format string, args ...any) *AnalyticsError {
	return &AnalyticsError{
		Code:    constants.ErrCodeInvalidParameter,
		Message: fmt.Sprintf(format, args...),
	}
}

// stageError maps a pipeline error to a coded error.
func stageError(err error) error {
	var ae *AnalyticsError
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, analytics.ErrColumnMissing) {
		return newError(constants.ErrCodeColumnMissing, err)
	}
	return newError(constants.ErrCodeInternalError, err)
}
