package api

import (
	"errors"
	"net/http"
	"time"

	"airtraffic/statboard/internal/common"
	"airtraffic/statboard/internal/constants"
	"airtraffic/statboard/internal/logging"
	"airtraffic/statboard/internal/services"
)

// handleAnalyticsError renders a pipeline error with the status of its code.
func handleAnalyticsError(w http.ResponseWriter, initTime time.Time, err error) {
	var ae *services.AnalyticsError
	if errors.As(err, &ae) {
		statusCode := mapErrorCodeToHTTPStatus(ae.Code)
		if statusCode >= http.StatusInternalServerError {
			logging.Error("Request failed", "code", ae.Code, "error", err)
		}

		// Client-caused failures carry their detail; internal ones only the code message.
		var detail error
		switch ae.Code {
		case constants.ErrCodeInvalidParameter, constants.ErrCodeInvalidQuery, constants.ErrCodeQueryFailed:
			detail = errors.New(ae.Error())
		default:
			detail = errors.New(ae.Message)
		}
		common.RespondError(w, initTime, detail, ae.Code, statusCode)
		return
	}

	logging.Error("Unexpected error", "error", err)
	common.RespondError(w, initTime, nil, constants.ErrCodeInternalError, http.StatusInternalServerError)
}

// mapErrorCodeToHTTPStatus maps error codes to HTTP status codes
func mapErrorCodeToHTTPStatus(errorCode string) int {
	switch errorCode {
	// 400 Bad Request - caller must change the request
	case constants.ErrCodeInvalidParameter:
		return http.StatusBadRequest
	case constants.ErrCodeInvalidQuery:
		return http.StatusBadRequest

	// 404 Not Found
	case constants.ErrCodeNoData:
		return http.StatusNotFound
	case constants.ErrCodeUnknownTable:
		return http.StatusNotFound
	case constants.ErrCodeUnknownQuery:
		return http.StatusNotFound

	// 401 Unauthorized
	case constants.ErrCodeUnauthorized:
		return http.StatusUnauthorized

	// 429 Too Many Requests
	case constants.ErrCodeRateLimited:
		return http.StatusTooManyRequests

	// 502/504 - the store failed or was too slow
	case constants.ErrCodeQueryFailed:
		return http.StatusBadGateway
	case constants.ErrCodeQueryTimeout:
		return http.StatusGatewayTimeout

	// 500 Internal Server Error
	case constants.ErrCodeColumnMissing:
		return http.StatusInternalServerError
	case constants.ErrCodeExportFailed:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
