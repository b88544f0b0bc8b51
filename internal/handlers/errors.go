package handlers

import (
	"net/http"

	"fieldops/internal/logger"
	"fieldops/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error, defaultMessage string) bool {
	if businessErr, ok := err.(*service.BusinessError); ok {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: Бизнес-ошибка",
			zap.String("error_code", businessErr.Code),
			zap.Int("http_status", statusCode))

		message := businessErr.Message
		if message == "" {
			message = defaultMessage
		}

		responseWithJSON(w, statusCode,
			toPayload("error", businessErr.Code),
			toPayload("message", message),
			toPayload("details", businessErr.Details),
		)
		return true
	}
	return false
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case "NOT_FOUND":
		return http.StatusNotFound
	case "VALIDATION_ERROR":
		return http.StatusBadRequest
	case "UNAUTHORIZED":
		return http.StatusUnauthorized
	case "FORBIDDEN":
		return http.StatusForbidden
	case "COMPLETED_TERMINAL", "INVALID_TRANSITION", "VERSION_CONFLICT":
		return http.StatusConflict
	case "STORAGE_ERROR", "TRANSITION_ERROR":
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
