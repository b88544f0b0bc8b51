package handlers

import (
	"net/http"
	"time"

	"fieldops/internal/logger"

	"go.uber.org/zap"
)

type AssignHandler struct {
	AssignService AssignService
}

func NewAssignHandler(assignService AssignService) AssignHandler {
	return AssignHandler{
		AssignService: assignService,
	}
}

// GetAssignable - поиск исполнителей по параметру q
func (h *AssignHandler) GetAssignable(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	match := r.URL.Query().Get("q")

	usernames, err := h.AssignService.SearchAssignable(r.Context(), match)
	if err != nil {
		if handleBusinessError(w, err, "поиск исполнителей") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "search_assignable"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Исполнители найдены",
		zap.Int("count", len(usernames)),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusOK, toPayload("usernames", usernames))
}
