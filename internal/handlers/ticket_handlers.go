package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"fieldops/internal/handlers/dto"
	"fieldops/internal/logger"
	"fieldops/internal/middleware"
	"fieldops/internal/models/ticket"
	"fieldops/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// загружаемые отчёты не больше 10 МБ
const maxReportSize = 10 << 20

type TicketHandler struct {
	TicketService TicketService
}

func NewTicketHandler(ticketService TicketService) TicketHandler {
	return TicketHandler{
		TicketService: ticketService,
	}
}

func (h *TicketHandler) PostTicket(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.RegisterTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if err := validate.Struct(request); err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	created, err := h.TicketService.RegisterTicket(r.Context(), service.RegisterTicketInput{
		SerialNumber: request.SerialNumber,
		ServiceType:  request.ServiceType,
		Complaint:    request.Complaint,
		AssignedTo:   request.AssignedTo,
	})
	if err != nil {
		if handleBusinessError(w, err, "регистрация заявки") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "register_ticket"))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Заявка зарегистрирована",
		zap.Int64("service_id", created.ID),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusCreated, toPayload("ticket", created))
}

func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := serviceIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.TicketService.GetTicket(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err, "получение заявки") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "get_ticket"),
			zap.Int64("service_id", id))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Заявка получена",
		zap.Int64("service_id", id),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusOK,
		toPayload("ticket", view.Ticket),
		toPayload("product", view.Product),
		toPayload("installation_report", view.InstallationReport))
}

// PostReport принимает multipart-форму: file + status
func (h *TicketHandler) PostReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := serviceIDParam(w, r)
	if !ok {
		return
	}

	fileName, data, ok := reportFile(w, r)
	if !ok {
		return
	}

	status := ticket.Status(r.FormValue("status"))

	publicPath, err := h.TicketService.AttachReport(r.Context(), service.AttachReportInput{
		ServiceID: id,
		Status:    status,
		FileName:  fileName,
		Data:      data,
	})
	if err != nil {
		if handleBusinessError(w, err, "приложение отчёта") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "attach_report"),
			zap.Int64("service_id", id))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Отчёт приложен",
		zap.Int64("service_id", id),
		zap.String("path", publicPath),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusOK, toPayload("path", publicPath))
}

func (h *TicketHandler) PostInstallationReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := serviceIDParam(w, r)
	if !ok {
		return
	}

	fileName, data, ok := reportFile(w, r)
	if !ok {
		return
	}

	identity := middleware.GetIdentity(r.Context())
	uploadedBy := ""
	if identity != nil {
		uploadedBy = identity.Username
	}

	publicPath, err := h.TicketService.AttachInstallationReport(r.Context(), service.AttachInstallationInput{
		ServiceID:  id,
		FileName:   fileName,
		Data:       data,
		UploadedBy: uploadedBy,
	})
	if err != nil {
		if handleBusinessError(w, err, "приложение отчёта по установке") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "attach_installation_report"),
			zap.Int64("service_id", id))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Отчёт по установке приложен",
		zap.Int64("service_id", id),
		zap.String("path", publicPath),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusOK, toPayload("path", publicPath))
}

func (h *TicketHandler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := serviceIDParam(w, r)
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if err := validate.Struct(request); err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	f, err := h.TicketService.SubmitFeedback(r.Context(), service.FeedbackInput{
		ServiceID:   id,
		Rating:      request.Rating,
		Description: request.Description,
	})
	if err != nil {
		if handleBusinessError(w, err, "сохранение отзыва") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "submit_feedback"),
			zap.Int64("service_id", id))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Отзыв сохранён",
		zap.Int64("service_id", id),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusCreated, toPayload("feedback", dto.FromFeedback(f)))
}

func serviceIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil || id <= 0 {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("raw", idParam),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное значение id")
		return 0, false
	}
	return id, true
}

func reportFile(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(maxReportSize); err != nil {
		logger.Warn("HTTP: Ошибка разбора multipart-формы",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверная multipart-форма: "+err.Error())
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.Warn("HTTP: Файл отсутствует",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "поле file обязательно")
		return "", nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxReportSize))
	if err != nil {
		logger.Warn("HTTP: Ошибка чтения файла", zap.Error(err))
		responseWithError(w, http.StatusBadRequest, "не удалось прочитать файл")
		return "", nil, false
	}

	return header.Filename, data, true
}
