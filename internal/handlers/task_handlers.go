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
	"fieldops/internal/models/task"
	"fieldops/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) TaskHandler {
	return TaskHandler{
		TaskService: taskService,
	}
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	var attachments []service.Attachment

	switch {
	case checkContentType(r, "application/json"):
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			logger.Warn("HTTP: ошибка чтения JSON",
				zap.Error(err),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
			return
		}
	case checkContentType(r, "multipart/form-data"):
		// вложения принимаются только через форму
		var ok bool
		request, attachments, ok = taskForm(w, r)
		if !ok {
			return
		}
	default:
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType,
			"Content-Type должен быть application/json или multipart/form-data")
		return
	}

	if err := validate.Struct(request); err != nil {
		logger.Warn("HTTP: Ошибка валидации",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		responseWithError(w, http.StatusUnauthorized, "требуется вход")
		return
	}

	logger.Info("HTTP: Вызов сервиса создания задач")
	created, err := h.TaskService.CreateTask(r.Context(), service.CreateTaskInput{
		Name:       request.Name,
		CreatedBy:  identity.Username,
		AssignedTo: request.AssignedTo,
		Deadline:   request.Deadline,
		Priority:   request.Priority,
		Category:   request.Category,
		Notes:      request.Notes,

		Attachments: attachments,
	})
	if err != nil {
		if handleBusinessError(w, err, "создание задачи") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_task"),
			zap.String("client_ip", r.RemoteAddr),
			zap.Duration("ms", time.Since(start)))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithSuccess(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

func (h *TaskHandler) PostFollowup(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.FollowupRequest
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

	logger.Info("HTTP: Вызов сервиса фоллоу-апа", zap.Int64("task_id", id))
	updated, err := h.TaskService.SubmitFollowup(r.Context(), service.FollowupInput{
		TaskID:         id,
		Notes:          request.Notes,
		FollowedAt:     request.FollowedAt,
		NewStatus:      task.Status(request.Status),
		CompletionDate: request.CompletionDate,
		AssignedTo:     request.AssignedTo,
	})
	if err != nil {
		if handleBusinessError(w, err, "фоллоу-ап") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "submit_followup"),
			zap.Int64("task_id", id),
			zap.Duration("ms", time.Since(start)))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Фоллоу-ап применён",
		zap.Int64("task_id", id),
		zap.String("status", string(updated.Status)),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

func (h *TaskHandler) GetMyTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	identity := middleware.GetIdentity(r.Context())
	if identity == nil {
		responseWithError(w, http.StatusUnauthorized, "требуется вход")
		return
	}

	tasks, err := h.TaskService.ListTasksForUser(r.Context(), identity.Username)
	if err != nil {
		if handleBusinessError(w, err, "получение задач") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "list_tasks"),
			zap.String("username", identity.Username))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskIDParam(w, r)
	if !ok {
		return
	}

	t, entries, err := h.TaskService.GetTask(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err, "получение задачи") {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "get_task"),
			zap.Int64("task_id", id))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)))

	responseWithSuccess(w, http.StatusOK,
		toPayload("task", dto.FromTask(t)),
		toPayload("followups", dto.FromFollowupList(entries)))
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, "хранилище недоступно")
		return
	}
	responseWithSuccess(w, http.StatusOK)
}

// taskForm разбирает multipart-создание задачи: поля формы плюс файлы
// под ключом attachments
func taskForm(w http.ResponseWriter, r *http.Request) (dto.CreateTaskRequest, []service.Attachment, bool) {
	var request dto.CreateTaskRequest

	if err := r.ParseMultipartForm(maxReportSize); err != nil {
		logger.Warn("HTTP: Ошибка разбора multipart-формы",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверная multipart-форма: "+err.Error())
		return request, nil, false
	}

	request.Name = r.FormValue("name")
	request.AssignedTo = r.FormValue("assigned_to")
	request.Priority = r.FormValue("priority")
	request.Category = r.FormValue("category")
	request.Notes = r.FormValue("notes")

	if raw := r.FormValue("deadline"); raw != "" {
		deadline, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			logger.Warn("HTTP: Неверный формат deadline",
				zap.String("raw", raw),
				zap.String("client_ip", r.RemoteAddr))

			responseWithError(w, http.StatusBadRequest, "deadline должен быть в формате RFC3339")
			return request, nil, false
		}
		request.Deadline = deadline
	}

	var attachments []service.Attachment
	for _, header := range r.MultipartForm.File["attachments"] {
		file, err := header.Open()
		if err != nil {
			logger.Warn("HTTP: Ошибка открытия вложения", zap.Error(err))
			responseWithError(w, http.StatusBadRequest, "не удалось прочитать вложение "+header.Filename)
			return request, nil, false
		}

		data, err := io.ReadAll(io.LimitReader(file, maxReportSize))
		file.Close()
		if err != nil {
			logger.Warn("HTTP: Ошибка чтения вложения", zap.Error(err))
			responseWithError(w, http.StatusBadRequest, "не удалось прочитать вложение "+header.Filename)
			return request, nil, false
		}

		attachments = append(attachments, service.Attachment{
			FileName: header.Filename,
			Data:     data,
		})
	}

	return request, attachments, true
}

func taskIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
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
