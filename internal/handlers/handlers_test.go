package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fieldops/internal/auth"
	"fieldops/internal/handlers"
	"fieldops/internal/logger"
	"fieldops/internal/middleware"
	"fieldops/internal/models/task"
	"fieldops/internal/models/ticket"
	"fieldops/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init(true)
}

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) CreateTask(ctx context.Context, in service.CreateTaskInput) (*task.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) SubmitFollowup(ctx context.Context, in service.FollowupInput) (*task.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) ListTasksForUser(ctx context.Context, username string) ([]*task.Task, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, id int64) (*task.Task, []*task.FollowupEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*task.Task), args.Get(1).([]*task.FollowupEntry), args.Error(2)
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var _ handlers.TaskService = (*MockTaskService)(nil)

// MockTicketService - мок сервиса заявок
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) RegisterTicket(ctx context.Context, in service.RegisterTicketInput) (*ticket.ServiceTicket, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.ServiceTicket), args.Error(1)
}

func (m *MockTicketService) GetTicket(ctx context.Context, serviceID int64) (*service.TicketView, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TicketView), args.Error(1)
}

func (m *MockTicketService) AttachReport(ctx context.Context, in service.AttachReportInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockTicketService) AttachInstallationReport(ctx context.Context, in service.AttachInstallationInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockTicketService) SubmitFeedback(ctx context.Context, in service.FeedbackInput) (*ticket.Feedback, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Feedback), args.Error(1)
}

var _ handlers.TicketService = (*MockTicketService)(nil)

// MockAssignService - мок поиска исполнителей
type MockAssignService struct {
	mock.Mock
}

func (m *MockAssignService) SearchAssignable(ctx context.Context, match string) ([]string, error) {
	args := m.Called(ctx, match)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var _ handlers.AssignService = (*MockAssignService)(nil)

// MockAuthService - мок аутентификации
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.String(1), args.Error(2)
}

var _ handlers.AuthService = (*MockAuthService)(nil)

// имитация chi-параметра пути
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func asUser(r *http.Request, username, role string) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), &auth.Identity{
		Username: username,
		Role:     role,
	}))
}

// TestTaskHandler_PostTask тестирует создание задачи
func TestTaskHandler_PostTask(t *testing.T) {
	deadline := time.Now().Add(24 * time.Hour).UTC()

	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - create task",
			requestBody: fmt.Sprintf(`{
				"name": "Follow up ACME",
				"assigned_to": "raj",
				"deadline": "%s"
			}`, deadline.Format(time.RFC3339)),
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.MatchedBy(func(in service.CreateTaskInput) bool {
					return in.Name == "Follow up ACME" &&
						in.CreatedBy == "boss" &&
						in.AssignedTo == "raj"
				})).Return(&task.Task{
					ID:         1,
					Name:       "Follow up ACME",
					CreatedBy:  "boss",
					AssignedTo: "raj",
					Status:     task.StatusPending,
					Deadline:   deadline,
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error - missing assigned_to",
			requestBody: fmt.Sprintf(`{
				"name": "Follow up ACME",
				"deadline": "%s"
			}`, deadline.Format(time.RFC3339)),
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error - unknown priority",
			requestBody: fmt.Sprintf(`{
				"name": "Follow up ACME",
				"assigned_to": "raj",
				"deadline": "%s",
				"priority": "Urgent"
			}`, deadline.Format(time.RFC3339)),
			contentType:    "application/json",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error - service error",
			requestBody: fmt.Sprintf(`{
				"name": "Follow up ACME",
				"assigned_to": "raj",
				"deadline": "%s"
			}`, deadline.Format(time.RFC3339)),
			contentType: "application/json",
			setupMock: func(m *MockTaskService) {
				m.On("CreateTask", mock.Anything, mock.Anything).
					Return(nil, errors.New("storage down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService)

			req := httptest.NewRequest("POST", "/tasks", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", tt.contentType)
			req = asUser(req, "boss", "manager")
			w := httptest.NewRecorder()

			handler.PostTask(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusCreated {
				var response map[string]any
				err := json.NewDecoder(w.Body).Decode(&response)
				require.NoError(t, err)
				assert.Equal(t, true, response["success"])
				assert.NotNil(t, response["task"])
			}

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_PostTaskMultipart тестирует создание задачи с вложениями
func TestTaskHandler_PostTaskMultipart(t *testing.T) {
	deadline := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", "Install RO-500"))
	require.NoError(t, writer.WriteField("assigned_to", "raj"))
	require.NoError(t, writer.WriteField("deadline", deadline.Format(time.RFC3339)))

	part, err := writer.CreateFormFile("attachments", "scheme.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	mockService := new(MockTaskService)
	mockService.On("CreateTask", mock.Anything, mock.MatchedBy(func(in service.CreateTaskInput) bool {
		return in.Name == "Install RO-500" &&
			in.AssignedTo == "raj" &&
			in.Deadline.Equal(deadline) &&
			len(in.Attachments) == 1 &&
			in.Attachments[0].FileName == "scheme.pdf" &&
			string(in.Attachments[0].Data) == "%PDF-"
	})).Return(&task.Task{
		ID:          7,
		Name:        "Install RO-500",
		AssignedTo:  "raj",
		Status:      task.StatusPending,
		Deadline:    deadline,
		Attachments: []string{"/task_attachments/1_scheme.pdf"},
	}, nil)

	handler := handlers.NewTaskHandler(mockService)

	req := httptest.NewRequest("POST", "/tasks", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = asUser(req, "boss", "manager")
	w := httptest.NewRecorder()

	handler.PostTask(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	created := response["task"].(map[string]any)
	assert.Len(t, created["attachments"], 1)
	mockService.AssertExpectations(t)
}

// форма без вложений проходит, обязательные поля всё равно проверяются
func TestTaskHandler_PostTaskMultipartValidation(t *testing.T) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("name", "Install RO-500"))
	require.NoError(t, writer.Close())

	mockService := new(MockTaskService)
	handler := handlers.NewTaskHandler(mockService)

	req := httptest.NewRequest("POST", "/tasks", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req = asUser(req, "boss", "manager")
	w := httptest.NewRecorder()

	handler.PostTask(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "CreateTask")
}

// у бизнес-ошибки без текста клиент получает сообщение операции
func TestHandleBusinessErrorFallbackMessage(t *testing.T) {
	mockService := new(MockTaskService)
	mockService.On("GetTask", mock.Anything, int64(5)).
		Return(nil, nil, &service.BusinessError{Code: "NOT_FOUND"})

	handler := handlers.NewTaskHandler(mockService)

	req := httptest.NewRequest("GET", "/tasks/5", nil)
	req = withURLParam(asUser(req, "raj", "engineer"), "id", "5")
	w := httptest.NewRecorder()

	handler.GetTaskByID(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "NOT_FOUND", response["error"])
	assert.Equal(t, "получение задачи", response["message"])
}

// TestTaskHandler_PostFollowup тестирует фоллоу-ап по задаче
func TestTaskHandler_PostFollowup(t *testing.T) {
	followedAt := time.Now().UTC()

	tests := []struct {
		name           string
		taskID         string
		requestBody    string
		setupMock      func(*MockTaskService)
		expectedStatus int
		expectedError  string
	}{
		{
			name:   "success - move to Working",
			taskID: "7",
			requestBody: fmt.Sprintf(`{
				"notes": "called client",
				"followed_at": "%s",
				"status": "Working"
			}`, followedAt.Format(time.RFC3339)),
			setupMock: func(m *MockTaskService) {
				m.On("SubmitFollowup", mock.Anything, mock.MatchedBy(func(in service.FollowupInput) bool {
					return in.TaskID == 7 && in.NewStatus == task.StatusWorking
				})).Return(&task.Task{
					ID:     7,
					Name:   "Follow up ACME",
					Status: task.StatusWorking,
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - bad id",
			taskID:         "abc",
			requestBody:    `{}`,
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "error - completed is terminal",
			taskID: "7",
			requestBody: fmt.Sprintf(`{
				"notes": "one more",
				"followed_at": "%s",
				"status": "Working"
			}`, followedAt.Format(time.RFC3339)),
			setupMock: func(m *MockTaskService) {
				m.On("SubmitFollowup", mock.Anything, mock.Anything).
					Return(nil, service.NewCompletedTerminal("задача", int64(7)))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "COMPLETED_TERMINAL",
		},
		{
			name:   "error - invalid transition",
			taskID: "7",
			requestBody: fmt.Sprintf(`{
				"notes": "back to pending",
				"followed_at": "%s",
				"status": "Pending"
			}`, followedAt.Format(time.RFC3339)),
			setupMock: func(m *MockTaskService) {
				m.On("SubmitFollowup", mock.Anything, mock.Anything).
					Return(nil, service.NewInvalidTransition("задача", "Working", "Pending"))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "INVALID_TRANSITION",
		},
		{
			name:   "error - version conflict",
			taskID: "7",
			requestBody: fmt.Sprintf(`{
				"notes": "race",
				"followed_at": "%s",
				"status": "Working"
			}`, followedAt.Format(time.RFC3339)),
			setupMock: func(m *MockTaskService) {
				m.On("SubmitFollowup", mock.Anything, mock.Anything).
					Return(nil, service.NewBusinessError("VERSION_CONFLICT", "версия устарела"))
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "VERSION_CONFLICT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService)

			req := httptest.NewRequest("POST", "/tasks/"+tt.taskID+"/followups", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req = withURLParam(asUser(req, "raj", "engineer"), "id", tt.taskID)
			w := httptest.NewRecorder()

			handler.PostFollowup(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var response map[string]any
				err := json.NewDecoder(w.Body).Decode(&response)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedError, response["error"])
			}

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_GetMyTasks тестирует список задач текущего пользователя
func TestTaskHandler_GetMyTasks(t *testing.T) {
	t.Run("success - get my tasks", func(t *testing.T) {
		mockService := new(MockTaskService)
		mockService.On("ListTasksForUser", mock.Anything, "raj").
			Return([]*task.Task{
				{ID: 1, Name: "a", Status: task.StatusPending},
				{ID: 2, Name: "b", Status: task.StatusWorking},
			}, nil)

		handler := handlers.NewTaskHandler(mockService)

		req := httptest.NewRequest("GET", "/tasks", nil)
		req = asUser(req, "raj", "engineer")
		w := httptest.NewRecorder()

		handler.GetMyTasks(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		err := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Len(t, response["tasks"], 2)

		mockService.AssertExpectations(t)
	})

	t.Run("error - no identity", func(t *testing.T) {
		mockService := new(MockTaskService)
		handler := handlers.NewTaskHandler(mockService)

		req := httptest.NewRequest("GET", "/tasks", nil)
		w := httptest.NewRecorder()

		handler.GetMyTasks(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "ListTasksForUser")
	})
}

// TestTaskHandler_GetTaskByID тестирует получение задачи с журналом
func TestTaskHandler_GetTaskByID(t *testing.T) {
	tests := []struct {
		name           string
		taskID         string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:   "success - task with followups",
			taskID: "5",
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, int64(5)).
					Return(&task.Task{ID: 5, Name: "x", Status: task.StatusWorking},
						[]*task.FollowupEntry{
							{ID: 2, TaskID: 5, Status: task.StatusWorking},
							{ID: 1, TaskID: 5, Status: task.StatusPending},
						}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "error - not found",
			taskID: "5",
			setupMock: func(m *MockTaskService) {
				m.On("GetTask", mock.Anything, int64(5)).
					Return(nil, nil, service.NewNotFound("задача", int64(5)))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "error - bad id",
			taskID:         "-1",
			setupMock:      func(m *MockTaskService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService)

			req := httptest.NewRequest("GET", "/tasks/"+tt.taskID, nil)
			req = withURLParam(asUser(req, "raj", "engineer"), "id", tt.taskID)
			w := httptest.NewRecorder()

			handler.GetTaskByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus == http.StatusOK {
				var response map[string]any
				err := json.NewDecoder(w.Body).Decode(&response)
				require.NoError(t, err)
				assert.NotNil(t, response["task"])
				assert.Len(t, response["followups"], 2)
			}

			mockService.AssertExpectations(t)
		})
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

// TestTicketHandler_PostReport тестирует загрузку отчёта по стадии
func TestTicketHandler_PostReport(t *testing.T) {
	t.Run("success - spares report", func(t *testing.T) {
		mockService := new(MockTicketService)
		mockService.On("AttachReport", mock.Anything, mock.MatchedBy(func(in service.AttachReportInput) bool {
			return in.ServiceID == 3 &&
				in.Status == ticket.StatusPendingSpares &&
				in.FileName == "spares.pdf" &&
				len(in.Data) > 0
		})).Return("/spares_reports/1_spares.pdf", nil)

		handler := handlers.NewTicketHandler(mockService)

		body, contentType := multipartBody(t,
			map[string]string{"status": "PENDING FOR SPARES"}, "spares.pdf", []byte("%PDF-1.4"))

		req := httptest.NewRequest("POST", "/tickets/3/report", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParam(asUser(req, "raj", "engineer"), "id", "3")
		w := httptest.NewRecorder()

		handler.PostReport(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/spares_reports/1_spares.pdf")
		mockService.AssertExpectations(t)
	})

	t.Run("error - missing file", func(t *testing.T) {
		mockService := new(MockTicketService)
		handler := handlers.NewTicketHandler(mockService)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.WriteField("status", "COMPLETED"))
		require.NoError(t, writer.Close())

		req := httptest.NewRequest("POST", "/tickets/3/report", body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req = withURLParam(asUser(req, "raj", "engineer"), "id", "3")
		w := httptest.NewRecorder()

		handler.PostReport(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "AttachReport")
	})

	t.Run("error - completed is terminal", func(t *testing.T) {
		mockService := new(MockTicketService)
		mockService.On("AttachReport", mock.Anything, mock.Anything).
			Return("", service.NewCompletedTerminal("заявка", int64(3)))

		handler := handlers.NewTicketHandler(mockService)

		body, contentType := multipartBody(t,
			map[string]string{"status": "COMPLETED"}, "final.pdf", []byte("%PDF-1.4"))

		req := httptest.NewRequest("POST", "/tickets/3/report", body)
		req.Header.Set("Content-Type", contentType)
		req = withURLParam(asUser(req, "raj", "engineer"), "id", "3")
		w := httptest.NewRecorder()

		handler.PostReport(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "COMPLETED_TERMINAL")
		mockService.AssertExpectations(t)
	})
}

// TestTicketHandler_GetTicket тестирует получение заявки
func TestTicketHandler_GetTicket(t *testing.T) {
	t.Run("success - ticket with product", func(t *testing.T) {
		mockService := new(MockTicketService)
		mockService.On("GetTicket", mock.Anything, int64(4)).
			Return(&service.TicketView{
				Ticket:  &ticket.ServiceTicket{ID: 4, SerialNumber: "SN-1", Status: ticket.StatusOpen},
				Product: &ticket.Product{SerialNumber: "SN-1", Model: "RO-800"},
			}, nil)

		handler := handlers.NewTicketHandler(mockService)

		req := httptest.NewRequest("GET", "/tickets/4", nil)
		req = withURLParam(asUser(req, "raj", "engineer"), "id", "4")
		w := httptest.NewRecorder()

		handler.GetTicket(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		err := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.NotNil(t, response["ticket"])
		assert.NotNil(t, response["product"])

		mockService.AssertExpectations(t)
	})

	t.Run("error - not found", func(t *testing.T) {
		mockService := new(MockTicketService)
		mockService.On("GetTicket", mock.Anything, int64(999)).
			Return(nil, service.NewNotFound("заявка", int64(999)))

		handler := handlers.NewTicketHandler(mockService)

		req := httptest.NewRequest("GET", "/tickets/999", nil)
		req = withURLParam(asUser(req, "raj", "engineer"), "id", "999")
		w := httptest.NewRecorder()

		handler.GetTicket(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})
}

// TestTicketHandler_PostFeedback тестирует сохранение отзыва
func TestTicketHandler_PostFeedback(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockTicketService)
		expectedStatus int
	}{
		{
			name:        "success - feedback saved",
			requestBody: `{"rating": 5, "description": "great service"}`,
			setupMock: func(m *MockTicketService) {
				m.On("SubmitFeedback", mock.Anything, service.FeedbackInput{
					ServiceID:   4,
					Rating:      5,
					Description: "great service",
				}).Return(&ticket.Feedback{ID: 1, ServiceID: 4, Rating: 5}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - rating out of range",
			requestBody:    `{"rating": 6}`,
			setupMock:      func(m *MockTicketService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - rating missing",
			requestBody:    `{"description": "no stars"}`,
			setupMock:      func(m *MockTicketService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTicketService)
			tt.setupMock(mockService)

			handler := handlers.NewTicketHandler(mockService)

			req := httptest.NewRequest("POST", "/tickets/4/feedback", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			req = withURLParam(req, "id", "4")
			w := httptest.NewRecorder()

			handler.PostFeedback(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestAssignHandler_GetAssignable тестирует поиск исполнителей
func TestAssignHandler_GetAssignable(t *testing.T) {
	t.Run("success - matches", func(t *testing.T) {
		mockService := new(MockAssignService)
		mockService.On("SearchAssignable", mock.Anything, "ra").
			Return([]string{"raj", "ravi"}, nil)

		handler := handlers.NewAssignHandler(mockService)

		req := httptest.NewRequest("GET", "/assignable?q=ra", nil)
		req = asUser(req, "boss", "manager")
		w := httptest.NewRecorder()

		handler.GetAssignable(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		err := json.NewDecoder(w.Body).Decode(&response)
		require.NoError(t, err)
		assert.Len(t, response["usernames"], 2)

		mockService.AssertExpectations(t)
	})

	t.Run("success - empty match returns all up to limit", func(t *testing.T) {
		mockService := new(MockAssignService)
		mockService.On("SearchAssignable", mock.Anything, "").
			Return([]string{}, nil)

		handler := handlers.NewAssignHandler(mockService)

		req := httptest.NewRequest("GET", "/assignable", nil)
		req = asUser(req, "boss", "manager")
		w := httptest.NewRecorder()

		handler.GetAssignable(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

// TestAuthHandler_PostLogin тестирует вход и выдачу куки
func TestAuthHandler_PostLogin(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		setupMock      func(*MockAuthService)
		expectedStatus int
		expectCookie   bool
	}{
		{
			name:        "success - cookie set",
			requestBody: `{"username": "raj", "password": "secret"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "raj", "secret").
					Return("signed.jwt.token", "engineer", nil)
			},
			expectedStatus: http.StatusOK,
			expectCookie:   true,
		},
		{
			name:        "error - bad credentials",
			requestBody: `{"username": "raj", "password": "wrong"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "raj", "wrong").
					Return("", "", service.NewUnauthorized("неверный логин или пароль"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "error - missing password",
			requestBody:    `{"username": "raj"}`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.setupMock(mockService)

			handler := handlers.NewAuthHandler(mockService, time.Hour)

			req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.PostLogin(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			cookies := w.Result().Cookies()
			if tt.expectCookie {
				require.Len(t, cookies, 1)
				assert.Equal(t, auth.CookieName, cookies[0].Name)
				assert.Equal(t, "signed.jwt.token", cookies[0].Value)
				assert.True(t, cookies[0].HttpOnly)
			} else {
				assert.Empty(t, cookies)
			}

			mockService.AssertExpectations(t)
		})
	}
}

// TestAuthHandler_PostLogout тестирует сброс куки
func TestAuthHandler_PostLogout(t *testing.T) {
	handler := handlers.NewAuthHandler(new(MockAuthService), time.Hour)

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	w := httptest.NewRecorder()

	handler.PostLogout(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
