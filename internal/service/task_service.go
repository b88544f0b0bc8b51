package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fieldops/internal/logger"
	"fieldops/internal/models/task"
	rep "fieldops/internal/repository"
	"fieldops/internal/storage"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo  TaskRepository
	files ReportStore
}

func NewTaskService(repo TaskRepository, files ReportStore) TaskService {
	return TaskService{
		repo:  repo,
		files: files,
	}
}

// Attachment - файл, приложенный к создаваемой задаче
type Attachment struct {
	FileName string
	Data     []byte
}

type CreateTaskInput struct {
	Name        string
	CreatedBy   string
	AssignedTo  string
	Deadline    time.Time
	Priority    string
	Category    string
	Notes       string
	Attachments []Attachment
}

func (s *TaskService) CreateTask(ctx context.Context, in CreateTaskInput) (*task.Task, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, NewValidationError("name", "обязательное поле")
	}
	if strings.TrimSpace(in.AssignedTo) == "" {
		return nil, NewValidationError("assigned_to", "обязательное поле")
	}
	if in.Deadline.IsZero() {
		return nil, NewValidationError("deadline", "обязательное поле")
	}

	if in.Priority == "" {
		in.Priority = task.PriorityNormal
	}

	// сначала файлы, потом БД, как и с отчётами заявок
	paths := make([]string, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		if len(a.Data) == 0 {
			return nil, NewValidationError("attachments", "пустой файл "+a.FileName)
		}
		path, err := s.files.Save(storage.CategoryTaskAttachments, a.FileName, a.Data)
		if err != nil {
			s.removeAll(paths)
			logger.Error("Service: Не удалось сохранить вложение", err, zap.String("file", a.FileName))
			return nil, NewStorageError("сохранение вложения", err)
		}
		paths = append(paths, path)
	}

	t := &task.Task{
		Name:       in.Name,
		CreatedBy:  in.CreatedBy,
		AssignedTo: in.AssignedTo,
		Priority:   in.Priority,
		Category:   in.Category,
		Notes:      in.Notes,
		Status:     task.StatusPending,
		Deadline:   in.Deadline,

		Attachments: paths,
	}

	// первая запись журнала фиксирует создателя и исполнителя
	initial := &task.FollowupEntry{
		Name:       in.Name,
		Status:     task.StatusPending,
		FollowedAt: time.Now(),
		Deadline:   in.Deadline,
		CreatedBy:  in.CreatedBy,
		AssignedTo: in.AssignedTo,
	}

	if err := s.repo.Create(ctx, t, initial); err != nil {
		// компенсация: вложения уже на диске, задачи в БД нет
		s.removeAll(paths)
		return nil, NewTransitionError("задача", "new", err)
	}

	logger.Info("Service: Задача создана",
		zap.Int64("task_id", t.ID),
		zap.String("assigned_to", t.AssignedTo))
	return t, nil
}

func (s *TaskService) removeAll(paths []string) {
	for _, path := range paths {
		if err := s.files.Remove(path); err != nil {
			logger.Warn("Service: Компенсация не удалась, файл-сирота",
				zap.String("path", path), zap.Error(err))
		}
	}
}

type FollowupInput struct {
	TaskID         int64
	Notes          string
	FollowedAt     time.Time
	NewStatus      task.Status
	CompletionDate *time.Time
	AssignedTo     string // опциональное переназначение
}

func (s *TaskService) SubmitFollowup(ctx context.Context, in FollowupInput) (*task.Task, error) {
	if strings.TrimSpace(in.Notes) == "" {
		return nil, NewValidationError("notes", "обязательное поле")
	}
	if in.FollowedAt.IsZero() {
		return nil, NewValidationError("followed_at", "обязательное поле")
	}
	if !in.NewStatus.Valid() {
		return nil, NewValidationError("status", fmt.Sprintf("неизвестный статус %q", in.NewStatus))
	}

	t, err := s.repo.GetByID(ctx, in.TaskID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", in.TaskID))
			return nil, NewNotFound("задача", in.TaskID)
		}
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	// Completed терминален, повторные фоллоу-апы отклоняются
	if t.Status.Terminal() {
		return nil, NewCompletedTerminal("задача", t.ID)
	}
	if !t.Status.CanTransition(in.NewStatus) {
		return nil, NewInvalidTransition("задача", string(t.Status), string(in.NewStatus))
	}

	completion := in.CompletionDate
	if in.NewStatus.RequiresCompletionDate() && completion == nil {
		followedAt := in.FollowedAt
		completion = &followedAt
	}
	if !in.NewStatus.RequiresCompletionDate() {
		completion = nil
	}

	assignedTo := t.AssignedTo
	if strings.TrimSpace(in.AssignedTo) != "" {
		assignedTo = in.AssignedTo
	}

	entry := &task.FollowupEntry{
		TaskID:         t.ID,
		Name:           t.Name,
		Notes:          in.Notes,
		Status:         in.NewStatus,
		FollowedAt:     in.FollowedAt,
		Deadline:       t.Deadline,
		CompletionDate: completion,
		CreatedBy:      t.CreatedBy,
		AssignedTo:     assignedTo,
	}

	t.Status = in.NewStatus
	t.AssignedTo = assignedTo
	t.CompletionDate = completion

	if err := s.repo.SubmitFollowup(ctx, t, entry); err != nil {
		if errors.Is(err, rep.ErrVersionConflict) {
			logger.Warn("Service: Конфликт версий", zap.Int64("task_id", t.ID))
			return nil, NewBusinessError("VERSION_CONFLICT",
				"задача изменена параллельным запросом, повторите операцию",
				ToDetail("task_id", t.ID))
		}
		logger.Error("Service: Фоллоу-ап не применён", err, zap.Int64("task_id", t.ID))
		return nil, NewTransitionError("задача", t.ID, err)
	}

	logger.Info("Service: Фоллоу-ап применён",
		zap.Int64("task_id", t.ID),
		zap.String("status", string(t.Status)))
	return t, nil
}

func (s *TaskService) ListTasksForUser(ctx context.Context, username string) ([]*task.Task, error) {
	if strings.TrimSpace(username) == "" {
		return nil, NewValidationError("username", "обязательное поле")
	}

	tasks, err := s.repo.ListForUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*task.Task, []*task.FollowupEntry, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
			return nil, nil, NewNotFound("задача", id)
		}
		return nil, nil, fmt.Errorf("получение задачи: %w", err)
	}

	entries, err := s.repo.Followups(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("получение журнала: %w", err)
	}
	return t, entries, nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
