package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldops/internal/logger"
	"fieldops/internal/models/task"
	repo "fieldops/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

// Create вставляет задачу и первую запись журнала одной транзакцией
func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task, initial *task.FollowupEntry) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO task
				(name, created_by, assigned_to, priority, category, notes, status, deadline, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
				RETURNING id, created_at, version`

	err = tx.QueryRow(ctx, query,
		taskToCreate.Name,
		taskToCreate.CreatedBy,
		taskToCreate.AssignedTo,
		taskToCreate.Priority,
		taskToCreate.Category,
		taskToCreate.Notes,
		taskToCreate.Status,
		taskToCreate.Deadline,
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt, &taskToCreate.Version)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	initial.TaskID = taskToCreate.ID

	followupQuery := `INSERT INTO task_followup
				(task_id, name, notes, status, followed_at, deadline, created_by, assigned_to)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id`

	err = tx.QueryRow(ctx, followupQuery,
		initial.TaskID,
		initial.Name,
		initial.Notes,
		initial.Status,
		initial.FollowedAt,
		initial.Deadline,
		initial.CreatedBy,
		initial.AssignedTo,
	).Scan(&initial.ID)

	if err != nil {
		logger.Error("Repository: Не удалось добавить первую запись журнала", err,
			zap.Int64("task_id", taskToCreate.ID))
		return fmt.Errorf("добавление записи журнала: %w", err)
	}

	for _, path := range taskToCreate.Attachments {
		_, err := tx.Exec(ctx,
			`INSERT INTO task_attachments (task_id, path) VALUES ($1, $2)`,
			taskToCreate.ID, path)
		if err != nil {
			logger.Error("Repository: Не удалось добавить вложение", err,
				zap.Int64("task_id", taskToCreate.ID))
			return fmt.Errorf("добавление вложения: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось закоммитить создание задачи", err,
			zap.Int64("task_id", taskToCreate.ID))
		return fmt.Errorf("коммит создания задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()

	query := `SELECT
				id,
				name,
				created_by,
				assigned_to,
				priority,
				category,
				notes,
				status,
				deadline,
				created_at,
				completion_date,
				version
				FROM task
				WHERE id = $1`

	t := &task.Task{}
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.CreatedBy,
		&t.AssignedTo,
		&t.Priority,
		&t.Category,
		&t.Notes,
		&t.Status,
		&t.Deadline,
		&t.CreatedAt,
		&t.CompletionDate,
		&t.Version,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT path FROM task_attachments WHERE task_id = $1 ORDER BY id`, id)
	if err != nil {
		logger.Error("Repository: Не удалось получить вложения", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("получение вложений: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			logger.Warn("Repository: Ошибка сканирования вложения", zap.Error(err))
			continue
		}
		t.Attachments = append(t.Attachments, path)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по вложениям", err)
		return nil, fmt.Errorf("итерация по вложениям: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return t, nil
}

// SubmitFollowup - запись журнала и обновление статуса задачи строго
// в одной транзакции: частичная запись без обновления статуса недопустима
func (s *Storage) SubmitFollowup(ctx context.Context, taskToUpdate *task.Task, entry *task.FollowupEntry) error {
	start := time.Now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось открыть транзакцию", err)
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	followupQuery := `INSERT INTO task_followup
				(task_id, name, notes, status, followed_at, deadline, completion_date, created_by, assigned_to)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING id`

	err = tx.QueryRow(ctx, followupQuery,
		entry.TaskID,
		entry.Name,
		entry.Notes,
		entry.Status,
		entry.FollowedAt,
		entry.Deadline,
		entry.CompletionDate,
		entry.CreatedBy,
		entry.AssignedTo,
	).Scan(&entry.ID)

	if err != nil {
		logger.Error("Repository: Не удалось добавить запись журнала", err,
			zap.Int64("task_id", entry.TaskID))
		return fmt.Errorf("добавление записи журнала: %w", err)
	}

	updateQuery := `UPDATE task
			SET status = $1,
				assigned_to = $2,
				completion_date = $3,
				version = version + 1
			WHERE id = $4 AND version = $5
			RETURNING version`

	err = tx.QueryRow(ctx, updateQuery,
		taskToUpdate.Status,
		taskToUpdate.AssignedTo,
		taskToUpdate.CompletionDate,
		taskToUpdate.ID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Конфликт версий при обновлении задачи",
				zap.Int64("task_id", taskToUpdate.ID),
				zap.Int("expected_version", taskToUpdate.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: Не удалось обновить задачу", err,
			zap.Int64("task_id", taskToUpdate.ID))
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось закоммитить фоллоу-ап", err,
			zap.Int64("task_id", taskToUpdate.ID))
		return fmt.Errorf("коммит фоллоу-апа: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// ListForUser - задачи, где пользователь создатель, исполнитель
// или когда-либо был исполнителем по журналу; новые первыми
func (s *Storage) ListForUser(ctx context.Context, username string) ([]*task.Task, error) {
	start := time.Now()

	query := `SELECT
				t.id,
				t.name,
				t.created_by,
				t.assigned_to,
				t.priority,
				t.category,
				t.notes,
				t.status,
				t.deadline,
				t.created_at,
				t.completion_date,
				t.version
				FROM task t
				WHERE t.created_by = $1
				   OR t.assigned_to = $1
				   OR EXISTS (
						SELECT 1 FROM task_followup f
						WHERE f.task_id = t.id AND f.assigned_to = $1)
				ORDER BY t.created_at DESC`

	rows, err := s.pool.Query(ctx, query, username)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	defer rows.Close()

	tasks := []*task.Task{}

	for rows.Next() {
		t := &task.Task{}

		err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.CreatedBy,
			&t.AssignedTo,
			&t.Priority,
			&t.Category,
			&t.Notes,
			&t.Status,
			&t.Deadline,
			&t.CreatedAt,
			&t.CompletionDate,
			&t.Version,
		)

		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
		}

		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return tasks, nil
}

// Followups - журнал задачи, свежие записи первыми
func (s *Storage) Followups(ctx context.Context, taskID int64) ([]*task.FollowupEntry, error) {
	start := time.Now()

	query := `SELECT
				id,
				task_id,
				name,
				notes,
				status,
				followed_at,
				deadline,
				completion_date,
				created_by,
				assigned_to
				FROM task_followup
				WHERE task_id = $1
				ORDER BY followed_at DESC, id DESC`

	rows, err := s.pool.Query(ctx, query, taskID)
	if err != nil {
		logger.Error("Repository: Не удалось получить журнал", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение журнала: %w", err)
	}

	defer rows.Close()

	entries := []*task.FollowupEntry{}

	for rows.Next() {
		e := &task.FollowupEntry{}

		err := rows.Scan(
			&e.ID,
			&e.TaskID,
			&e.Name,
			&e.Notes,
			&e.Status,
			&e.FollowedAt,
			&e.Deadline,
			&e.CompletionDate,
			&e.CreatedBy,
			&e.AssignedTo,
		)

		if err != nil {
			logger.Warn("Repository: Ошибка сканирования записи журнала", zap.Error(err))
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return entries, nil
}
