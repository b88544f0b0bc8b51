package inmemory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fieldops/internal/models/task"
	repo "fieldops/internal/repository"
)

type TaskStorage struct {
	mtx       *sync.RWMutex
	tasks     map[int64]*task.Task
	followups map[int64][]*task.FollowupEntry
	nextID    int64
	nextLogID int64

	// FailCreates имитирует отказ БД после записи вложений на диск,
	// чтобы проверять компенсацию в сервисе
	FailCreates bool
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		mtx:       &sync.RWMutex{},
		tasks:     make(map[int64]*task.Task),
		followups: make(map[int64][]*task.FollowupEntry),
		nextID:    1,
		nextLogID: 1,
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task, initial *task.FollowupEntry) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.FailCreates {
		return errors.New("хранилище недоступно")
	}

	taskToCreate.ID = s.nextID
	s.nextID++
	taskToCreate.CreatedAt = time.Now()
	taskToCreate.Version = 1

	initial.TaskID = taskToCreate.ID
	initial.ID = s.nextLogID
	s.nextLogID++

	stored := *taskToCreate
	stored.Attachments = append([]string(nil), taskToCreate.Attachments...)
	s.tasks[taskToCreate.ID] = &stored

	entry := *initial
	s.followups[taskToCreate.ID] = append(s.followups[taskToCreate.ID], &entry)
	return nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

// обе мутации под одним замком - частичного состояния не бывает
func (s *TaskStorage) SubmitFollowup(ctx context.Context, taskToUpdate *task.Task, entry *task.FollowupEntry) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[taskToUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if stored.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}

	entry.ID = s.nextLogID
	s.nextLogID++
	copied := *entry
	s.followups[entry.TaskID] = append(s.followups[entry.TaskID], &copied)

	stored.Status = taskToUpdate.Status
	stored.AssignedTo = taskToUpdate.AssignedTo
	stored.CompletionDate = taskToUpdate.CompletionDate
	stored.Version++
	taskToUpdate.Version = stored.Version
	return nil
}

func (s *TaskStorage) ListForUser(ctx context.Context, username string) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := []*task.Task{}
	for id, t := range s.tasks {
		related := t.CreatedBy == username || t.AssignedTo == username
		if !related {
			for _, e := range s.followups[id] {
				if e.AssignedTo == username {
					related = true
					break
				}
			}
		}
		if related {
			copied := *t
			tasks = append(tasks, &copied)
		}
	}

	// новые первыми
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *TaskStorage) Followups(ctx context.Context, taskID int64) ([]*task.FollowupEntry, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	entries := []*task.FollowupEntry{}
	stored := s.followups[taskID]
	for i := len(stored) - 1; i >= 0; i-- {
		copied := *stored[i]
		entries = append(entries, &copied)
	}
	return entries, nil
}
