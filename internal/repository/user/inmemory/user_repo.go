package inmemory

import (
	"context"
	"strings"
	"sync"

	"fieldops/internal/models/user"
	repo "fieldops/internal/repository"
)

type UserStorage struct {
	mtx   *sync.RWMutex
	users []*user.User
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		mtx: &sync.RWMutex{},
	}
}

func (s *UserStorage) Put(u *user.User) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	copied := *u
	s.users = append(s.users, &copied)
}

func (s *UserStorage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *UserStorage) SearchAssignable(ctx context.Context, match string, limit int) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	lowered := strings.ToLower(match)
	usernames := []string{}
	for _, u := range s.users {
		if !u.Active || u.Role != user.RoleEngineer {
			continue
		}
		if lowered != "" && !strings.Contains(strings.ToLower(u.Username), lowered) {
			continue
		}
		usernames = append(usernames, u.Username)
		if len(usernames) >= limit {
			break
		}
	}
	return usernames, nil
}
