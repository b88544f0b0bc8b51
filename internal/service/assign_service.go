package service

import (
	"context"
	"fmt"
	"strings"
)

// предел выдачи каталога исполнителей
const assignableLimit = 10

type AssignService struct {
	repo UserRepository
}

func NewAssignService(repo UserRepository) AssignService {
	return AssignService{
		repo: repo,
	}
}

// SearchAssignable - подстрочный поиск по активным инженерам,
// не больше assignableLimit имён, без нечёткого сопоставления
func (s *AssignService) SearchAssignable(ctx context.Context, match string) ([]string, error) {
	usernames, err := s.repo.SearchAssignable(ctx, strings.TrimSpace(match), assignableLimit)
	if err != nil {
		return nil, fmt.Errorf("поиск исполнителей: %w", err)
	}
	return usernames, nil
}
