package service

import (
	"context"
	"errors"
	"strings"

	"fieldops/internal/auth"
	"fieldops/internal/logger"
	rep "fieldops/internal/repository"

	"go.uber.org/zap"
)

type AuthService struct {
	repo   UserRepository
	tokens *auth.TokenManager
}

func NewAuthService(repo UserRepository, tokens *auth.TokenManager) AuthService {
	return AuthService{
		repo:   repo,
		tokens: tokens,
	}
}

// Login проверяет пароль и выдаёт подписанный токен.
// Несуществующий пользователь и неверный пароль неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", "", NewValidationError("credentials", "логин и пароль обязательны")
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: Попытка входа с неизвестным логином", zap.String("username", username))
			return "", "", NewUnauthorized("неверный логин или пароль")
		}
		return "", "", err
	}

	if !u.Active {
		logger.Warn("Service: Попытка входа заблокированного пользователя", zap.String("username", username))
		return "", "", NewUnauthorized("неверный логин или пароль")
	}

	if !auth.CheckPassword(password, u.PasswordHash) {
		logger.Warn("Service: Неверный пароль", zap.String("username", username))
		return "", "", NewUnauthorized("неверный логин или пароль")
	}

	token, err := s.tokens.Issue(u.Username, u.Role)
	if err != nil {
		logger.Error("Service: Не удалось выдать токен", err, zap.String("username", username))
		return "", "", err
	}

	logger.Info("Service: Успешный вход", zap.String("username", username), zap.String("role", u.Role))
	return token, u.Role, nil
}
