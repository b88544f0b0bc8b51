package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fieldops/internal/logger"
	"fieldops/internal/models/user"
	repo "fieldops/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *Storage) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	query := `SELECT
				username,
				full_name,
				password_hash,
				role,
				active,
				created_at
				FROM users
				WHERE username = $1`

	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, username).Scan(
		&u.Username,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.Active,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

// SearchAssignable - активные инженеры по подстроке без учёта регистра,
// фильтры собираются динамически
func (s *Storage) SearchAssignable(ctx context.Context, match string, limit int) ([]string, error) {
	start := time.Now()

	stmt := s.sb.Select("username").
		From("users").
		Where(sq.Eq{"active": true}).
		Where(sq.Eq{"role": user.RoleEngineer}).
		OrderBy("username").
		Limit(uint64(limit))

	if match != "" {
		stmt = stmt.Where(sq.ILike{"username": "%" + match + "%"})
	}

	query, args, err := stmt.ToSql()
	if err != nil {
		logger.Error("Repository: Ошибка сборки запроса", err)
		return nil, fmt.Errorf("сборка запроса: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить исполнителей", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение исполнителей: %w", err)
	}

	defer rows.Close()

	usernames := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			logger.Warn("Repository: Ошибка сканирования пользователя", zap.Error(err))
			continue
		}
		usernames = append(usernames, name)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return usernames, nil
}
