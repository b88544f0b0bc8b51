package postgres

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fieldops/internal/config"
	"fieldops/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool создаёт единственный пул процесса, все репозитории получают его
// по ссылке - никаких глобальных переменных и переинициализаций на запрос.
func NewPool(ctx context.Context, dbCfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dbCfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	poolCfg.MaxConns = dbCfg.MaxConnections
	poolCfg.MinConns = dbCfg.MinConnections
	poolCfg.MaxConnIdleTime = dbCfg.IdleTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return pool, nil
}

// Migrate применяет миграции из каталога по порядку имён файлов
func Migrate(ctx context.Context, pool *pgxpool.Pool, dir string) error {
	logger.Info("Попытка миграций")

	names, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		logger.Error("Repository: Ошибка поиска миграций", err)
		return fmt.Errorf("поиск миграций: %w", err)
	}

	for _, name := range names {
		sql, err := os.ReadFile(name)
		if err != nil {
			logger.Error("Repository: Не удалось прочитать миграцию", err)
			return fmt.Errorf("чтение %s: %w", name, err)
		}

		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			logger.Error("Repository: Не удалось применить миграцию", err)
			return fmt.Errorf("применение %s: %w", name, err)
		}
	}

	logger.Info("Repository: Миграции применены")
	return nil
}
