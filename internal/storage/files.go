package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fieldops/internal/logger"

	"go.uber.org/zap"
)

// FileStore пишет загруженные файлы в дерево <root>/<категория>/ и
// возвращает публичные пути вида /<категория>/<файл>
type FileStore struct {
	root string

	mtx     sync.Mutex
	orphans []string
}

const CategoryTaskAttachments = "task_attachments"
const CategorySparesReports = "spares_reports"
const CategoryFinalReports = "final_reports"
const CategoryInstallationReports = "installation_reports"

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		logger.Error("Storage: Не удалось создать корень хранилища", err)
		return nil, fmt.Errorf("создание корня хранилища: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Save пишет файл на диск. Временная метка в имени исключает гонку
// одновременных загрузок под одним именем.
func (f *FileStore) Save(category, fileName string, data []byte) (string, error) {
	start := time.Now()

	dir := filepath.Join(f.root, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("Storage: Не удалось создать каталог", err, zap.String("category", category))
		return "", fmt.Errorf("создание каталога: %w", err)
	}

	name := fmt.Sprintf("%d_%s", time.Now().UnixNano(), sanitize(fileName))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		logger.Error("Storage: Не удалось записать файл", err, zap.String("file", name))
		return "", fmt.Errorf("запись файла: %w", err)
	}

	if time.Since(start) > time.Millisecond*200 {
		logger.Warn("Storage: Медленная запись файла", zap.Duration("ms", time.Since(start)))
	}

	return "/" + category + "/" + name, nil
}

// Remove удаляет файл по публичному пути. Если удалить не вышло,
// путь попадает в реестр сирот для фоновой зачистки.
func (f *FileStore) Remove(publicPath string) error {
	err := os.Remove(f.localPath(publicPath))
	if err != nil && !os.IsNotExist(err) {
		logger.Warn("Storage: Не удалось удалить файл, записан в реестр сирот",
			zap.String("path", publicPath), zap.Error(err))

		f.mtx.Lock()
		f.orphans = append(f.orphans, publicPath)
		f.mtx.Unlock()
		return fmt.Errorf("удаление файла: %w", err)
	}
	return nil
}

// SweepOrphans повторяет удаление накопленных сирот, возвращает
// количество убранных файлов
func (f *FileStore) SweepOrphans() int {
	f.mtx.Lock()
	pending := f.orphans
	f.orphans = nil
	f.mtx.Unlock()

	removed := 0
	for _, p := range pending {
		err := os.Remove(f.localPath(p))
		if err != nil && !os.IsNotExist(err) {
			f.mtx.Lock()
			f.orphans = append(f.orphans, p)
			f.mtx.Unlock()
			continue
		}
		removed++
	}
	return removed
}

func (f *FileStore) OrphanCount() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return len(f.orphans)
}

func (f *FileStore) localPath(publicPath string) string {
	return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(publicPath, "/")))
}

func sanitize(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
