package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shenikar/safety_agent_system/internal/models"
)

// FileArchive пишет результаты гео-обработки в JSON-файлы с меткой времени.
// Файлы читает модуль оценки качества; само хранилище инцидентов живет отдельно.
type FileArchive struct {
	dir string
}

// NewFileArchive создает архив в заданной директории.
func NewFileArchive(dir string) *FileArchive {
	return &FileArchive{dir: dir}
}

// Save сохраняет пакет инцидентов в новый файл и возвращает его имя.
func (a *FileArchive) Save(incidents []models.Incident) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive dir: %w", err)
	}

	// Двоеточия и точки в метке времени заменяются, чтобы имя было переносимым.
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(time.Now().UTC().Format(time.RFC3339))
	filename := stamp + ".json"

	payload, err := json.MarshalIndent(incidents, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal incidents: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.dir, filename), payload, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive file: %w", err)
	}
	return filename, nil
}

// Load читает сырой архивный файл по имени.
// Имя очищается до базового, чтобы не выйти за пределы директории архива.
func (a *FileArchive) Load(filename string) ([]byte, error) {
	clean := filepath.Base(filename)
	data, err := os.ReadFile(filepath.Join(a.dir, clean))
	if err != nil {
		return nil, fmt.Errorf("failed to read archive file %q: %w", clean, err)
	}
	return data, nil
}

// Latest возвращает имя самого свежего файла архива.
func (a *FileArchive) Latest() (string, error) {
	entries, err := os.ReadDir(a.dir)
	if err != nil {
		return "", fmt.Errorf("failed to list archive dir: %w", err)
	}

	var latest string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		// Имена лексикографически упорядочены по времени (RFC3339).
		if e.Name() > latest {
			latest = e.Name()
		}
	}
	if latest == "" {
		return "", fmt.Errorf("archive is empty")
	}
	return latest, nil
}
