// repository/repository.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/untibullet/pr-status-sync/internal/models"
	"github.com/untibullet/pr-status-sync/internal/report"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidName = errors.New("invalid report name")
)

const (
	reportPrefix = "PR_Status_"
	reportSuffix = ".md"
)

// Repository хранит отчеты в каталоге на диске
type Repository struct {
	dir string
	mu  sync.RWMutex
}

func New(dir string) *Repository {
	if dir == "" {
		dir = "."
	}
	return &Repository{dir: dir}
}

// Dir возвращает каталог отчетов
func (r *Repository) Dir() string {
	return r.dir
}

// Save записывает отчет, если он отличается от сохраненного не только строкой Updated.
// Возвращает true, если файл был перезаписан.
func (r *Repository) Save(ctx context.Context, name, content string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateName(name); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	path := filepath.Join(r.dir, name)
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if report.StripTimestamp(string(existing)) == report.StripTimestamp(content) {
			return false, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, fmt.Errorf("failed to read existing report: %w", err)
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create report directory: %w", err)
	}

	tmp, err := os.CreateTemp(r.dir, "."+name+".*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return false, fmt.Errorf("failed to write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return false, fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return false, fmt.Errorf("failed to replace report: %w", err)
	}

	return true, nil
}

// Get возвращает отчет вместе с содержимым
func (r *Repository) Get(ctx context.Context, name string) (*models.ReportFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	path := filepath.Join(r.dir, name)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat report: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	return &models.ReportFile{
		Name:      name,
		Size:      info.Size(),
		UpdatedAt: info.ModTime().UTC(),
		Content:   string(content),
	}, nil
}

// List возвращает отчеты без содержимого, отсортированные по имени
func (r *Repository) List(ctx context.Context) ([]models.ReportFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.ReportFile{}, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]models.ReportFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || validateName(e.Name()) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat report %s: %w", e.Name(), err)
		}
		reports = append(reports, models.ReportFile{
			Name:      e.Name(),
			Size:      info.Size(),
			UpdatedAt: info.ModTime().UTC(),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Name < reports[j].Name
	})
	return reports, nil
}

// validateName допускает только имена отчетов без путей
func validateName(name string) error {
	if name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if !strings.HasPrefix(name, reportPrefix) || !strings.HasSuffix(name, reportSuffix) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
