package project

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/untibullet/pr-status-sync/internal/models"
)

// FieldSource источник определений полей проекта
type FieldSource interface {
	ProjectFields(ctx context.Context, projectID string) ([]models.FieldDefinition, error)
	FieldChoices(ctx context.Context, fieldID string) ([]models.FieldOption, []models.Iteration, error)
}

// Resolver собирает каталог полей проекта
type Resolver struct {
	source FieldSource
	logger *zap.Logger
}

// NewResolver создает Resolver
func NewResolver(source FieldSource, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// Resolve возвращает каталог полей проекта с перечисленными вариантами и итерациями.
// Ошибка загрузки вариантов одного поля не отбрасывает поле: оно остается в каталоге
// с пустым набором вариантов.
func (r *Resolver) Resolve(ctx context.Context, projectID string) (*models.Catalog, error) {
	fields, err := r.source.ProjectFields(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve catalog of project %s: %w", projectID, err)
	}

	catalog := &models.Catalog{
		ProjectID: projectID,
		Fields:    make([]models.FieldDefinition, 0, len(fields)),
	}

	for _, f := range fields {
		f.ProjectID = projectID
		f.Options = nil
		f.Iterations = nil

		if f.Kind == models.FieldSingleSelect || f.Kind == models.FieldIteration {
			options, iterations, err := r.source.FieldChoices(ctx, f.ID)
			if err != nil {
				r.logger.Warn("field choices unavailable, using empty set",
					zap.String("project_id", projectID),
					zap.String("field", f.Name),
					zap.Error(err))
			}
			// частичный ответ тоже принимается
			switch f.Kind {
			case models.FieldSingleSelect:
				f.Options = options
			case models.FieldIteration:
				f.Iterations = iterations
			}
		}

		catalog.Fields = append(catalog.Fields, f)
	}

	r.logger.Debug("project catalog resolved",
		zap.String("project_id", projectID),
		zap.Int("fields", len(catalog.Fields)))
	return catalog, nil
}
