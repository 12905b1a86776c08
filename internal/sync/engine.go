package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/untibullet/pr-status-sync/internal/models"
	"github.com/untibullet/pr-status-sync/internal/project"
)

// Remote операции GitHub, нужные для синхронизации
type Remote interface {
	LinkedTrackingItem(ctx context.Context, prID string) (*models.TrackingItem, error)
	ProjectMemberships(ctx context.Context, contentID string) ([]models.ProjectMembership, error)
	UpdateFieldValue(ctx context.Context, projectID, itemID, fieldID string, value models.FieldValue) error
	AddAssignees(ctx context.Context, assignableID string, assigneeIDs []string) error
}

// CatalogProvider возвращает каталог полей проекта
type CatalogProvider interface {
	Get(ctx context.Context, projectID string) (*models.Catalog, error)
}

// SyncableFields поля планирования, которые копируются из задачи в PR
var SyncableFields = []string{"Status", "Priority", "Target Date", "Sprint"}

// AssigneesField имя псевдополя исполнителей в результатах
const AssigneesField = "Assignees"

// Outcome итог обработки одного поля
type Outcome string

// Итоги обработки поля
const (
	OutcomeApplied Outcome = "applied"
	OutcomePlanned Outcome = "planned"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// FieldChange описывает решение по одному полю
type FieldChange struct {
	ProjectID string
	Field     string
	Outcome   Outcome
	Reason    string
	Value     models.FieldValue
	Err       error
}

// Result итог синхронизации одного PR
type Result struct {
	TrackingItem *models.TrackingItem
	Changes      []FieldChange
	// Fields значения полей PR после синхронизации в первом проекте PR
	Fields    map[string]models.FieldValue
	Assignees []models.Assignee
}

// Count возвращает количество изменений с указанным итогом
func (r Result) Count(outcome Outcome) int {
	n := 0
	for _, c := range r.Changes {
		if c.Outcome == outcome {
			n++
		}
	}
	return n
}

// Engine копирует поля планирования из связанной задачи в PR
type Engine struct {
	remote   Remote
	catalogs CatalogProvider
	logger   *zap.Logger
	fields   []string
	dryRun   bool
}

// NewEngine создает Engine. В режиме dryRun изменения только логируются.
func NewEngine(remote Remote, catalogs CatalogProvider, logger *zap.Logger, dryRun bool) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		remote:   remote,
		catalogs: catalogs,
		logger:   logger,
		fields:   SyncableFields,
		dryRun:   dryRun,
	}
}

// Sync синхронизирует один PR.
//
// Ошибка возвращается только если не удалось получить членство PR в проектах или
// связанную задачу. Ошибки отдельных мутаций логируются и попадают в Result.Changes.
func (e *Engine) Sync(ctx context.Context, pr *models.ReviewRequest) (Result, error) {
	log := e.logger.With(zap.Int("pr", pr.Number))
	result := Result{
		Fields:    make(map[string]models.FieldValue, len(e.fields)),
		Assignees: append([]models.Assignee(nil), pr.Assignees...),
	}

	memberships, err := e.remote.ProjectMemberships(ctx, pr.ID)
	if err != nil {
		return result, fmt.Errorf("failed to load project items of #%d: %w", pr.Number, err)
	}
	if len(memberships) > 0 {
		// заполняем текущими значениями до синхронизации
		e.collectFields(ctx, memberships[0], &result)
	}

	item, err := e.remote.LinkedTrackingItem(ctx, pr.ID)
	if err != nil {
		return result, fmt.Errorf("failed to load linked issue of #%d: %w", pr.Number, err)
	}
	if item == nil {
		log.Debug("no linked tracking item, skipping sync")
		return result, nil
	}
	result.TrackingItem = item
	log = log.With(zap.Int("issue", item.Number))

	e.syncAssignees(ctx, log, pr, item, &result)

	if len(memberships) == 0 {
		log.Debug("pull request is not in any project, skipping field sync")
		return result, nil
	}

	for i, m := range memberships {
		e.syncProject(ctx, log, m, item, &result, i == 0)
	}

	return result, nil
}

func (e *Engine) syncAssignees(ctx context.Context, log *zap.Logger, pr *models.ReviewRequest, item *models.TrackingItem, result *Result) {
	if len(pr.Assignees) > 0 {
		result.Changes = append(result.Changes, FieldChange{Field: AssigneesField, Outcome: OutcomeSkipped, Reason: ReasonTargetSet})
		return
	}

	ids := make([]string, 0, len(item.Assignees))
	added := make([]models.Assignee, 0, len(item.Assignees))
	for _, a := range item.Assignees {
		if a.ID == "" {
			continue
		}
		ids = append(ids, a.ID)
		added = append(added, a)
	}
	if len(ids) == 0 {
		log.Debug("tracking item has no assignees")
		result.Changes = append(result.Changes, FieldChange{Field: AssigneesField, Outcome: OutcomeSkipped, Reason: ReasonSourceEmpty})
		return
	}

	if e.dryRun {
		log.Info("dry run: would add assignees", zap.Strings("assignees", loginsOf(added)))
		result.Changes = append(result.Changes, FieldChange{Field: AssigneesField, Outcome: OutcomePlanned})
		return
	}

	if err := e.remote.AddAssignees(ctx, pr.ID, ids); err != nil {
		log.Error("failed to add assignees", zap.Error(err))
		result.Changes = append(result.Changes, FieldChange{Field: AssigneesField, Outcome: OutcomeFailed, Err: err})
		return
	}

	log.Info("assignees added", zap.Strings("assignees", loginsOf(added)))
	result.Assignees = added
	result.Changes = append(result.Changes, FieldChange{Field: AssigneesField, Outcome: OutcomeApplied})
}

func (e *Engine) syncProject(ctx context.Context, log *zap.Logger, m models.ProjectMembership, item *models.TrackingItem, result *Result, primary bool) {
	log = log.With(zap.String("project_id", m.ProjectID))

	source, ok := models.MembershipFor(item.Memberships, m.ProjectID)
	if !ok {
		log.Debug("tracking item is not in project", zap.String("reason", ReasonNotShared))
		return
	}

	catalog, err := e.catalogs.Get(ctx, m.ProjectID)
	if err != nil {
		log.Error("failed to resolve project catalog", zap.Error(err))
		for _, name := range e.fields {
			result.Changes = append(result.Changes, FieldChange{
				ProjectID: m.ProjectID, Field: name, Outcome: OutcomeFailed, Reason: ReasonCatalogFailed, Err: err,
			})
		}
		return
	}

	target := project.Extract(m, catalog)
	from := project.Extract(source, catalog)

	for _, name := range e.fields {
		change := e.syncField(ctx, log, catalog, m, target, from, name)
		result.Changes = append(result.Changes, change)
		if primary && change.Outcome == OutcomeApplied {
			result.Fields[name] = change.Value
		}
	}
}

func (e *Engine) syncField(ctx context.Context, log *zap.Logger, catalog *models.Catalog, m models.ProjectMembership,
	target, from project.ItemValues, name string) FieldChange {
	change := FieldChange{ProjectID: m.ProjectID, Field: name}
	log = log.With(zap.String("field", name))

	def, ok := catalog.Field(name)
	if !ok {
		log.Debug("field skipped", zap.String("reason", ReasonFieldMissing))
		change.Outcome, change.Reason = OutcomeSkipped, ReasonFieldMissing
		return change
	}

	current, _ := target.Value(name)
	wanted, _ := from.Value(name)

	value, reason, ok := planField(def, current, wanted)
	if !ok {
		log.Debug("field skipped", zap.String("reason", reason))
		change.Outcome, change.Reason = OutcomeSkipped, reason
		return change
	}
	change.Value = value

	if e.dryRun {
		log.Info("dry run: would update field", zap.String("value", value.String()))
		change.Outcome = OutcomePlanned
		return change
	}

	if err := e.remote.UpdateFieldValue(ctx, m.ProjectID, m.ItemID, def.ID, value); err != nil {
		log.Error("failed to update field", zap.Error(err))
		change.Outcome, change.Err = OutcomeFailed, err
		return change
	}

	log.Info("field updated", zap.String("value", value.String()))
	change.Outcome = OutcomeApplied
	return change
}

// Collect только читает текущие значения полей PR без синхронизации
func (e *Engine) Collect(ctx context.Context, pr *models.ReviewRequest) (Result, error) {
	result := Result{
		Fields:    make(map[string]models.FieldValue, len(e.fields)),
		Assignees: append([]models.Assignee(nil), pr.Assignees...),
	}

	memberships, err := e.remote.ProjectMemberships(ctx, pr.ID)
	if err != nil {
		return result, fmt.Errorf("failed to load project items of #%d: %w", pr.Number, err)
	}
	if len(memberships) > 0 {
		e.collectFields(ctx, memberships[0], &result)
	}
	return result, nil
}

// collectFields заполняет текущие значения полей PR в проекте
func (e *Engine) collectFields(ctx context.Context, m models.ProjectMembership, result *Result) {
	catalog, err := e.catalogs.Get(ctx, m.ProjectID)
	if err != nil {
		// значения без каталога берутся как есть
		catalog = nil
	}
	values := project.Extract(m, catalog)
	for _, name := range e.fields {
		if fv, ok := values.Value(name); ok && fv.Value != nil {
			result.Fields[name] = fv.Value
		}
	}
}

func loginsOf(assignees []models.Assignee) []string {
	logins := make([]string, 0, len(assignees))
	for _, a := range assignees {
		logins = append(logins, a.Login)
	}
	return logins
}
