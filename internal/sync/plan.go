package sync

import "github.com/untibullet/pr-status-sync/internal/models"

// Причины пропуска поля
const (
	ReasonTargetSet         = "target already set"
	ReasonSourceEmpty       = "source empty"
	ReasonKindMismatch      = "kind mismatch"
	ReasonOptionNotFound    = "option not found"
	ReasonIterationNotFound = "iteration not found"
	ReasonForeignIteration  = "iteration belongs to another project field"
	ReasonFieldMissing      = "field not defined on project"
	ReasonNotShared         = "tracking item not in project"
	ReasonCatalogFailed     = "catalog unavailable"
)

// planField решает, какое значение записать в поле PR.
// Возвращает значение и true, если запись нужна, иначе причину пропуска.
func planField(def models.FieldDefinition, target, source models.ItemFieldValue) (models.FieldValue, string, bool) {
	if !models.IsEmpty(target.Value) {
		return nil, ReasonTargetSet, false
	}
	if models.IsEmpty(source.Value) {
		return nil, ReasonSourceEmpty, false
	}
	if source.Value.Kind() != def.Kind {
		return nil, ReasonKindMismatch, false
	}

	switch v := source.Value.(type) {
	case models.TextValue:
		return v, "", true
	case models.DateValue:
		return v, "", true
	case models.OptionValue:
		if v.Name == "" {
			return nil, ReasonOptionNotFound, false
		}
		opt, ok := def.OptionByName(v.Name)
		if !ok {
			return nil, ReasonOptionNotFound, false
		}
		return models.OptionValue{OptionID: opt.ID, Name: opt.Name}, "", true
	case models.IterationValue:
		if v.Title != "" {
			if it, ok := def.IterationByTitle(v.Title); ok {
				return models.IterationValue{IterationID: it.ID, Title: it.Title}, "", true
			}
		}
		return fallbackIteration(def, source, v)
	default:
		return nil, ReasonKindMismatch, false
	}
}

// fallbackIteration переиспользует сырой идентификатор итерации, только если он
// получен из того же поля того же проекта, что и целевое поле.
func fallbackIteration(def models.FieldDefinition, source models.ItemFieldValue, v models.IterationValue) (models.FieldValue, string, bool) {
	rawID := source.RawID
	if rawID == "" {
		rawID = v.IterationID
	}
	if rawID == "" {
		return nil, ReasonIterationNotFound, false
	}
	if source.ProjectID == "" || source.ProjectID != def.ProjectID || source.FieldID != def.ID {
		return nil, ReasonForeignIteration, false
	}
	return models.IterationValue{IterationID: rawID, Title: v.Title}, "", true
}
