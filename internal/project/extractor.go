package project

import "github.com/untibullet/pr-status-sync/internal/models"

// ItemValues значения полей одного элемента в одном проекте
type ItemValues struct {
	ProjectID string
	ItemID    string
	byName    map[string]models.ItemFieldValue
}

// Value возвращает значение поля по имени. Поле без значения возвращается с Value == nil.
func (v ItemValues) Value(name string) (models.ItemFieldValue, bool) {
	fv, ok := v.byName[models.NormalizeName(name)]
	return fv, ok
}

// Len возвращает количество известных полей
func (v ItemValues) Len() int {
	return len(v.byName)
}

// Extract раскладывает значения элемента по полям каталога.
//
// Имена вариантов и итераций дополняются из каталога, а RawID сохраняется всегда,
// даже если идентификатор не найден в каталоге. Значение, тип которого не совпадает
// с типом поля, отбрасывается. Без каталога используются имена полей из ответа.
func Extract(membership models.ProjectMembership, catalog *models.Catalog) ItemValues {
	out := ItemValues{
		ProjectID: membership.ProjectID,
		ItemID:    membership.ItemID,
		byName:    make(map[string]models.ItemFieldValue),
	}

	if catalog == nil || len(catalog.Fields) == 0 {
		for _, fv := range membership.Values {
			key := models.NormalizeName(fv.FieldName)
			if _, exists := out.byName[key]; !exists && key != "" {
				out.byName[key] = fv
			}
		}
		return out
	}

	for _, def := range catalog.Fields {
		key := models.NormalizeName(def.Name)
		if _, exists := out.byName[key]; exists {
			continue
		}

		fv := models.ItemFieldValue{
			ProjectID: membership.ProjectID,
			FieldID:   def.ID,
			FieldName: def.Name,
		}
		if raw, ok := findValue(membership.Values, def); ok && raw.Value != nil && raw.Value.Kind() == def.Kind {
			fv.Value = resolveNames(def, raw.Value)
			fv.RawID = raw.RawID
			if raw.ProjectID != "" {
				fv.ProjectID = raw.ProjectID
			}
		}
		out.byName[key] = fv
	}
	return out
}

func findValue(values []models.ItemFieldValue, def models.FieldDefinition) (models.ItemFieldValue, bool) {
	for _, v := range values {
		if v.FieldID != "" && v.FieldID == def.ID {
			return v, true
		}
	}
	key := models.NormalizeName(def.Name)
	for _, v := range values {
		if v.FieldID == "" && models.NormalizeName(v.FieldName) == key {
			return v, true
		}
	}
	return models.ItemFieldValue{}, false
}

func resolveNames(def models.FieldDefinition, value models.FieldValue) models.FieldValue {
	switch v := value.(type) {
	case models.OptionValue:
		if o, ok := def.OptionByID(v.OptionID); ok && o.Name != "" {
			v.Name = o.Name
		}
		return v
	case models.IterationValue:
		if it, ok := def.IterationByID(v.IterationID); ok && it.Title != "" {
			v.Title = it.Title
		}
		return v
	default:
		return value
	}
}
